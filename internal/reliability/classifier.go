package reliability

// CodeForHTTPStatus maps an upstream HTTP status to a stable error code used
// in metrics labels and learner-facing error messages.
func CodeForHTTPStatus(status int) string {
	switch {
	case status == 401 || status == 403:
		return "auth"
	case status == 404:
		return "not_found"
	case status == 429:
		return "rate_limited"
	case status >= 400 && status < 500:
		return "bad_request"
	case status >= 500:
		return "upstream_error"
	default:
		return "unexpected_status"
	}
}

// IsRetryableHTTPStatus classifies statuses a learner may reasonably resubmit
// after. Nothing in the engine retries automatically; this only shapes the
// message surfaced with the error.
func IsRetryableHTTPStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
