package reliability

import "testing"

func TestCodeForHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{401, "auth"},
		{403, "auth"},
		{404, "not_found"},
		{429, "rate_limited"},
		{422, "bad_request"},
		{500, "upstream_error"},
		{503, "upstream_error"},
		{302, "unexpected_status"},
	}
	for _, tc := range cases {
		if got := CodeForHTTPStatus(tc.status); got != tc.want {
			t.Fatalf("CodeForHTTPStatus(%d) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{200, false},
		{400, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		if got := IsRetryableHTTPStatus(tc.status); got != tc.want {
			t.Fatalf("IsRetryableHTTPStatus(%d) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
