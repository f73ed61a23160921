package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ekaraca/tutorly/internal/tutor"
)

// StoreSink adapts a Store to the engine's submission sink.
type StoreSink struct {
	store Store
}

func NewStoreSink(store Store) *StoreSink { return &StoreSink{store: store} }

func (s *StoreSink) Submit(ctx context.Context, result tutor.Result) (string, error) {
	sub, err := s.store.Save(ctx, result)
	if err != nil {
		return "", err
	}
	return sub.ID, nil
}

// HTTPSink posts the finalized record to an external endpoint. Any 2xx
// status is success; anything else surfaces the endpoint's message.
type HTTPSink struct {
	url    string
	client *http.Client
}

func NewHTTPSink(url string) *HTTPSink {
	return &HTTPSink{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPSink) Submit(ctx context.Context, result tutor.Result) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send submission: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("sink status %d: %s", res.StatusCode, sinkErrorMessage(body))
	}

	var ack struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ack); err != nil {
		// A sink that returns no body or a non-JSON ack is still a success.
		return "", nil
	}
	return ack.ID, nil
}

func sinkErrorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "no body"
	}
	return text
}
