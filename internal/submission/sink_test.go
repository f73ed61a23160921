package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ekaraca/tutorly/internal/tutor"
)

func TestStoreSinkReportsID(t *testing.T) {
	store := NewInMemoryStore()
	sink := NewStoreSink(store)

	id, err := sink.Submit(context.Background(), testResult("Ayşe"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if id == "" {
		t.Fatalf("Submit() returned empty id")
	}
	if _, err := store.Get(context.Background(), id); err != nil {
		t.Fatalf("stored submission not found: %v", err)
	}
}

func TestHTTPSinkSuccessAndFailure(t *testing.T) {
	var got tutor.Result
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"sub-1"}`))
	}))
	defer ts.Close()

	sink := NewHTTPSink(ts.URL)
	id, err := sink.Submit(context.Background(), testResult("Ayşe"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if id != "sub-1" {
		t.Fatalf("Submit() id = %q, want %q", id, "sub-1")
	}
	if got.Topic != "Fractions" || len(got.Transcript) != 4 {
		t.Fatalf("sink received %+v", got)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"storage offline"}`))
	}))
	defer failing.Close()

	_, err = NewHTTPSink(failing.URL).Submit(context.Background(), testResult("Ayşe"))
	if err == nil || !strings.Contains(err.Error(), "storage offline") {
		t.Fatalf("Submit() error = %v, want sink message surfaced", err)
	}
}
