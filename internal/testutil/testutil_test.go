package testutil

import (
	"io"
	"net/http"
	"testing"
)

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, io.EOF)
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest(http.MethodGet, "/health")
	if req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.URL.Path != "/health" {
		t.Errorf("path = %s, want /health", req.URL.Path)
	}
}

func TestNewJSONRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body interface{}
		want string
	}{
		{"struct", map[string]int{"k": 1}, `{"k":1}`},
		{"raw string", `{"k":`, `{"k":`},
		{"raw bytes", []byte("null"), "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewJSONRequest(t, http.MethodPost, "/api/store-locations", tt.body)
			if ct := req.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %q", ct)
			}
			got, err := io.ReadAll(req.Body)
			AssertNoError(t, err)
			if string(got) != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	rec := NewTestRecorder()
	rec.WriteString(`{"status":"healthy"}`)

	var got map[string]string
	DecodeJSON(t, rec, &got)
	if got["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", got["status"])
	}
}
