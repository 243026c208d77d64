package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusBadRequest, "test error")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s, want application/json", ct)
	}

	resp := decodeError(t, rec)
	if resp.Error != "Bad Request" {
		t.Errorf("error = %q, want 'Bad Request'", resp.Error)
	}
	if resp.Message != "test error" {
		t.Errorf("message = %q, want 'test error'", resp.Message)
	}
}

func TestWriteError_OmitsEmptyFields(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, ErrorResponse{Error: "Missing required parameters"})

	var raw map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(raw) != 1 {
		t.Errorf("body = %v, want only the error key", raw)
	}
}

func TestWriteError_ValidationShape(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, ErrorResponse{
		Error:   "Validation Error",
		Message: "k must be an integer within the range [1..800]",
		Kind:    "ValidationError",
		Field:   "k",
	})

	resp := decodeError(t, rec)
	if resp.Kind != "ValidationError" || resp.Field != "k" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"message": "hello"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["message"] != "hello" {
		t.Errorf("message = %s, want 'hello'", resp["message"])
	}
}

func TestWriteJSONOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONOK(rec, map[string]int{"count": 42})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestStatusHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		write func(http.ResponseWriter)
		code  int
		title string
	}{
		{"method not allowed", MethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "invalid input") }, http.StatusBadRequest, "Bad Request"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "boom") }, http.StatusInternalServerError, "Internal Server Error"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "nope") }, http.StatusNotFound, "Not Found"},
		{"unavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "busy") }, http.StatusServiceUnavailable, "Service Unavailable"},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "slow down") }, http.StatusTooManyRequests, "Too Many Requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if got := decodeError(t, rec).Error; got != tt.title {
				t.Errorf("error = %q, want %q", got, tt.title)
			}
		})
	}
}
