package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON API response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// Responder writes envelopes stamped with the service version.
type Responder struct {
	Version string
}

// JSON writes a successful envelope.
func (rs Responder) JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	rs.write(w, status, JSONResponse{
		Success:   status < 400,
		Data:      data,
		Meta:      rs.meta(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// Error writes an error envelope.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	rs.write(w, status, JSONResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta:      rs.meta(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (rs Responder) meta() *ResponseMeta {
	return &ResponseMeta{
		Timestamp: time.Now().UTC(),
		Version:   rs.Version,
	}
}

func (rs Responder) write(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
