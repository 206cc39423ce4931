package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

// Envelope is the payload of a successful response; WriteSuccess adds
// "success": true to it.
type Envelope map[string]interface{}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes {"success": true, ...payload}.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, payload Envelope) {
	body := make(Envelope, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	h.WriteJSON(w, status, body)
}

// WriteError writes {"success": false, "error": message}.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, internal.Response{
		Success: false,
		Error:   message,
	})
}

// HandleError maps AppErrors to their status code and anything else to 500.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.FromOr(r.Context(), h.Logger)

	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		if status >= http.StatusInternalServerError {
			lg.Error("request failed", "status", status, "code", appErr.Code, "error", err)
		} else {
			lg.Warn("request rejected", "status", status, "code", appErr.Code, "error", err)
		}
		h.WriteJSON(w, status, body)
		return
	}

	lg.Error("unexpected error", "error", err)
	h.WriteJSON(w, http.StatusInternalServerError, internal.Response{
		Success: false,
		Error:   "internal server error",
		Code:    internal.ErrCodeInternal,
	})
}

// DecodeJSON decodes the request body, reporting malformed JSON as a
// validation error.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return internal.NewValidationError("invalid JSON payload", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return nil
}
