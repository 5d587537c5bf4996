package errors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// RFC 7807 problem types exposed by the HTTP surface.
const (
	TypeValidation     = "/errors/validation"
	TypeNotFound       = "/errors/not-found"
	TypeInternal       = "/errors/internal"
	TypeTimeout        = "/errors/timeout"
	TypeSourceDown     = "/errors/source-unavailable"
	TypeSchemaDrift    = "/errors/schema-drift"
	TypeChainExhausted = "/errors/chain-exhausted"
)

// ProblemDetails is an RFC 7807 error body.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// NewProblemDetails creates a problem details response.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension attaches an extension member to the problem body.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}

// Render implements render.Renderer.
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON includes extension members alongside the standard fields.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})
	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}
	for k, v := range pd.Extensions {
		data[k] = v
	}
	return json.Marshal(data)
}

// Handler converts errors to RFC 7807 responses and logs them with request
// context.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates an error handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With(slog.String("component", "error_handler"))}
}

// HandleError logs err and writes the matching problem details response.
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)
	render.Render(w, r, problem)
}

// ErrorToProblem maps an error onto RFC 7807 problem details.
func (h *Handler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout,
			"Request Timeout", "The request took too long to process and was cancelled", r.URL.Path)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeValidation:
			return NewProblemDetails(http.StatusBadRequest, TypeValidation,
				"Validation Failed", appErr.Message, r.URL.Path)
		case ErrTypeNotFound:
			return NewProblemDetails(http.StatusNotFound, TypeNotFound,
				"Not Found", appErr.Message, r.URL.Path)
		case ErrTypeSourceUnavailable:
			return NewProblemDetails(http.StatusBadGateway, TypeSourceDown,
				"Source Unavailable", appErr.Message, r.URL.Path)
		case ErrTypeSchema, ErrTypeParsing:
			return NewProblemDetails(http.StatusBadGateway, TypeSchemaDrift,
				"Upstream Schema Drift", appErr.Message, r.URL.Path)
		case ErrTypeChainExhausted:
			return NewProblemDetails(http.StatusServiceUnavailable, TypeChainExhausted,
				"All Sources Exhausted", appErr.Message, r.URL.Path)
		}
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "An unexpected error occurred", r.URL.Path)
}

// NewValidationError creates a validation AppError for request parameters.
func NewValidationError(message string) *AppError {
	return New(ErrTypeValidation, message, nil)
}
