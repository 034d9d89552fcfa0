package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/authd/internal/domain"
	"github.com/utafrali/authd/internal/resourceid"
	"github.com/utafrali/authd/internal/service"
	apperrors "github.com/utafrali/authd/pkg/errors"
	"github.com/utafrali/authd/pkg/validator"
)

// ApplicationHandler handles HTTP requests for application registry endpoints.
type ApplicationHandler struct {
	service *service.ApplicationService
	logger  *slog.Logger
}

// NewApplicationHandler creates a new application HTTP handler.
func NewApplicationHandler(svc *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateApplicationRequest is the JSON request body for registering an application.
type CreateApplicationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Type string `json:"type" validate:"required,oneof=client service"`
}

// ValidateApplicationRequest is the JSON request body for validating credentials.
// Either resource_id alone or both client_id and client_secret must be set.
type ValidateApplicationRequest struct {
	ResourceID   string `json:"resource_id"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// --- Response DTOs ---

// ApplicationResponse is the JSON representation of an application. Credentials
// are shown in full only during the grace period right after registration;
// afterwards they are redacted and the resource identifier is withheld.
type ApplicationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newApplicationResponse(app *domain.Application, now time.Time) ApplicationResponse {
	resp := ApplicationResponse{
		ID:        app.ID,
		Name:      app.Name,
		Type:      app.Type,
		Active:    app.Active,
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}

	if app.ShouldRedactFields(now) {
		resp.ClientID = app.RedactedClientID()
		resp.ClientSecret = app.RedactedClientSecret()
		return resp
	}

	resp.ClientID = app.ClientID
	resp.ClientSecret = app.ClientSecret
	resp.ResourceID = app.ResourceID()
	return resp
}

func newApplicationResponses(apps []domain.Application, now time.Time) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, newApplicationResponse(&apps[i], now))
	}
	return out
}

// --- Handlers ---

// CreateApplication handles POST /api/v1/applications
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	app, err := h.service.Create(r.Context(), service.CreateInput{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: newApplicationResponse(app, time.Now().UTC())})
}

// ListApplications handles GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: newApplicationResponses(apps, time.Now().UTC())})
}

// GetApplication handles GET /api/v1/applications/{id}
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "application id is required"},
		})
		return
	}

	app, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: newApplicationResponse(app, time.Now().UTC())})
}

// ValidateApplication handles POST /api/v1/applications/validate
func (h *ApplicationHandler) ValidateApplication(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req ValidateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	valid, err := h.service.IsValid(r.Context(), service.IsValidInput{
		ResourceID:   req.ResourceID,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]bool{"valid": valid}})
}

// DeactivateApplication handles POST /api/v1/applications/{id}/deactivate
func (h *ApplicationHandler) DeactivateApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	app, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: newApplicationResponse(app, time.Now().UTC())})
}

// ActivateApplication handles POST /api/v1/applications/{id}/activate
func (h *ApplicationHandler) ActivateApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	app, err := h.service.Activate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: newApplicationResponse(app, time.Now().UTC())})
}

// DeleteApplication handles DELETE /api/v1/applications/{id}
func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Error helpers ---

func (h *ApplicationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, err, h.logger)
}

func (h *ApplicationHandler) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

// --- Shared response plumbing ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code = "ALREADY_EXISTS"
		message = "resource already exists"
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, resourceid.ErrMalformedResourceID):
		code = "INVALID_INPUT"
		message = err.Error()
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
		message = err.Error()
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Code: code, Message: message},
	})
}
