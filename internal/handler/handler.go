package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"connsettings/internal/codec"
	"connsettings/internal/setting"
	"connsettings/internal/service"
)

// ConnectionHandler handles connection API requests
type ConnectionHandler struct {
	svc    *service.ConnectionService
	reg    *setting.Registry
	codec  *codec.JSONCodec
	logger *slog.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(svc *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		svc:    svc,
		reg:    setting.Default,
		codec:  codec.NewJSONCodec(),
		logger: slog.Default(),
	}
}

// SetLogger replaces the handler's logger
func (h *ConnectionHandler) SetLogger(l *slog.Logger) {
	h.logger = l
}

// Register adds the API routes to mux
func (h *ConnectionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/types", h.ListTypes)
	mux.HandleFunc("GET /api/types/{name}/schema", h.GetTypeSchema)

	mux.HandleFunc("GET /api/connections", h.ListConnections)
	mux.HandleFunc("POST /api/connections", h.CreateConnection)
	mux.HandleFunc("GET /api/connections/{uuid}", h.GetConnection)
	mux.HandleFunc("PUT /api/connections/{uuid}", h.UpdateConnection)
	mux.HandleFunc("DELETE /api/connections/{uuid}", h.DeleteConnection)
	mux.HandleFunc("GET /api/connections/{uuid}/secrets/{setting}", h.GetSecrets)
	mux.HandleFunc("POST /api/connections/{uuid}/visible", h.SetVisible)

	mux.HandleFunc("POST /api/diff", h.Diff)
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrExists), errors.Is(err, service.ErrUUIDMismatch):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoSecrets):
		return http.StatusNotFound
	case errors.Is(err, setting.ErrUnknownSetting),
		errors.Is(err, setting.ErrMissingSetting),
		errors.Is(err, setting.ErrMissingProperty),
		errors.Is(err, setting.ErrInvalidProperty),
		errors.Is(err, setting.ErrPropertyNotFound),
		errors.Is(err, setting.ErrPropertyTypeMismatch),
		errors.Is(err, setting.ErrInvalidSecretFlags),
		errors.Is(err, setting.ErrVerify):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err with the status it maps to, logging server errors
func (h *ConnectionHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
	}
	h.writeError(w, msg, err.Error(), status)
}

// Helper methods

func (h *ConnectionHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *ConnectionHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
