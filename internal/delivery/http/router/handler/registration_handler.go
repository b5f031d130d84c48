package handler

import (
	"log/slog"
	"net/http"

	"beacon/internal/delivery/http/response"
	"beacon/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RegistrationHandlerParams holds dependencies for RegistrationHandler, injected by Fx.
type RegistrationHandlerParams struct {
	fx.In

	RegistrationUC usecase.RegistrationUsecase
	Logger         *slog.Logger
}

// RegistrationHandler exposes the registration coordinator to the host.
type RegistrationHandler struct {
	registrationUC usecase.RegistrationUsecase
	logger         *slog.Logger
}

// NewRegistrationHandler is the constructor for RegistrationHandler.
func NewRegistrationHandler(params RegistrationHandlerParams) *RegistrationHandler {
	return &RegistrationHandler{
		registrationUC: params.RegistrationUC,
		logger:         params.Logger,
	}
}

// InitializeRequest represents the request body for a registration attempt.
type InitializeRequest struct {
	Force bool `json:"force"`
}

// GetStatus reports the coordinator state without mutating it.
func (h *RegistrationHandler) GetStatus(c echo.Context) error {
	status, err := h.registrationUC.Status(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, status, "Registration status retrieved successfully")
}

// Initialize runs one registration attempt, optionally bypassing the
// cooldown and limit guards.
func (h *RegistrationHandler) Initialize(c echo.Context) error {
	var req InitializeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid initialize input")
	}

	attempted, err := h.registrationUC.Initialize(c.Request().Context(), req.Force)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	status, err := h.registrationUC.Status(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"attempted": attempted,
		"status":    status,
	}, "Registration initialized")
}

// Reset clears the retry budget and pending timers.
func (h *RegistrationHandler) Reset(c echo.Context) error {
	if err := h.registrationUC.ForceReset(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Registration state reset"}, "Registration state reset")
}
