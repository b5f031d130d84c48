package handler

import (
	"log/slog"
	"net/http"

	"beacon/internal/delivery/http/response"
	"beacon/internal/domain/service"
	"beacon/internal/infra/appstate"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SessionHandlerParams holds dependencies for SessionHandler, injected by Fx.
type SessionHandlerParams struct {
	fx.In

	SessionUC   usecase.SessionUsecase
	AppState    *appstate.Tracker
	PushTokens  *appstate.PushTokenStore
	Permissions *appstate.PermissionStore
	Logger      *slog.Logger
}

// SessionHandler exposes session lifecycle and host state reporting.
type SessionHandler struct {
	sessionUC   usecase.SessionUsecase
	appState    *appstate.Tracker
	pushTokens  *appstate.PushTokenStore
	permissions *appstate.PermissionStore
	logger      *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler.
func NewSessionHandler(params SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		sessionUC:   params.SessionUC,
		appState:    params.AppState,
		pushTokens:  params.PushTokens,
		permissions: params.Permissions,
		logger:      params.Logger,
	}
}

// StartSessionRequest represents the request body for starting a session.
type StartSessionRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// AppStateRequest represents the host's UI and permission state report.
type AppStateRequest struct {
	Foreground *bool  `json:"foreground" validate:"required"`
	Permission string `json:"permission" validate:"omitempty,oneof=granted denied undetermined"`
}

// PushTokenRequest represents the host-supplied platform push token.
type PushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// StartSession begins the signed-in session for the given user.
func (h *SessionHandler) StartSession(c echo.Context) error {
	var req StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid session input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	if err := h.sessionUC.Start(c.Request().Context(), userID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, map[string]string{"user_id": userID.String()}, "Session started successfully")
}

// EndSession tears the active session down.
func (h *SessionHandler) EndSession(c echo.Context) error {
	if err := h.sessionUC.End(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Session ended"}, "Session ended successfully")
}

// UpdateAppState records the foreground flag and, optionally, the
// notification permission state reported by the host.
func (h *SessionHandler) UpdateAppState(c echo.Context) error {
	var req AppStateRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid app state input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	h.appState.SetForeground(*req.Foreground)
	if req.Permission != "" {
		h.permissions.SetStatus(service.PermissionStatus(req.Permission))
	}

	return response.Success(c, http.StatusOK, map[string]bool{"foreground": *req.Foreground}, "App state updated")
}

// UpdatePushToken stores the platform push token handed over by the host.
func (h *SessionHandler) UpdatePushToken(c echo.Context) error {
	var req PushTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid push token input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	h.pushTokens.Set(req.Token)

	return response.Success(c, http.StatusOK, map[string]string{"message": "Push token updated"}, "Push token updated")
}
