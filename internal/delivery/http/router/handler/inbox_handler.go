package handler

import (
	"log/slog"
	"net/http"

	"beacon/internal/delivery/http/response"
	"beacon/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// InboxHandlerParams holds dependencies for InboxHandler, injected by Fx.
type InboxHandlerParams struct {
	fx.In

	UnreadUC usecase.UnreadUsecase
	ToastUC  usecase.ToastUsecase
	Logger   *slog.Logger
}

// InboxHandler exposes the unread counter and the presentation queue.
type InboxHandler struct {
	unreadUC usecase.UnreadUsecase
	toastUC  usecase.ToastUsecase
	logger   *slog.Logger
}

// NewInboxHandler is the constructor for InboxHandler.
func NewInboxHandler(params InboxHandlerParams) *InboxHandler {
	return &InboxHandler{
		unreadUC: params.UnreadUC,
		toastUC:  params.ToastUC,
		logger:   params.Logger,
	}
}

// GetUnread returns the current unread count.
func (h *InboxHandler) GetUnread(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]int{"count": h.unreadUC.Value()}, "Unread count retrieved successfully")
}

// GetToast returns the visible toast, or null when the slot is empty.
func (h *InboxHandler) GetToast(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.toastUC.Current(), "Toast retrieved successfully")
}

// DismissToast clears the visible toast.
func (h *InboxHandler) DismissToast(c echo.Context) error {
	h.toastUC.Dismiss(c.Request().Context())

	return response.Success(c, http.StatusOK, map[string]string{"message": "Toast dismissed"}, "Toast dismissed")
}

// TapToast dismisses the visible toast and routes to its conversation.
func (h *InboxHandler) TapToast(c echo.Context) error {
	if err := h.toastUC.Tap(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Toast tapped"}, "Toast tapped")
}

// HealthCheck reports service liveness.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
