// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"beacon/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	RegistrationHandler *handler.RegistrationHandler
	SessionHandler      *handler.SessionHandler
	InboxHandler        *handler.InboxHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	registrationHandler *handler.RegistrationHandler
	sessionHandler      *handler.SessionHandler
	inboxHandler        *handler.InboxHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		registrationHandler: params.RegistrationHandler,
		sessionHandler:      params.SessionHandler,
		inboxHandler:        params.InboxHandler,
	}
}

// RegisterRoutes sets up all the control surface routes.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	v1 := e.Group("/v1")

	registrationGroup := v1.Group("/registration")
	{
		registrationGroup.GET("/status", r.registrationHandler.GetStatus)
		registrationGroup.POST("/initialize", r.registrationHandler.Initialize)
		registrationGroup.POST("/reset", r.registrationHandler.Reset)
	}

	sessionGroup := v1.Group("/session")
	{
		sessionGroup.POST("/start", r.sessionHandler.StartSession)
		sessionGroup.POST("/end", r.sessionHandler.EndSession)
	}

	toastGroup := v1.Group("/toast")
	{
		toastGroup.GET("", r.inboxHandler.GetToast)
		toastGroup.POST("/dismiss", r.inboxHandler.DismissToast)
		toastGroup.POST("/tap", r.inboxHandler.TapToast)
	}

	v1.GET("/unread", r.inboxHandler.GetUnread)
	v1.PUT("/app-state", r.sessionHandler.UpdateAppState)
	v1.PUT("/push-token", r.sessionHandler.UpdatePushToken)
}
