package router

import (
	"lawlink-api/core/middleware"
	"lawlink-api/modules/credential/controller"

	"github.com/labstack/echo/v4"
)

type CredentialRouter struct {
	controller *controller.CredentialController
}

func NewCredentialRouter(controller *controller.CredentialController) *CredentialRouter {
	return &CredentialRouter{controller: controller}
}

func (r *CredentialRouter) Register(private, public *echo.Group, mw *middleware.Middleware) {
	group := private.Group("/calendar", mw.AuthMiddleware())
	group.GET("/connect", r.controller.Connect)
	group.GET("/status", r.controller.Status)
	group.DELETE("/connection", r.controller.Disconnect)

	public.GET("/calendar/callback", r.controller.Callback)
}
