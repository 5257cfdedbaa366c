package router

import (
	"lawlink-api/core/middleware"
	"lawlink-api/modules/user/controller"

	"github.com/labstack/echo/v4"
)

type UserRouter struct {
	controller *controller.UserController
}

func NewUserRouter(controller *controller.UserController) *UserRouter {
	return &UserRouter{controller: controller}
}

func (r *UserRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/me", mw.AuthMiddleware())
	group.GET("", r.controller.GetMe)
	group.PUT("/notification-settings", r.controller.UpdateNotificationSettings)
}
