package router

import (
	"lawlink-api/core/constants"
	"lawlink-api/core/middleware"
	"lawlink-api/modules/slot/controller"

	"github.com/labstack/echo/v4"
)

type SlotRouter struct {
	controller *controller.SlotController
}

func NewSlotRouter(controller *controller.SlotController) *SlotRouter {
	return &SlotRouter{controller: controller}
}

func (r *SlotRouter) Register(private, public *echo.Group, mw *middleware.Middleware) {
	group := private.Group("/slots", mw.AuthMiddleware(), mw.RequireRole(constants.RoleProvider))
	group.POST("", r.controller.CreateSlot)
	group.DELETE("/:id", r.controller.DeleteSlot)

	public.GET("/slots", r.controller.ListSlots)
}
