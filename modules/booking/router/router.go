package router

import (
	"lawlink-api/core/middleware"
	"lawlink-api/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

func (r *BookingRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/bookings", mw.AuthMiddleware())
	group.POST("", r.controller.CreateBooking)
	group.GET("", r.controller.GetMyBookings)
	group.GET("/:id", r.controller.GetBooking)
	group.PUT("/:id/cancel", r.controller.CancelBooking)
	group.PUT("/:id/complete", r.controller.CompleteBooking)
}
