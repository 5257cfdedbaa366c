package router

import (
	"lawlink-api/core/middleware"
	"lawlink-api/modules/payment/controller"

	"github.com/labstack/echo/v4"
)

type PaymentRouter struct {
	controller *controller.PaymentController
}

func NewPaymentRouter(controller *controller.PaymentController) *PaymentRouter {
	return &PaymentRouter{controller: controller}
}

func (r *PaymentRouter) Register(private, public *echo.Group, mw *middleware.Middleware) {
	group := private.Group("/payments", mw.AuthMiddleware())
	group.POST("/initiate", r.controller.InitiatePayment)
	group.GET("/order/:orderRef", r.controller.GetPaymentByOrderRef)
	group.POST("/:id/refund", r.controller.RefundPayment)

	public.POST("/payments/callback", r.controller.HandleCallback)
}
