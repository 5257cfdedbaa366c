package payment

import (
	"lawlink-api/core/database"
	"lawlink-api/core/middleware"
	"lawlink-api/modules/payment/controller"
	"lawlink-api/modules/payment/repository"
	"lawlink-api/modules/payment/router"
	"lawlink-api/modules/payment/service"

	"github.com/labstack/echo/v4"
)

func Init(private, public *echo.Group, db database.Database, mw *middleware.Middleware, bookings service.BookingPort, contacts service.ContactResolver) *service.PaymentService {
	repo := repository.NewPaymentRepository(db)
	svc := service.NewPaymentService(repo, service.NewGatewayClient(), bookings, contacts)
	ctrl := controller.NewPaymentController(svc)

	router.NewPaymentRouter(ctrl).Register(private, public, mw)

	return svc
}
