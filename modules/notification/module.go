package notification

import (
	"lawlink-api/core/database"
	"lawlink-api/core/middleware"
	"lawlink-api/modules/notification/controller"
	"lawlink-api/modules/notification/repository"
	"lawlink-api/modules/notification/router"
	"lawlink-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.Database, mw *middleware.Middleware) (*service.NotificationService, *service.Dispatcher) {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	dispatcher := service.NewDispatcher(svc, service.NewSMSClient(), service.NewPushClient())
	return svc, dispatcher
}
