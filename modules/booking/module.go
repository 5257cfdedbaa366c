package booking

import (
	"lawlink-api/core/database"
	"lawlink-api/core/middleware"
	"lawlink-api/modules/booking/controller"
	"lawlink-api/modules/booking/repository"
	"lawlink-api/modules/booking/router"
	"lawlink-api/modules/booking/service"
	slotRepository "lawlink-api/modules/slot/repository"

	"github.com/labstack/echo/v4"
)

func Init(
	e *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	slots slotRepository.SlotRepositoryInterface,
	recipients service.RecipientResolver,
	calendar service.CalendarSyncer,
	notifier service.Notifier,
) (*service.BookingService, *repository.BookingRepository) {
	repo := repository.NewBookingRepository(db, slots)
	svc := service.NewBookingService(repo, slots, recipients, calendar, notifier)
	ctrl := controller.NewBookingController(svc)

	router.NewBookingRouter(ctrl).Register(e, mw)

	return svc, repo
}
