package slot

import (
	"lawlink-api/core/database"
	"lawlink-api/core/middleware"
	"lawlink-api/modules/slot/controller"
	"lawlink-api/modules/slot/repository"
	"lawlink-api/modules/slot/router"
	"lawlink-api/modules/slot/service"

	"github.com/labstack/echo/v4"
)

func Init(private, public *echo.Group, db database.Database, mw *middleware.Middleware) (*service.SlotService, *repository.SlotRepository) {
	repo := repository.NewSlotRepository(db)
	svc := service.NewSlotService(repo)
	ctrl := controller.NewSlotController(svc)

	router.NewSlotRouter(ctrl).Register(private, public, mw)

	return svc, repo
}
