package user

import (
	"lawlink-api/core/database"
	"lawlink-api/core/middleware"
	"lawlink-api/modules/user/controller"
	"lawlink-api/modules/user/repository"
	"lawlink-api/modules/user/router"
	"lawlink-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.Database, mw *middleware.Middleware) *service.UserService {
	repo := repository.NewUserRepository(db)
	svc := service.NewUserService(repo)
	ctrl := controller.NewUserController(svc)

	router.NewUserRouter(ctrl).Register(e, mw)

	return svc
}
