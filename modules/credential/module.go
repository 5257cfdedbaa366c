package credential

import (
	"lawlink-api/core/config"
	"lawlink-api/core/database"
	"lawlink-api/core/middleware"
	"lawlink-api/core/secrets"
	"lawlink-api/modules/credential/controller"
	"lawlink-api/modules/credential/repository"
	"lawlink-api/modules/credential/router"
	"lawlink-api/modules/credential/service"

	"github.com/labstack/echo/v4"
)

func Init(private, public *echo.Group, db database.Database, mw *middleware.Middleware) (*service.CredentialService, error) {
	cipher, err := secrets.NewCipher(config.Get().Secrets.EncryptionSecret)
	if err != nil {
		return nil, err
	}

	repo := repository.NewCredentialRepository(db)
	states := repository.NewOAuthStateRepository(db)
	svc := service.NewCredentialService(repo, states, cipher, service.NewCalendarClient())
	ctrl := controller.NewCredentialController(svc)

	router.NewCredentialRouter(ctrl).Register(private, public, mw)

	return svc, nil
}
