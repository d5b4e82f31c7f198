package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/wellspring-backend/internal/data/repos"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/services"
)

type Services struct {
	Auth services.AuthService
	User services.UserService
}

func wireServices(db *gorm.DB, log *logger.Logger, metrics *observability.Metrics, cfg Config, r repos.Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Auth: services.NewAuthService(db, log, metrics, r.User, r.UserToken, services.AuthConfig{
			JWTSecretKey: cfg.JWTSecretKey,
			AccessTTL:    cfg.AccessTokenTTL,
			RefreshTTL:   cfg.RefreshTokenTTL,
			BcryptCost:   cfg.BcryptCost,
		}),
		User: services.NewUserService(db, log, r.User, r.UserToken, cfg.BcryptCost),
	}
}
