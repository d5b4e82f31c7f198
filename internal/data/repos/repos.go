package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/wellspring-backend/internal/data/repos/auth"
	"github.com/yungbote/wellspring-backend/internal/data/repos/user"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type Repos struct {
	User      UserRepo
	UserToken UserTokenRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:      user.NewUserRepo(db, log),
		UserToken: auth.NewUserTokenRepo(db, log),
	}
}
