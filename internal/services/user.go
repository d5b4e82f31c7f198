package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/wellspring-backend/internal/data/repos"
	types "github.com/yungbote/wellspring-backend/internal/domain"
	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/platform/validate"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

type nameInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

type passwordInput struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	bcryptCost    int
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, userTokenRepo repos.UserTokenRepo, bcryptCost int) UserService {
	if log == nil {
		log = logger.Nop()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		bcryptCost:    bcryptCost,
	}
}

func (us *userService) currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		us.log.Warn("user id not set in request data")
		return uuid.Nil, unauthorized(errors.New("no user in request"))
	}
	return rd.UserID, nil
}

func (us *userService) load(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, errUserNotFound
	}
	return found[0], nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := us.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return us.load(ctx, nil, userID)
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*types.User, error) {
	userID, err := us.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	in := nameInput{FirstName: strings.TrimSpace(firstName), LastName: strings.TrimSpace(lastName)}
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	var updated *types.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userRepo.UpdateName(ctx, tx, userID, in.FirstName, in.LastName); err != nil {
			return fmt.Errorf("update name: %w", err)
		}
		u, err := us.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		us.log.Warn("UpdateName failed", "error", err)
		return nil, err
	}
	return updated, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every other session of the user.
func (us *userService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	userID, err := us.currentUserID(ctx)
	if err != nil {
		return err
	}
	if err := validate.Struct(&passwordInput{NewPassword: newPassword}); err != nil {
		return err
	}
	user, err := us.load(ctx, nil, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return errWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), us.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	keep := uuid.Nil
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		keep = rd.SessionID
	}
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userRepo.UpdatePassword(ctx, tx, userID, string(hash)); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := us.userTokenRepo.SoftDeleteByUserIDExcept(ctx, tx, userID, keep); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		us.log.Warn("ChangePassword failed", "error", err)
		return err
	}
	us.log.Info("password changed", "user_id", userID)
	return nil
}
