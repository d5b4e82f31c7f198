package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wellspring-backend/internal/data/db"
	types "github.com/yungbote/wellspring-backend/internal/domain"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	UpdateName(ctx context.Context, tx *gorm.DB, userID uuid.UUID, firstName, lastName string) error
	UpdatePassword(ctx context.Context, tx *gorm.DB, userID uuid.UUID, passwordHash string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(gdb *gorm.DB, baseLog *logger.Logger) UserRepo {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &userRepo{db: gdb, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	return db.CreateAll(db.Conn(ctx, r.db, tx), users)
}

func (r *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	return db.FindIn[types.User](db.Conn(ctx, r.db, tx), "id", userIDs)
}

// GetByEmails matches exactly; callers normalize addresses first.
func (r *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	return db.FindIn[types.User](db.Conn(ctx, r.db, tx), "email", emails)
}

func (r *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.Conn(ctx, r.db, tx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepo) UpdateName(ctx context.Context, tx *gorm.DB, userID uuid.UUID, firstName, lastName string) error {
	return r.update(ctx, tx, userID, map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, tx *gorm.DB, userID uuid.UUID, passwordHash string) error {
	return r.update(ctx, tx, userID, map[string]any{"password": passwordHash})
}

func (r *userRepo) update(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]any) error {
	return db.Conn(ctx, r.db, tx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(fields).Error
}
