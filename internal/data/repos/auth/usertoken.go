package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wellspring-backend/internal/data/db"
	types "github.com/yungbote/wellspring-backend/internal/domain"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

// UserTokenRepo stores sessions. Deletes are soft except FullDeleteExpired.
type UserTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) ([]*types.UserToken, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, tokenIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, tokenIDs []uuid.UUID) error
	ConsumeRefresh(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID, refreshToken string) (bool, error)
	SoftDeleteByUserIDExcept(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keepID uuid.UUID) error
	FullDeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(gdb *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &userTokenRepo{db: gdb, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) ([]*types.UserToken, error) {
	return db.CreateAll(db.Conn(ctx, r.db, tx), tokens)
}

func (r *userTokenRepo) GetByIDs(ctx context.Context, tx *gorm.DB, tokenIDs []uuid.UUID) ([]*types.UserToken, error) {
	return db.FindIn[types.UserToken](db.Conn(ctx, r.db, tx), "id", tokenIDs)
}

// GetByUserIDs returns sessions newest first.
func (r *userTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	return db.FindIn[types.UserToken](db.Conn(ctx, r.db, tx), "user_id", userIDs, "created_at DESC")
}

func (r *userTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error) {
	return db.FindIn[types.UserToken](db.Conn(ctx, r.db, tx), "access_token", accessTokens)
}

func (r *userTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error) {
	return db.FindIn[types.UserToken](db.Conn(ctx, r.db, tx), "refresh_token", refreshTokens)
}

func (r *userTokenRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, tokenIDs []uuid.UUID) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return db.Conn(ctx, r.db, tx).
		Where("id IN ?", tokenIDs).
		Delete(&types.UserToken{}).Error
}

// ConsumeRefresh soft-deletes the live session tokenID holding refreshToken.
// It reports false when no live row matched, i.e. another caller already
// rotated or revoked it.
func (r *userTokenRepo) ConsumeRefresh(ctx context.Context, tx *gorm.DB, tokenID uuid.UUID, refreshToken string) (bool, error) {
	res := db.Conn(ctx, r.db, tx).
		Where("id = ? AND refresh_token = ?", tokenID, refreshToken).
		Delete(&types.UserToken{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SoftDeleteByUserIDExcept revokes every session of userID but keepID.
func (r *userTokenRepo) SoftDeleteByUserIDExcept(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keepID uuid.UUID) error {
	return db.Conn(ctx, r.db, tx).
		Where("user_id = ? AND id <> ?", userID, keepID).
		Delete(&types.UserToken{}).Error
}

// FullDeleteExpired hard-deletes sessions that expired before the cutoff,
// soft-deleted rows included.
func (r *userTokenRepo) FullDeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	res := db.Conn(ctx, r.db, tx).
		Unscoped().
		Where("expires_at < ?", before).
		Delete(&types.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Info("expired sessions purged", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
