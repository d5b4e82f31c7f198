package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/wellspring-backend/internal/data/db"
	"github.com/yungbote/wellspring-backend/internal/data/repos"
	types "github.com/yungbote/wellspring-backend/internal/domain"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/platform/validate"
)

type AuthConfig struct {
	JWTSecretKey string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	BcryptCost   int
	// Now defaults to time.Now.
	Now func() time.Time
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// SessionMeta describes the client opening a session.
type SessionMeta struct {
	UserAgent string
	IP        string
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	SessionID    uuid.UUID `json:"session_id"`
	ExpiresIn    int64     `json:"expires_in"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string, meta SessionMeta) (TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string, meta SessionMeta) (TokenPair, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	ListSessions(ctx context.Context) ([]*types.UserToken, error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
	GetAccessTTL() time.Duration
}

type accessClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	metrics       *observability.Metrics
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	cfg           AuthConfig
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	metrics *observability.Metrics,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	cfg AuthConfig,
) AuthService {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		metrics:       metrics,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		cfg:           cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validate.Struct(&in); err != nil {
		as.metrics.ObserveAuth("register", "invalid")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := as.userRepo.EmailExists(ctx, tx, user.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return errEmailTaken
		}
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			if db.IsUniqueViolation(err) {
				return errEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		as.metrics.ObserveAuth("register", "error")
		if !errors.Is(err, errEmailTaken) {
			as.log.Warn("register failed", "error", err)
		}
		return nil, err
	}
	as.metrics.ObserveAuth("register", "ok")
	as.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string, meta SessionMeta) (TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		as.metrics.ObserveAuth("login", "denied")
		return TokenPair{}, errInvalidCredentials
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		as.metrics.ObserveAuth("login", "denied")
		return TokenPair{}, errInvalidCredentials
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		as.metrics.ObserveAuth("login", "denied")
		return TokenPair{}, errInvalidCredentials
	}

	var pair TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := as.openSession(ctx, tx, user.ID, meta)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		as.metrics.ObserveAuth("login", "error")
		as.log.Warn("login failed", "error", err)
		return TokenPair{}, err
	}
	as.metrics.ObserveAuth("login", "ok")
	return pair, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string, meta SessionMeta) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		as.metrics.ObserveAuth("refresh", "denied")
		return TokenPair{}, errRefreshInvalid
	}

	found, err := as.userTokenRepo.GetByRefreshTokens(ctx, nil, []string{refreshToken})
	if err != nil {
		return TokenPair{}, fmt.Errorf("load session: %w", err)
	}
	if len(found) == 0 {
		as.metrics.ObserveAuth("refresh", "denied")
		return TokenPair{}, errRefreshInvalid
	}
	existing := found[0]
	if !existing.ExpiresAt.After(as.cfg.Now()) {
		if err := as.userTokenRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{existing.ID}); err != nil {
			as.log.Warn("failed to delete expired session", "error", err, "session_id", existing.ID)
		}
		as.metrics.ObserveAuth("refresh", "expired")
		return TokenPair{}, errRefreshExpired
	}
	if meta.UserAgent == "" {
		meta.UserAgent = existing.UserAgent
	}
	if meta.IP == "" {
		meta.IP = existing.IP
	}

	var pair TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		consumed, err := as.userTokenRepo.ConsumeRefresh(ctx, tx, existing.ID, refreshToken)
		if err != nil {
			return fmt.Errorf("remove old session: %w", err)
		}
		if !consumed {
			return errRefreshInvalid
		}
		p, err := as.openSession(ctx, tx, existing.UserID, meta)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if errors.Is(err, errRefreshInvalid) {
		as.metrics.ObserveAuth("refresh", "denied")
		return TokenPair{}, err
	}
	if err != nil {
		as.metrics.ObserveAuth("refresh", "error")
		as.log.Warn("refresh failed", "error", err)
		return TokenPair{}, err
	}
	as.metrics.ObserveAuth("refresh", "ok")
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return unauthorized(errors.New("no session in request"))
	}
	if err := as.userTokenRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{rd.SessionID}); err != nil {
		as.log.Warn("logout failed", "error", err)
		return fmt.Errorf("delete session: %w", err)
	}
	as.metrics.ObserveAuth("logout", "ok")
	return nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, unauthorized(errors.New("missing access token"))
	}
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(as.cfg.JWTSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.cfg.Now),
	)
	if err != nil {
		return ctx, unauthorized(fmt.Errorf("parse token: %w", err))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, unauthorized(fmt.Errorf("invalid subject: %w", err))
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, unauthorized(fmt.Errorf("invalid session id: %w", err))
	}

	found, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if len(found) == 0 || found[0].ID != sessionID || found[0].UserID != userID {
		return ctx, unauthorized(errors.New("session revoked"))
	}

	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
	})
	return ctx, nil
}

func (as *authService) ListSessions(ctx context.Context) ([]*types.UserToken, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, unauthorized(errors.New("no user in request"))
	}
	sessions, err := as.userTokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (as *authService) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return unauthorized(errors.New("no user in request"))
	}
	found, err := as.userTokenRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	// Sessions of other users are reported as missing.
	if len(found) == 0 || found[0].UserID != rd.UserID {
		return errSessionNotFound
	}
	if err := as.userTokenRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{sessionID}); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	as.metrics.ObserveAuth("revoke", "ok")
	return nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.cfg.AccessTTL
}

func (as *authService) openSession(ctx context.Context, tx *gorm.DB, userID uuid.UUID, meta SessionMeta) (TokenPair, error) {
	sessionID := uuid.New()
	access, err := as.generateAccessToken(userID, sessionID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	session := &types.UserToken{
		ID:           sessionID,
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		UserAgent:    meta.UserAgent,
		IP:           meta.IP,
		ExpiresAt:    as.cfg.Now().Add(as.cfg.RefreshTTL),
	}
	if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{session}); err != nil {
		return TokenPair{}, fmt.Errorf("create session: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: session.RefreshToken,
		SessionID:    sessionID,
		ExpiresIn:    int64(as.cfg.AccessTTL / time.Second),
	}, nil
}

func (as *authService) generateAccessToken(userID, sessionID uuid.UUID) (string, error) {
	now := as.cfg.Now()
	claims := accessClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.cfg.JWTSecretKey))
}
