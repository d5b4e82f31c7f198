package app

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/wellspring-backend/internal/data/db"
	"github.com/yungbote/wellspring-backend/internal/platform/envutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

const devJWTSecret = "dev-only-not-secret"

type Config struct {
	Env             string
	Addr            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
	CORSOrigins     []string
	MaxRequestBytes int64
	RateLimit       float64
	RateBurst       int
	JanitorInterval time.Duration
	DB              db.Config
}

func LoadConfig(log *logger.Logger) (Config, error) {
	if log == nil {
		log = logger.Nop()
	}
	cfg := Config{
		Env:             envutil.String("LOG_MODE", "development"),
		Addr:            ":" + envutil.String("PORT", "8080"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL:  envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Duration("REFRESH_TOKEN_TTL", 24*time.Hour),
		BcryptCost:      envutil.Int("BCRYPT_COST", 12),
		CORSOrigins:     envutil.List("CORS_ORIGINS", nil),
		MaxRequestBytes: int64(envutil.Int("MAX_REQUEST_BYTES", 64<<10)),
		RateLimit:       envutil.Float("RATE_LIMIT", 10),
		RateBurst:       envutil.Int("RATE_BURST", 30),
		JanitorInterval: envutil.Duration("SESSION_JANITOR_INTERVAL", time.Hour),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "wellspring"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", ""),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
		},
	}

	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		if cfg.Env != "development" {
			return Config{}, errors.New("JWT_SECRET_KEY is required outside development")
		}
		log.Warn("JWT_SECRET_KEY not set, using development secret")
		cfg.JWTSecretKey = devJWTSecret
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return Config{}, errors.New("token TTLs must be positive")
	}
	if cfg.RefreshTokenTTL < cfg.AccessTokenTTL {
		return Config{}, errors.New("REFRESH_TOKEN_TTL must not be shorter than ACCESS_TOKEN_TTL")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, errors.New("BCRYPT_COST out of range")
	}
	return cfg, nil
}
