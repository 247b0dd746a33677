package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "haulhub"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "HAULHUB_DB_DSN"
	EnvDBHost = "HAULHUB_DB_HOST"
	EnvDBUser = "HAULHUB_DB_USER"
	EnvDBName = "HAULHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Marketplace  MarketplaceConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HAULHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"HAULHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HAULHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HAULHUB_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"HAULHUB_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HAULHUB_DB_DSN"`
	Driver string `envconfig:"HAULHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HAULHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"HAULHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HAULHUB_DB_USER"`
	LegacyPassword string `envconfig:"HAULHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"HAULHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"HAULHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HAULHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HAULHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HAULHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HAULHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HAULHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HAULHUB_REDIS_ADDR"`
	Password     string        `envconfig:"HAULHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"HAULHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HAULHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HAULHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HAULHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HAULHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HAULHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig covers token verification only; issuance lives in the external
// identity service.
type JWTConfig struct {
	Secret string `envconfig:"HAULHUB_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"HAULHUB_JWT_ISSUER" required:"true"`
}

type MarketplaceConfig struct {
	PlatformFeePercent  int    `envconfig:"HAULHUB_PLATFORM_FEE_PERCENT" default:"10"`
	TrackingCodePrefix  string `envconfig:"HAULHUB_TRACKING_CODE_PREFIX" default:"HHL"`
	TrackingCodeRetries int    `envconfig:"HAULHUB_TRACKING_CODE_RETRIES" default:"5"`
}

// RateLimitConfig throttles the two write surfaces carriers and shippers can
// hammer. A zero window or limit disables the corresponding limiter.
type RateLimitConfig struct {
	BidWindow  time.Duration `envconfig:"HAULHUB_BID_RATE_WINDOW" default:"1m"`
	BidLimit   int           `envconfig:"HAULHUB_BID_RATE_LIMIT" default:"10"`
	LoadWindow time.Duration `envconfig:"HAULHUB_LOAD_RATE_WINDOW" default:"1m"`
	LoadLimit  int           `envconfig:"HAULHUB_LOAD_RATE_LIMIT" default:"20"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"HAULHUB_CRON_INTERVAL" default:"24h"`
	LockTTL                   time.Duration `envconfig:"HAULHUB_CRON_LOCK_TTL" default:"25h"`
	NotificationRetentionDays int           `envconfig:"HAULHUB_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HAULHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HAULHUB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
