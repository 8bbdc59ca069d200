package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Intents      IntentsConfig
	Stock        StockConfig
	Cron         CronConfig
	PrintJobs    PrintJobsConfig
	Identity     IdentityConfig
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
	Env          string `envconfig:"BALCAO_APP_ENV" required:"true"`
	Port         string `envconfig:"BALCAO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BALCAO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BALCAO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BALCAO_DB_DSN"`
	Driver string `envconfig:"BALCAO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BALCAO_DB_HOST"`
	LegacyPort     int    `envconfig:"BALCAO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BALCAO_DB_USER"`
	LegacyPassword string `envconfig:"BALCAO_DB_PASSWORD"`
	LegacyName     string `envconfig:"BALCAO_DB_NAME"`
	LegacySSLMode  string `envconfig:"BALCAO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BALCAO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BALCAO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BALCAO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BALCAO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BALCAO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BALCAO_REDIS_ADDR"`
	Password     string        `envconfig:"BALCAO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BALCAO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BALCAO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BALCAO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BALCAO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BALCAO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BALCAO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IntentsConfig controls payment intent issuance and terminal reconciliation.
type IntentsConfig struct {
	TTL            time.Duration `envconfig:"BALCAO_INTENT_TTL" default:"15m"`
	DedupTTL       time.Duration `envconfig:"BALCAO_TERMINAL_DEDUP_TTL" default:"24h"`
	IdempotencyTTL time.Duration `envconfig:"BALCAO_INTENT_IDEMPOTENCY_TTL" default:"168h"`
}

// StockConfig controls how stock that would go negative is treated, both at
// intent creation and during finalize.
type StockConfig struct {
	AllowNegative bool `envconfig:"BALCAO_STOCK_ALLOW_NEGATIVE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"BALCAO_CRON_INTERVAL" default:"1m"`
	LockTTL  time.Duration `envconfig:"BALCAO_CRON_LOCK_TTL" default:"5m"`
}

type PrintJobsConfig struct {
	Retention time.Duration `envconfig:"BALCAO_PRINT_JOB_RETENTION" default:"720h"`
}

// IdentityConfig holds the non-secret values served by the public config
// endpoint.
type IdentityConfig struct {
	ClientID string `envconfig:"BALCAO_IDP_CLIENT_ID"`
	Issuer   string `envconfig:"BALCAO_IDP_ISSUER"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BALCAO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BALCAO_AUTO_MIGRATE" default:"false"`
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
