package config

// EnvPrefix is passed to envconfig; individual fields carry fully qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "BALCAO_APP_ENV"
	EnvPort     = "BALCAO_APP_PORT"
	EnvDBDSN    = "BALCAO_DB_DSN"
	EnvDBHost   = "BALCAO_DB_HOST"
	EnvDBUser   = "BALCAO_DB_USER"
	EnvDBName   = "BALCAO_DB_NAME"
	EnvRedisURL = "BALCAO_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
