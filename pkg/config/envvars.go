package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "microfarm"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Canonical environment variable names referenced in error messages and tests.
const (
	EnvAppEnv      = "MICROFARM_APP_ENV"
	EnvPort        = "MICROFARM_APP_PORT"
	EnvDBDSN       = "MICROFARM_DB_DSN"
	EnvDBHost      = "MICROFARM_DB_HOST"
	EnvDBUser      = "MICROFARM_DB_USER"
	EnvDBName      = "MICROFARM_DB_NAME"
	EnvRedisURL    = "MICROFARM_REDIS_URL"
	EnvJWTSecret   = "MICROFARM_JWT_SECRET"
	EnvJWTIssuer   = "MICROFARM_JWT_ISSUER"
	EnvGCPProject  = "MICROFARM_GCP_PROJECT_ID"
	EnvDomainTopic = "MICROFARM_PUBSUB_DOMAIN_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
