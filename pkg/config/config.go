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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	Recurrence   RecurrenceConfig
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
	Env          string `envconfig:"MICROFARM_APP_ENV" required:"true"`
	Port         string `envconfig:"MICROFARM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MICROFARM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MICROFARM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MICROFARM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MICROFARM_DB_DSN"`
	Driver string `envconfig:"MICROFARM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MICROFARM_DB_HOST"`
	LegacyPort     int    `envconfig:"MICROFARM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MICROFARM_DB_USER"`
	LegacyPassword string `envconfig:"MICROFARM_DB_PASSWORD"`
	LegacyName     string `envconfig:"MICROFARM_DB_NAME"`
	LegacySSLMode  string `envconfig:"MICROFARM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MICROFARM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MICROFARM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MICROFARM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MICROFARM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MICROFARM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MICROFARM_REDIS_ADDR"`
	Password     string        `envconfig:"MICROFARM_REDIS_PASSWORD"`
	DB           int           `envconfig:"MICROFARM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MICROFARM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MICROFARM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MICROFARM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MICROFARM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MICROFARM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MICROFARM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MICROFARM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MICROFARM_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MICROFARM_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MICROFARM_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"MICROFARM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"MICROFARM_PUBSUB_DOMAIN_TOPIC" default:"mf-domain-events"`
	DomainSubscription string `envconfig:"MICROFARM_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MICROFARM_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MICROFARM_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MICROFARM_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MICROFARM_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"MICROFARM_CRON_LOCK_TTL" default:"2h"`
}

type RecurrenceConfig struct {
	DeliveryLagDays int `envconfig:"MICROFARM_RECURRENCE_DELIVERY_LAG_DAYS" default:"1"`
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
