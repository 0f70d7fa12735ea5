package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "FESTIVO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	PayPal       PayPalConfig
	Cron         CronConfig
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
	Env          string `envconfig:"FESTIVO_APP_ENV" required:"true"`
	Port         string `envconfig:"FESTIVO_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"FESTIVO_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"FESTIVO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FESTIVO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FESTIVO_DB_DSN"`

	Host     string `envconfig:"FESTIVO_DB_HOST"`
	Port     int    `envconfig:"FESTIVO_DB_PORT" default:"5432"`
	User     string `envconfig:"FESTIVO_DB_USER"`
	Password string `envconfig:"FESTIVO_DB_PASSWORD"`
	Name     string `envconfig:"FESTIVO_DB_NAME"`
	SSLMode  string `envconfig:"FESTIVO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FESTIVO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FESTIVO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FESTIVO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FESTIVO_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// Acquire bounds how long a request may wait for a pooled connection;
	// Statement bounds a single multi-step mutation before it is rolled back.
	AcquireTimeout   time.Duration `envconfig:"FESTIVO_DB_ACQUIRE_TIMEOUT" default:"5s"`
	StatementTimeout time.Duration `envconfig:"FESTIVO_DB_STATEMENT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FESTIVO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FESTIVO_REDIS_ADDR"`
	Password     string        `envconfig:"FESTIVO_REDIS_PASSWORD"`
	DB           int           `envconfig:"FESTIVO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FESTIVO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FESTIVO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FESTIVO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FESTIVO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FESTIVO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FESTIVO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FESTIVO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FESTIVO_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FESTIVO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FESTIVO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FESTIVO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FESTIVO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FESTIVO_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FESTIVO_AUTO_MIGRATE" default:"false"`
}

type PayPalConfig struct {
	ClientID     string `envconfig:"FESTIVO_PAYPAL_CLIENT_ID"`
	ClientSecret string `envconfig:"FESTIVO_PAYPAL_CLIENT_SECRET"`
	Env          string `envconfig:"FESTIVO_PAYPAL_ENV" default:"sandbox"`
	WebhookID    string `envconfig:"FESTIVO_PAYPAL_WEBHOOK_ID"`
	PartnerID    string `envconfig:"FESTIVO_PAYPAL_PARTNER_ID"`
	ReturnURL    string `envconfig:"FESTIVO_PAYPAL_RETURN_URL"`
}

// Environment returns the normalized PayPal environment (sandbox/live).
func (p PayPalConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(p.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"FESTIVO_CRON_INTERVAL" default:"1h"`
	LockKey          string        `envconfig:"FESTIVO_CRON_LOCK_KEY" default:"cron:payouts"`
	LockTTL          time.Duration `envconfig:"FESTIVO_CRON_LOCK_TTL" default:"2h"`
	WebhookDedupeTTL time.Duration `envconfig:"FESTIVO_WEBHOOK_DEDUPE_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for name, value := range map[string]string{
		"FESTIVO_DB_HOST": db.Host,
		"FESTIVO_DB_USER": db.User,
		"FESTIVO_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either FESTIVO_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
