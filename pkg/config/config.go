package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "EPARTNIC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "EPARTNIC_DB_DSN"
	EnvDBHost = "EPARTNIC_DB_HOST"
	EnvDBUser = "EPARTNIC_DB_USER"
	EnvDBName = "EPARTNIC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Payments     PaymentsConfig
	Razorpay     RazorpayConfig
	Checkout     CheckoutConfig
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
	Env          string `envconfig:"EPARTNIC_APP_ENV" required:"true"`
	Port         string `envconfig:"EPARTNIC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EPARTNIC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EPARTNIC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EPARTNIC_DB_DSN"`
	Driver string `envconfig:"EPARTNIC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EPARTNIC_DB_HOST"`
	LegacyPort     int    `envconfig:"EPARTNIC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EPARTNIC_DB_USER"`
	LegacyPassword string `envconfig:"EPARTNIC_DB_PASSWORD"`
	LegacyName     string `envconfig:"EPARTNIC_DB_NAME"`
	LegacySSLMode  string `envconfig:"EPARTNIC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EPARTNIC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EPARTNIC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EPARTNIC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EPARTNIC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EPARTNIC_REDIS_URL" required:"true"`
	Password     string        `envconfig:"EPARTNIC_REDIS_PASSWORD"`
	DB           int           `envconfig:"EPARTNIC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EPARTNIC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EPARTNIC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EPARTNIC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EPARTNIC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EPARTNIC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EPARTNIC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EPARTNIC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EPARTNIC_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"EPARTNIC_CORS_ALLOWED_ORIGINS" default:"*"`
}

// PaymentsConfig tunes the built-in mock gateway.
type PaymentsConfig struct {
	MockSuccessRate float64       `envconfig:"EPARTNIC_PAYMENTS_MOCK_SUCCESS_RATE" default:"0.8"`
	MockDelay       time.Duration `envconfig:"EPARTNIC_PAYMENTS_MOCK_DELAY" default:"150ms"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"EPARTNIC_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"EPARTNIC_RAZORPAY_KEY_SECRET"`
	BaseURL   string `envconfig:"EPARTNIC_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
}

// Enabled reports whether live razorpay credentials were provided.
func (r RazorpayConfig) Enabled() bool {
	return strings.TrimSpace(r.KeyID) != "" && strings.TrimSpace(r.KeySecret) != ""
}

type CheckoutConfig struct {
	SessionTTL time.Duration `envconfig:"EPARTNIC_CHECKOUT_SESSION_TTL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EPARTNIC_AUTO_MIGRATE" default:"false"`
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
