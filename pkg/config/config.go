package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Storage       StorageConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"STOCKPIX_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOCKPIX_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOCKPIX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKPIX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKPIX_DB_DSN"`
	Driver string `envconfig:"STOCKPIX_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOCKPIX_DB_HOST"`
	Port     int    `envconfig:"STOCKPIX_DB_PORT" default:"5432"`
	User     string `envconfig:"STOCKPIX_DB_USER"`
	Password string `envconfig:"STOCKPIX_DB_PASSWORD"`
	Name     string `envconfig:"STOCKPIX_DB_NAME"`
	SSLMode  string `envconfig:"STOCKPIX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKPIX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKPIX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKPIX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKPIX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from the discrete parts when a full DSN
// was not provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("db config requires STOCKPIX_DB_DSN or host/user/name")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKPIX_REDIS_URL"`
	Address      string        `envconfig:"STOCKPIX_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKPIX_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKPIX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKPIX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKPIX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKPIX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKPIX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKPIX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKPIX_JWT_SECRET"`
	Issuer            string `envconfig:"STOCKPIX_JWT_ISSUER" default:"stockpix"`
	ExpirationMinutes int    `envconfig:"STOCKPIX_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKPIX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKPIX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKPIX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKPIX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKPIX_ARGON_KEY_LEN" default:"32"`

	ResetTokenTTL time.Duration `envconfig:"STOCKPIX_PASSWORD_RESET_TOKEN_TTL" default:"30m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOCKPIX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STOCKPIX_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOCKPIX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STOCKPIX_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STOCKPIX_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STOCKPIX_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type StorageConfig struct {
	// PublicDir is the directory served as static content by the fronting
	// web server. Uploaded files land under it; only relative paths are
	// persisted.
	PublicDir     string `envconfig:"STOCKPIX_STORAGE_PUBLIC_DIR" default:"public"`
	PublicBaseURL string `envconfig:"STOCKPIX_STORAGE_PUBLIC_BASE_URL" default:"/storage"`
	MaxUploadMB   int    `envconfig:"STOCKPIX_STORAGE_MAX_UPLOAD_MB" default:"2"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOCKPIX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOCKPIX_AUTO_MIGRATE" default:"false"`
}
