package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "chambers"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CHAMBERS_DB_DSN"
	EnvDBHost = "CHAMBERS_DB_HOST"
	EnvDBUser = "CHAMBERS_DB_USER"
	EnvDBName = "CHAMBERS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Uploads       UploadsConfig
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
	Env          string `envconfig:"CHAMBERS_APP_ENV" required:"true"`
	Port         string `envconfig:"CHAMBERS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CHAMBERS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHAMBERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CHAMBERS_DB_DSN"`
	Driver string `envconfig:"CHAMBERS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHAMBERS_DB_HOST"`
	LegacyPort     int    `envconfig:"CHAMBERS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHAMBERS_DB_USER"`
	LegacyPassword string `envconfig:"CHAMBERS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHAMBERS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHAMBERS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHAMBERS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHAMBERS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHAMBERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHAMBERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHAMBERS_REDIS_URL"`
	Address      string        `envconfig:"CHAMBERS_REDIS_ADDR"`
	Password     string        `envconfig:"CHAMBERS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHAMBERS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHAMBERS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHAMBERS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHAMBERS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHAMBERS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHAMBERS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds token signing settings. The secret is required, so a process
// missing it fails during config load instead of serving unauthenticated traffic.
type JWTConfig struct {
	Secret            string `envconfig:"CHAMBERS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CHAMBERS_JWT_ISSUER" default:"chambers"`
	ExpirationMinutes int    `envconfig:"CHAMBERS_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CHAMBERS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CHAMBERS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CHAMBERS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CHAMBERS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CHAMBERS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CHAMBERS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CHAMBERS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"CHAMBERS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"CHAMBERS_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"CHAMBERS_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes returns the multipart upload cap in bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CHAMBERS_AUTO_MIGRATE" default:"false"`
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
