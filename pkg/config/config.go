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
	JWT          JWTConfig
	Password     PasswordConfig
	Catalog      CatalogConfig
	Cloudinary   CloudinaryConfig
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
	Env          string   `envconfig:"QROBOTICS_APP_ENV" required:"true"`
	Port         string   `envconfig:"QROBOTICS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"QROBOTICS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"QROBOTICS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"QROBOTICS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QROBOTICS_DB_DSN"`
	Driver string `envconfig:"QROBOTICS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"QROBOTICS_DB_HOST"`
	Port     int    `envconfig:"QROBOTICS_DB_PORT" default:"5432"`
	User     string `envconfig:"QROBOTICS_DB_USER"`
	Password string `envconfig:"QROBOTICS_DB_PASSWORD"`
	Name     string `envconfig:"QROBOTICS_DB_NAME"`
	SSLMode  string `envconfig:"QROBOTICS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QROBOTICS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QROBOTICS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QROBOTICS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QROBOTICS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QROBOTICS_REDIS_URL"`
	Address      string        `envconfig:"QROBOTICS_REDIS_ADDR"`
	Password     string        `envconfig:"QROBOTICS_REDIS_PASSWORD"`
	DB           int           `envconfig:"QROBOTICS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QROBOTICS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QROBOTICS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QROBOTICS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QROBOTICS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QROBOTICS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"QROBOTICS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"QROBOTICS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"QROBOTICS_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"QROBOTICS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"QROBOTICS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"QROBOTICS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"QROBOTICS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"QROBOTICS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"QROBOTICS_ARGON_KEY_LEN" default:"32"`
}

type CatalogConfig struct {
	StorePageSize int `envconfig:"QROBOTICS_CATALOG_STORE_PAGE_SIZE" default:"12"`
	AdminPageSize int `envconfig:"QROBOTICS_CATALOG_ADMIN_PAGE_SIZE" default:"20"`
}

type CloudinaryConfig struct {
	CloudName   string        `envconfig:"QROBOTICS_CLOUDINARY_CLOUD_NAME" required:"true"`
	APIKey      string        `envconfig:"QROBOTICS_CLOUDINARY_API_KEY" required:"true"`
	APISecret   string        `envconfig:"QROBOTICS_CLOUDINARY_API_SECRET" required:"true"`
	Folder      string        `envconfig:"QROBOTICS_CLOUDINARY_FOLDER" default:"qrobotics"`
	CallTimeout time.Duration `envconfig:"QROBOTICS_CLOUDINARY_CALL_TIMEOUT" default:"10s"`
	MaxUploadMB int           `envconfig:"QROBOTICS_MAX_UPLOAD_MB" default:"10"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"QROBOTICS_CRON_INTERVAL" default:"24h"`
	ImageRetentionDays int           `envconfig:"QROBOTICS_CRON_IMAGE_RETENTION_DAYS" default:"7"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QROBOTICS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
