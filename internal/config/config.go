package config // package config loads application configuration from the environment and an optional .env file

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values. Each field is bound to an
// environment variable through its mapstructure tag.
type Config struct {
	Env  string `mapstructure:"APP_ENV"`
	Port string `mapstructure:"APP_PORT"`

	DBDriver          string        `mapstructure:"DB_DRIVER"` // mysql | pgx | sqlite3
	DBUser            string        `mapstructure:"DB_USER"`
	DBPass            string        `mapstructure:"DB_PASS"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBPath            string        `mapstructure:"DB_PATH"` // sqlite3 only
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxIdleTime time.Duration `mapstructure:"DB_CONN_MAX_IDLE_TIME"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBConnectTimeout  time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AccessTTLMin   int    `mapstructure:"ACCESS_TOKEN_TTL_MIN"`
	RefreshTTLDays int    `mapstructure:"REFRESH_TOKEN_TTL_DAYS"`
	BcryptCost     int    `mapstructure:"BCRYPT_COST"`
	RequireAuth    bool   `mapstructure:"API_REQUIRE_AUTH"`

	UploadDir       string        `mapstructure:"UPLOAD_DIR"`
	UploadURLPrefix string        `mapstructure:"UPLOAD_URL_PREFIX"`
	UploadMaxBytes  int64         `mapstructure:"UPLOAD_MAX_BYTES"`
	SweepInterval   time.Duration `mapstructure:"IMAGE_SWEEP_INTERVAL"`
	OrphanGrace     time.Duration `mapstructure:"IMAGE_ORPHAN_GRACE"`

	AMQPURL               string `mapstructure:"AMQP_URL"`
	RosterConsumerEnabled bool   `mapstructure:"ROSTER_CONSUMER_ENABLED"`
	RosterLogPath         string `mapstructure:"ROSTER_LOG_PATH"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	Redis     RedisConfig     `mapstructure:",squash"`
	RateLimit RateLimitConfig `mapstructure:",squash"`
	Cache     CacheConfig     `mapstructure:",squash"`
}

var defaults = map[string]any{
	"APP_ENV":               "dev",
	"APP_PORT":              "8080",
	"DB_DRIVER":             "mysql",
	"DB_USER":               "",
	"DB_PASS":               "",
	"DB_HOST":               "127.0.0.1",
	"DB_PORT":               "3306",
	"DB_NAME":               "venue",
	"DB_PATH":               "venue.db",
	"DB_MAX_OPEN_CONNS":     20,
	"DB_MAX_IDLE_CONNS":     10,
	"DB_CONN_MAX_IDLE_TIME": 30 * time.Second,
	"DB_CONN_MAX_LIFETIME":  30 * time.Minute,
	"DB_CONNECT_TIMEOUT":    5 * time.Second,

	"JWT_SECRET":             "",
	"ACCESS_TOKEN_TTL_MIN":   60,
	"REFRESH_TOKEN_TTL_DAYS": 30,
	"BCRYPT_COST":            10,
	"API_REQUIRE_AUTH":       false,

	"UPLOAD_DIR":           "public/uploads",
	"UPLOAD_URL_PREFIX":    "/uploads",
	"UPLOAD_MAX_BYTES":     10 << 20,
	"IMAGE_SWEEP_INTERVAL": 10 * time.Minute,
	"IMAGE_ORPHAN_GRACE":   time.Hour,

	"AMQP_URL":                "",
	"ROSTER_CONSUMER_ENABLED": false,
	"ROSTER_LOG_PATH":         "logs/bookings.log",

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "text",
}

// Load reads an optional .env file, then the process environment, and
// returns the validated Config.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return LoadFrom(viper.New())
}

// LoadFrom builds a Config from the given viper instance. Tests use a fresh
// instance with values set explicitly.
func LoadFrom(v *viper.Viper) (Config, error) {
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for k, d := range redisDefaults {
		v.SetDefault(k, d)
	}
	for k, d := range rateLimitDefaults {
		v.SetDefault(k, d)
	}
	for k, d := range cacheDefaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.RateLimit.normalize()
	cfg.Cache.Methods = parseMethods(cfg.Cache.MethodList)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch c.DBDriver {
	case "mysql", "pgx":
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	case "sqlite3":
		if c.DBPath == "" {
			missing = append(missing, "DB_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql, pgx or sqlite3)", c.DBDriver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env var(s): %s", strings.Join(missing, ", "))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("invalid BCRYPT_COST %d", c.BcryptCost)
	}
	return nil
}
