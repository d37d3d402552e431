package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// placeholderSecret is accepted as JWT_SECRET in development only.
const placeholderSecret = "change-me"

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	Timezone  string        `env:"TIMEZONE,  default=Local"`

	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Ledger   LedgerConfig
	Pricing  PricingConfig
	AI       AIConfig
	Payment  PaymentConfig
	Admin    AdminFeedConfig
	Audit    AuditConfig
}

type StoreConfig struct {
	// Backend selects the durable medium: memory, redis, mongo or postgres.
	Backend   string `env:"STORE_BACKEND,    default=memory"`
	KeyPrefix string `env:"STORE_KEY_PREFIX, default=lumina_"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=lumina_studio"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	// Enabled turns on the Redis in-flight guard independently of the store backend.
	Enabled bool `env:"REDIS_ENABLED, default=false"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=postgres://localhost:5432/lumina?sslmode=disable"`
}

type LedgerConfig struct {
	SignupBonus   int64  `env:"SIGNUP_BONUS,   default=10"`
	DailyReward   int64  `env:"DAILY_REWARD,   default=5"`
	AdminEmail    string `env:"ADMIN_EMAIL,    default=admin@lumina.local"`
	AdminName     string `env:"ADMIN_NAME,     default=Super Admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminCoins    int64  `env:"ADMIN_COINS,    default=99999"`
}

type PricingConfig struct {
	Generate int64 `env:"PRICE_GENERATE, default=1"`
	Edit     int64 `env:"PRICE_EDIT,     default=1"`
	Analyze  int64 `env:"PRICE_ANALYZE,  default=1"`
}

type AIConfig struct {
	APIKey        string        `env:"GEMINI_API_KEY"`
	BaseURL       string        `env:"GEMINI_BASE_URL,   default=https://generativelanguage.googleapis.com/v1beta"`
	GenerateModel string        `env:"GENERATE_MODEL,    default=imagen-4.0-generate-001"`
	EditModel     string        `env:"EDIT_MODEL,        default=gemini-2.5-flash-image"`
	AnalyzeModel  string        `env:"ANALYZE_MODEL,     default=gemini-3-pro-preview"`
	Timeout       time.Duration `env:"AI_TIMEOUT,        default=90s"`
}

type PaymentConfig struct {
	UPIPayee  string `env:"UPI_PAYEE"`
	PayeeName string `env:"UPI_PAYEE_NAME, default=LuminaAI"`
}

type AdminFeedConfig struct {
	RefreshInterval time.Duration `env:"ADMIN_REFRESH_INTERVAL, default=5s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith resolves configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the timezone the daily reward calendar is evaluated in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTSecret == placeholderSecret && c.Env != "development" {
		return fmt.Errorf("JWT_SECRET must be changed outside development")
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendMongo, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Pricing.Generate < 0 || c.Pricing.Edit < 0 || c.Pricing.Analyze < 0 {
		return fmt.Errorf("prices must not be negative")
	}
	if c.Ledger.SignupBonus < 0 || c.Ledger.DailyReward < 0 {
		return fmt.Errorf("bonus amounts must not be negative")
	}
	return nil
}
