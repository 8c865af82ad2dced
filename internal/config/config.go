package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/agriconnect/pkg/config"
)

type Config struct {
	ServiceName string
	AppEnv      string
	LogLevel    string

	ServerPort int

	DatabaseURL string

	JWTAccessSecret    []byte
	JWTRefreshSecret   []byte
	JWTAccessExpiresIn string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration

	BcryptCost int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SweepInterval time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	WebhookSecret          string
	MercadoPagoAccessToken string
}

func (c Config) Development() bool {
	return c.AppEnv == "development"
}

// Load reads .env when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("notice: .env not loaded: %v", err)
	}

	accessLabel := config.EnvDefault("JWT_EXPIRES_IN", "1h")

	cfg := Config{
		ServiceName: config.EnvDefault("SERVICE_NAME", "agriconnect"),
		AppEnv:      config.EnvDefault("APP_ENV", "production"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort: config.EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:    []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret:   []byte(os.Getenv("JWT_REFRESH_SECRET")),
		JWTAccessExpiresIn: accessLabel,
		AccessTTL:          config.MustTTL(accessLabel, "JWT_EXPIRES_IN"),
		RefreshTTL:         config.MustTTL(config.EnvDefault("JWT_REFRESH_EXPIRES_IN", "14d"), "JWT_REFRESH_EXPIRES_IN"),

		BcryptCost: config.EnvIntDefault("BCRYPT_COST", bcrypt.DefaultCost),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       config.EnvIntDefault("REDIS_DB", 0),
		SweepInterval: config.MustTTL(config.EnvDefault("REFRESH_SWEEP_INTERVAL", "1h"), "REFRESH_SWEEP_INTERVAL"),

		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "produtos"),

		WebhookSecret:          os.Getenv("MERCADO_PAGO_WEBHOOK_SECRET"),
		MercadoPagoAccessToken: os.Getenv("MERCADO_PAGO_ACCESS_TOKEN"),
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	return cfg
}
