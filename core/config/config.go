package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Server      ServerConfig
		Database    DatabaseConfig
		Redis       RedisConfig
		JWT         JWTConfig
		GoogleAPI   GoogleAPIConfig
		PayGateway  PayGatewayConfig
		SMSGateway  SMSGatewayConfig
		PushGateway PushGatewayConfig
		Reminder    ReminderConfig
		Secrets     SecretsConfig
		Worker      WorkerConfig
		LogLevel    string
	}

	ServerConfig struct {
		Host    string
		Port    int
		BaseURL string // public base URL used to build gateway callback links
	}

	DatabaseConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	JWTConfig struct {
		Secret          string
		AccessTokenTTL  time.Duration
		RefreshTokenTTL time.Duration
	}

	GoogleAPIConfig struct {
		ClientID     string
		ClientSecret string
		RedirectURI  string
	}

	PayGatewayConfig struct {
		BaseURL string
		APIKey  string
	}

	SMSGatewayConfig struct {
		BaseURL string
		APIKey  string
		Brand   string
	}

	PushGatewayConfig struct {
		BaseURL string
		APIKey  string
	}

	ReminderConfig struct {
		Window time.Duration
	}

	SecretsConfig struct {
		// EncryptionSecret is the process-wide secret the token-encryption
		// key is derived from. Never logged.
		EncryptionSecret string
	}

	WorkerConfig struct {
		Enabled     bool
		Concurrency int
	}
)

var (
	instance *Config
	mu       sync.RWMutex
)

// Init loads .env (best effort) then environment variables via viper.
func Init() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("SERVER_BASE_URL", "http://localhost:7070")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "lawlink")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("REMINDER_WINDOW", "")
	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Host:    v.GetString("SERVER_HOST"),
			Port:    v.GetInt("SERVER_PORT"),
			BaseURL: v.GetString("SERVER_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		GoogleAPI: GoogleAPIConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURI:  v.GetString("GOOGLE_REDIRECT_URI"),
		},
		PayGateway: PayGatewayConfig{
			BaseURL: v.GetString("PAY_GATEWAY_URL"),
			APIKey:  v.GetString("PAY_GATEWAY_API_KEY"),
		},
		SMSGateway: SMSGatewayConfig{
			BaseURL: v.GetString("SMS_GATEWAY_URL"),
			APIKey:  v.GetString("SMS_GATEWAY_API_KEY"),
			Brand:   v.GetString("SMS_BRAND_NAME"),
		},
		PushGateway: PushGatewayConfig{
			BaseURL: v.GetString("PUSH_GATEWAY_URL"),
			APIKey:  v.GetString("PUSH_GATEWAY_API_KEY"),
		},
		Reminder: ReminderConfig{
			Window: v.GetDuration("REMINDER_WINDOW"),
		},
		Secrets: SecretsConfig{
			EncryptionSecret: v.GetString("ENCRYPTION_SECRET"),
		},
		Worker: WorkerConfig{
			Enabled:     v.GetBool("WORKER_ENABLED"),
			Concurrency: v.GetInt("WORKER_CONCURRENCY"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the loaded config; panics when Init has not run.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Get called before Init")
	}
	return cfg
}

// GetSafe returns the loaded config and whether it is initialized.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil, false
	}
	return instance, true
}

// SetForTesting swaps the config instance. Test helper only.
func SetForTesting(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
