// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Forecast ForecastConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// StorageConfig configures the object store holding order invoices.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ForecastConfig holds the tunable forecasting windows.
type ForecastConfig struct {
	VelocityWeeks  int
	FallbackWeeks  int
	HorizonMonths  int
	SizeMixMonths  int
	RestockDefault int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "inventory")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 3600)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "invoices")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("FORECAST_VELOCITY_WEEKS", 26)
		viper.SetDefault("FORECAST_FALLBACK_WEEKS", 52)
		viper.SetDefault("FORECAST_HORIZON_MONTHS", 12)
		viper.SetDefault("FORECAST_SIZE_MIX_MONTHS", 6)
		viper.SetDefault("FORECAST_RESTOCK_MONTHS", 4)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Forecast: ForecastConfig{
				VelocityWeeks:  viper.GetInt("FORECAST_VELOCITY_WEEKS"),
				FallbackWeeks:  viper.GetInt("FORECAST_FALLBACK_WEEKS"),
				HorizonMonths:  viper.GetInt("FORECAST_HORIZON_MONTHS"),
				SizeMixMonths:  viper.GetInt("FORECAST_SIZE_MIX_MONTHS"),
				RestockDefault: viper.GetInt("FORECAST_RESTOCK_MONTHS"),
			},
		}
	})

	return instance
}
