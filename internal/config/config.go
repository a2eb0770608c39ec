package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Sessions SessionConfig
	Redis    RedisConfig
	Cleanup  CleanupConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// StoreConfig selects the document store driver: "mongodb" or "memory"
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// JWTConfig holds the settings used to validate session tokens
type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn int
}

// StorageConfig holds file upload configuration
type StorageConfig struct {
	Provider       string
	SpoolDir       string
	PhotoFolder    string
	DocumentFolder string
	MaxFileSize    int64
	S3             S3Config
	Local          LocalStorageConfig
}

// S3Config holds S3 bucket configuration. Endpoint is only set for
// S3-compatible services.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PublicURL string
}

// LocalStorageConfig holds configuration for the local directory provider
type LocalStorageConfig struct {
	Dir     string
	BaseURL string
}

// SessionConfig selects where wizard sessions live: "memory" or "redis"
type SessionConfig struct {
	Backend string
	TTL     time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CleanupConfig holds the cron schedule of the staged file cleanup
type CleanupConfig struct {
	Schedule string
}

// Load loads configuration from .env, config files and environment variables
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load(GetEnv("TOROS_ENV_FILE", ".env"))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if origins := GetEnvAsSlice("ALLOWED_ORIGINS", ",", nil); origins != nil {
		config.Server.AllowedOrigins = origins
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedOrigins", []string{"*"})
	v.SetDefault("Server.ShutdownTimeout", 10*time.Second)
	v.SetDefault("Store.Driver", "mongodb")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "club-toros")
	v.SetDefault("MongoDB.ConnectTimeout", 10*time.Second)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.Issuer", "club-toros")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("Storage.Provider", "local")
	v.SetDefault("Storage.SpoolDir", "./data/spool")
	v.SetDefault("Storage.PhotoFolder", "fotos")
	v.SetDefault("Storage.DocumentFolder", "documentos")
	v.SetDefault("Storage.MaxFileSize", 10<<20)
	v.SetDefault("Storage.S3.Bucket", "")
	v.SetDefault("Storage.S3.Region", "us-east-1")
	v.SetDefault("Storage.S3.Endpoint", "")
	v.SetDefault("Storage.S3.PublicURL", "")
	v.SetDefault("Storage.Local.Dir", "./data/uploads")
	v.SetDefault("Storage.Local.BaseURL", "http://localhost:4000/files")
	v.SetDefault("Sessions.Backend", "memory")
	v.SetDefault("Sessions.TTL", 24*time.Hour)
	v.SetDefault("Redis.Addr", "localhost:6379")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Cleanup.Schedule", "@every 1h")
	v.SetDefault("LogLevel", "info")
}
