package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis     RedisConfig
	Identity  IdentityConfig
	Service   ServiceConfig
	Librarian LibrarianConfig
	Photos    PhotosConfig
	Portal    PortalConfig
	CORS      CORSConfig
	Log       LogConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// IdentityConfig drives access-token issuance and verification.
type IdentityConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// ServiceConfig holds the shared key that front-end clients present.
type ServiceConfig struct {
	APIKey string
}

// LibrarianConfig is the single librarian credential pair. It is injected
// from the environment rather than living in source.
type LibrarianConfig struct {
	Email    string
	Password string
}

// PhotosConfig controls student photo storage and signed retrieval URLs.
type PhotosConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// PortalConfig points printed QR codes at the public portal.
type PortalConfig struct {
	URL string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Identity = IdentityConfig{
		TokenSecret: v.GetString("IDENTITY_TOKEN_SECRET"),
		TokenTTL:    parseDuration(v.GetString("IDENTITY_TOKEN_TTL"), 24*time.Hour),
		Issuer:      v.GetString("IDENTITY_ISSUER"),
	}

	cfg.Service = ServiceConfig{APIKey: v.GetString("SERVICE_API_KEY")}

	cfg.Librarian = LibrarianConfig{
		Email:    v.GetString("LIBRARIAN_EMAIL"),
		Password: v.GetString("LIBRARIAN_PASSWORD"),
	}

	cfg.Photos = PhotosConfig{
		StorageDir:      v.GetString("PHOTOS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("PHOTOS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("PHOTOS_SIGNED_URL_TTL"), 365*24*time.Hour),
	}

	cfg.Portal = PortalConfig{URL: v.GetString("PORTAL_URL")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("IDENTITY_TOKEN_SECRET", "dev_secret")
	v.SetDefault("IDENTITY_TOKEN_TTL", "24h")
	v.SetDefault("IDENTITY_ISSUER", "library-portal-api")

	v.SetDefault("SERVICE_API_KEY", "dev_service_key")

	v.SetDefault("LIBRARIAN_EMAIL", "")
	v.SetDefault("LIBRARIAN_PASSWORD", "")

	v.SetDefault("PHOTOS_STORAGE_DIR", "./photos")
	v.SetDefault("PHOTOS_SIGNED_URL_SECRET", "dev_photos_secret")
	v.SetDefault("PHOTOS_SIGNED_URL_TTL", "8760h")

	v.SetDefault("PORTAL_URL", "https://bvdue-library.netlify.app/")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
