package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port                    string
	Env                     string
	MetricsPort             string
	LogLevel                string
	DBDriver                string
	PostgresConnStr         string
	SQLitePath              string
	MongoURI                string
	MongoDatabase           string
	StorageDriver           string
	MediaRoot               string
	CacheDriver             string
	RedisURL                string
	PageCacheTTL            time.Duration
	SessionSecret           string
	FirebaseCredentialsPath string
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"ENV":                       "development",
	"METRICS_PORT":              "9090",
	"LOG_LEVEL":                 "info",
	"DB_DRIVER":                 "postgres",
	"POSTGRES_CONN_STR":         "",
	"SQLITE_PATH":               "yatube.db",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "yatube",
	"STORAGE_DRIVER":            "fs",
	"MEDIA_ROOT":                "media",
	"CACHE_DRIVER":              "memory",
	"REDIS_URL":                 "redis://localhost:6379/0",
	"PAGE_CACHE_TTL":            "20s",
	"SESSION_SECRET":            "supersecretsessionkey",
	"FIREBASE_CREDENTIALS_PATH": "",
}

// Load reads .env, an optional settings.toml and the environment, in
// increasing order of precedence
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("settings")
	v.SetConfigType("toml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn().Err(err).Msg("Unable to read settings.toml, using environment only.")
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		MetricsPort:             v.GetString("METRICS_PORT"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		DBDriver:                v.GetString("DB_DRIVER"),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		SQLitePath:              v.GetString("SQLITE_PATH"),
		MongoURI:                v.GetString("MONGO_URI"),
		MongoDatabase:           v.GetString("MONGO_DATABASE"),
		StorageDriver:           v.GetString("STORAGE_DRIVER"),
		MediaRoot:               v.GetString("MEDIA_ROOT"),
		CacheDriver:             v.GetString("CACHE_DRIVER"),
		RedisURL:                v.GetString("REDIS_URL"),
		PageCacheTTL:            v.GetDuration("PAGE_CACHE_TTL"),
		SessionSecret:           v.GetString("SESSION_SECRET"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
