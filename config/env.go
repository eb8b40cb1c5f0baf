package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type StorageMode string

const (
	InMemory       StorageMode = "inmemory"
	Mongo          StorageMode = "mongo"
	MongoWithCache StorageMode = "cached"
	Postgres       StorageMode = "postgres"
)

type AppMode string

const (
	ServerMode AppMode = "server"
	WorkerMode AppMode = "worker"
	SeedMode   AppMode = "seed"
)

type Config struct {
	AppMode               AppMode
	Port                  string
	StorageMode           StorageMode
	MongoUrl              string
	MongoDbName           string
	RedisUrl              string
	BrokerUrl             string
	PostgresUrl           string
	SanitizeFields        []string
	DeleteFailureRedirect string
	LogLevel              string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_MODE", string(ServerMode))
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("STORAGE_MODE", string(InMemory))
	v.SetDefault("SANITIZE_FIELDS", "body")
	v.SetDefault("DELETE_FAILURE_REDIRECT", "post")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads .env (if present), an optional CONFIG_FILE and the process environment, in rising priority.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppMode:               AppMode(v.GetString("APP_MODE")),
		Port:                  v.GetString("SERVER_PORT"),
		StorageMode:           StorageMode(v.GetString("STORAGE_MODE")),
		MongoUrl:              v.GetString("MONGO_URL"),
		MongoDbName:           v.GetString("MONGO_DBNAME"),
		RedisUrl:              v.GetString("REDIS_URL"),
		BrokerUrl:             v.GetString("BROKER_URL"),
		PostgresUrl:           v.GetString("POSTGRES_URL"),
		SanitizeFields:        splitList(v.GetString("SANITIZE_FIELDS")),
		DeleteFailureRedirect: v.GetString("DELETE_FAILURE_REDIRECT"),
		LogLevel:              v.GetString("LOG_LEVEL"),
	}
	return cfg, cfg.Validate()
}

// NoFields turns a list setting off; an empty variable falls back to the default.
const NoFields = "none"

func splitList(s string) []string {
	var out []string
	if strings.EqualFold(strings.TrimSpace(s), NoFields) {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.AppMode {
	case ServerMode, WorkerMode, SeedMode:
	default:
		return fmt.Errorf("invalid 'APP_MODE' %q", c.AppMode)
	}

	switch c.StorageMode {
	case InMemory:
	case Mongo, MongoWithCache:
		if c.MongoUrl == "" {
			return fmt.Errorf("'MONGO_URL' not specified")
		}
		if c.MongoDbName == "" {
			return fmt.Errorf("'MONGO_DBNAME' not specified")
		}
		if c.StorageMode == MongoWithCache && c.RedisUrl == "" {
			return fmt.Errorf("'REDIS_URL' was not specified for 'cached' STORAGE_MODE")
		}
	case Postgres:
		if c.PostgresUrl == "" {
			return fmt.Errorf("'POSTGRES_URL' was not specified for 'postgres' STORAGE_MODE")
		}
	default:
		return fmt.Errorf("invalid 'STORAGE_MODE' %q", c.StorageMode)
	}

	if c.AppMode == WorkerMode && (c.StorageMode != MongoWithCache || c.BrokerUrl == "") {
		return fmt.Errorf("worker mode requires 'cached' STORAGE_MODE and 'BROKER_URL'")
	}
	if c.AppMode == SeedMode && c.StorageMode == InMemory {
		return fmt.Errorf("seed mode requires a persistent STORAGE_MODE")
	}

	switch c.DeleteFailureRedirect {
	case "post", "literal":
	default:
		return fmt.Errorf("invalid 'DELETE_FAILURE_REDIRECT' %q", c.DeleteFailureRedirect)
	}
	return nil
}
