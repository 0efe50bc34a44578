package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"port"`
	DBDSN         string        `mapstructure:"db_dsn"`
	LogFile       string        `mapstructure:"log_file"`
	SourceURL     string        `mapstructure:"source_url"`
	PageSize      int           `mapstructure:"page_size"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	FetchRetries  int           `mapstructure:"fetch_retries"`
	FetchRate     float64       `mapstructure:"fetch_rate"`
	PhotoTimeout  time.Duration `mapstructure:"photo_timeout"`
	PhotoWorkers  int           `mapstructure:"photo_workers"`
	FallbackPhoto string        `mapstructure:"fallback_photo"`
	RedisURL      string        `mapstructure:"redis_url"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

var defaults = map[string]any{
	"port":           "8081",
	"db_dsn":         "clearfashion.db", // sqlite file in project root
	"log_file":       "./clearfashion.log",
	"source_url":     "https://clear-fashion-api.vercel.app",
	"page_size":      12,
	"fetch_timeout":  10 * time.Second,
	"fetch_retries":  3,
	"fetch_rate":     5.0,
	"photo_timeout":  2 * time.Second,
	"photo_workers":  8,
	"fallback_photo": "/static/no-photo.svg",
	"redis_url":      "",
	"cache_ttl":      10 * time.Minute,
}

// Load reads the environment (after an optional .env file) into a Config.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using environment")
	}
	return FromViper(viper.New())
}

// FromViper resolves every key against v, the environment and the defaults.
func FromViper(v *viper.Viper) Config {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("[config] %v", err)
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 12
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SOURCE_URL=%s PAGE_SIZE=%d REDIS=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.SourceURL, cfg.PageSize, cfg.RedisURL != "")
	return cfg
}
