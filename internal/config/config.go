package config

import (
	"errors"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ColorSeed drives palette sampling. When ColorSeedFixed is false a new
	// seed is drawn for every process, so colors differ between runs.
	ColorSeed      uint64
	ColorSeedFixed bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	seed, fixed, err := parseColorSeed()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:        sharedcfg.EnvOrDefault("DATA_PATH", "data/InfoVigiCru.geojson"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ColorSeed:       seed,
		ColorSeedFixed:  fixed,
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, errors.New("LOG_FORMAT must be json or text")
	}

	return cfg, nil
}

func parseColorSeed() (uint64, bool, error) {
	s := os.Getenv("COLOR_SEED")
	if s == "" {
		return rand.Uint64(), false, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, errors.New("invalid COLOR_SEED")
	}
	return n, true, nil
}
