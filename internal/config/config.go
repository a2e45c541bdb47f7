package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config collects everything the composition root needs, loaded once at
// startup from the environment (with .env support for local development).
type Config struct {
	Addr           string
	AllowedOrigins []string
	AdminKey       string

	CatalogPath    string
	PackConfigPath string

	StorageDriver   string // "sqlite" or "redis"
	DBPath          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	StorageCapacity int64 // bytes; <= 0 disables quota enforcement

	// RNGSeed makes every draw replayable when set; leave unset in
	// production so opens are actually random.
	RNGSeed    uint64
	RNGSeedSet bool

	OpenRateRPS   float64
	OpenRateBurst int

	MetricsInterval time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// fine; explicit env vars always win.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := &Config{
		Addr:            envString("ADDR", ":8080"),
		AllowedOrigins:  splitCSV(envString("ALLOWED_ORIGINS", "http://localhost:4321")),
		AdminKey:        os.Getenv("ADMIN_KEY"),
		CatalogPath:     envString("CATALOG_PATH", "./config/catalog.yaml"),
		PackConfigPath:  os.Getenv("PACK_CONFIG_PATH"), // empty -> built-in default pack
		StorageDriver:   envString("STORAGE_DRIVER", "sqlite"),
		DBPath:          envString("DB_PATH", "./data/dadpack.db"),
		RedisAddr:       envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envInt("REDIS_DB", 0),
		StorageCapacity: envInt64("STORAGE_CAPACITY_BYTES", 50<<20),
		OpenRateRPS:     envFloat("OPEN_RATE_RPS", 2),
		OpenRateBurst:   envInt("OPEN_RATE_BURST", 5),
		MetricsInterval: envDuration("METRICS_INTERVAL", time.Minute),
	}

	if raw := os.Getenv("RNG_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Printf("Warning: ignoring unparseable RNG_SEED %q: %v", raw, err)
		} else {
			cfg.RNGSeed = seed
			cfg.RNGSeedSet = true
			log.Printf("RNG_SEED set: draws are deterministic this session")
		}
	}

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: ignoring unparseable %s=%q", key, v)
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		log.Printf("Warning: ignoring unparseable %s=%q", key, v)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Warning: ignoring unparseable %s=%q", key, v)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Warning: ignoring unparseable %s=%q", key, v)
	}
	return fallback
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
