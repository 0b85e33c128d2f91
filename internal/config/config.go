package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"velociti_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// Scan broker
	NATSURL     string
	ScanSubject string

	// Redis rate limiter (optional, fail-open when unset)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit  int
	APIRateWindow time.Duration

	// Fare gate
	FareAmount        int64
	EntryStationID    string
	EntryStationName  string
	ExitStationID     string
	ExitStationName   string
	CardAllocAttempts int

	// Reader provisioning: reader id → account id, plus an optional
	// fallback account for readers missing from the table.
	ReaderBindings  map[string]int64
	DefaultScanUser int64
}

// Load reads configuration from the environment. Missing secrets are fatal,
// everything else has a local-dev default.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://127.0.0.1:4222"
	}

	scanSubject := os.Getenv("SCAN_SUBJECT")
	if scanSubject == "" {
		scanSubject = "rfid.scans"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	fare := int64(150)
	if v := os.Getenv("FARE_AMOUNT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			fare = n
		}
	}

	cardAttempts := 20
	if v := os.Getenv("CARD_ALLOC_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cardAttempts = n
		}
	}

	// READER_BINDINGS format: "READER-A=12,READER-B=15"
	readerBindings := map[string]int64{}
	if v := os.Getenv("READER_BINDINGS"); v != "" {
		for _, pair := range strings.Split(v, ",") {
			parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
			if len(parts) != 2 {
				continue
			}
			if id, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
				readerBindings[parts[0]] = id
			}
		}
	}

	var defaultScanUser int64
	if v := os.Getenv("DEFAULT_SCAN_USER"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			defaultScanUser = n
		}
	}

	return &Config{
		AppPort:           port,
		DatabaseURL:       dbURL,
		JWTSecret:         jwtSecret,
		NATSURL:           natsURL,
		ScanSubject:       scanSubject,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		APIRateLimit:      apiRateLimit,
		APIRateWindow:     apiRateWindow,
		FareAmount:        fare,
		EntryStationID:    envOr("ENTRY_STATION_ID", "STN-001"),
		EntryStationName:  envOr("ENTRY_STATION_NAME", "Angulana"),
		ExitStationID:     envOr("EXIT_STATION_ID", "STN-014"),
		ExitStationName:   envOr("EXIT_STATION_NAME", "Galle"),
		CardAllocAttempts: cardAttempts,
		ReaderBindings:    readerBindings,
		DefaultScanUser:   defaultScanUser,
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
