package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting, loaded once at process start
// and injected into components. Nothing else in the codebase reads
// the environment.
type Config struct {
	ServerPort string

	DB DBConfig

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Account lockout
	LockoutThreshold int
	LockoutDuration  time.Duration

	// SMS password reset
	ResetCodeTTL time.Duration

	// Rate limiting, per IP per scope
	LoginLimit     int
	RegisterLimit  int
	SMSLimit       int
	RateWindow     time.Duration
	RedisAddr      string // optional; empty means in-memory store
	RedisPassword  string

	// Twilio SMS dispatch; empty SID means log-only sender
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	LogLevel string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvMinutes(key string, def int) time.Duration {
	return time.Duration(getenvInt(key, def)) * time.Minute
}

// Load builds the Config from environment variables.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}

	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort: getenv("SERVER_PORT", "8080"),

		DB: *dbCfg,

		JWTSecret:       secret,
		AccessTokenTTL:  getenvMinutes("ACCESS_TOKEN_MINUTES", 30),
		RefreshTokenTTL: getenvMinutes("REFRESH_TOKEN_MINUTES", 7*24*60),

		LockoutThreshold: getenvInt("LOCKOUT_THRESHOLD", 5),
		LockoutDuration:  getenvMinutes("LOCKOUT_MINUTES", 15),

		ResetCodeTTL: getenvMinutes("RESET_CODE_MINUTES", 15),

		LoginLimit:    getenvInt("RATE_LOGIN_PER_MINUTE", 5),
		RegisterLimit: getenvInt("RATE_REGISTER_PER_MINUTE", 3),
		SMSLimit:      getenvInt("RATE_SMS_PER_MINUTE", 3),
		RateWindow:    time.Minute,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}, nil
}
