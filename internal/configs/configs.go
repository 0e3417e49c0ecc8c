/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters by reading operating system environment variables,
including the running environment, port, CORS allowed origins, the admin display name,
room capacity, auction defaults, and the winner-dialogue options.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Built-in winner-dialogue lines, used when no WINNER_DIALOGUE_OPTION_n overrides are set.
var defaultDialogueOptions = []string{
	"와! 정말 좋은 가격에 샀네요!",
	"이거 진짜 필요했던 건데, 감사합니다!",
	"경매 정말 재미있네요!",
	"다음에도 또 참여하고 싶어요!",
}

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Room Settings
	AdminName    string
	MaxUsers     int
	ChatEnabled  bool
	MessageLimit int

	// Auction Defaults
	DefaultDecrementAmount   int
	DefaultDecrementInterval time.Duration

	// Winner Dialogue Settings
	DialogueOptions []string
	DialogueTimeout time.Duration

	// Client Movement Settings (forwarded verbatim to clients in configUpdate)
	MovementAnimationDuration float64
	MovementEaseType          string

	// Event Log Settings
	EventLogDir string
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type
// conversions and validation. It returns a pointer to the AppConfig struct and any
// error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := intEnv("PORT", 3500)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Room Settings ---
	cfg.AdminName = os.Getenv("ADMIN_NAME")
	if cfg.AdminName == "" {
		if cfg.Environment == "development" {
			cfg.AdminName = "Kane Lee"
		} else {
			return nil, fmt.Errorf("ADMIN_NAME environment variable is required in %s environment", cfg.Environment)
		}
	}

	if cfg.MaxUsers, err = intEnv("MAX_USERS", 150); err != nil {
		return nil, err
	}
	if cfg.MaxUsers <= 0 {
		return nil, fmt.Errorf("MAX_USERS must be positive, got %d", cfg.MaxUsers)
	}

	cfg.ChatEnabled = boolEnv("CHAT_ENABLED", true)

	if cfg.MessageLimit, err = intEnv("MESSAGE_STORE_LIMIT", 50000); err != nil {
		return nil, err
	}
	if cfg.MessageLimit <= 0 {
		return nil, fmt.Errorf("MESSAGE_STORE_LIMIT must be positive, got %d", cfg.MessageLimit)
	}

	// --- Auction Defaults ---
	if cfg.DefaultDecrementAmount, err = intEnv("AUCTION_DECREMENT_AMOUNT", 10); err != nil {
		return nil, err
	}
	if cfg.DefaultDecrementAmount <= 0 {
		return nil, fmt.Errorf("AUCTION_DECREMENT_AMOUNT must be positive, got %d", cfg.DefaultDecrementAmount)
	}

	intervalMs, err := intEnv("AUCTION_DECREMENT_INTERVAL_MS", 1000)
	if err != nil {
		return nil, err
	}
	cfg.DefaultDecrementInterval = time.Duration(intervalMs) * time.Millisecond

	// --- Winner Dialogue Settings ---
	cfg.DialogueOptions = make([]string, len(defaultDialogueOptions))
	copy(cfg.DialogueOptions, defaultDialogueOptions)
	for i := range cfg.DialogueOptions {
		if opt := os.Getenv(fmt.Sprintf("WINNER_DIALOGUE_OPTION_%d", i+1)); opt != "" {
			cfg.DialogueOptions[i] = opt
		}
	}

	timeoutMs, err := intEnv("WINNER_DIALOGUE_TIMEOUT_MS", 3000)
	if err != nil {
		return nil, err
	}
	if timeoutMs <= 0 {
		return nil, fmt.Errorf("WINNER_DIALOGUE_TIMEOUT_MS must be positive, got %d", timeoutMs)
	}
	cfg.DialogueTimeout = time.Duration(timeoutMs) * time.Millisecond

	// --- Client Movement Settings ---
	animStr := os.Getenv("MOVEMENT_ANIMATION_DURATION")
	if animStr == "" {
		animStr = "0.5"
	}
	anim, err := strconv.ParseFloat(animStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MOVEMENT_ANIMATION_DURATION environment variable: %w", err)
	}
	cfg.MovementAnimationDuration = anim

	cfg.MovementEaseType = os.Getenv("MOVEMENT_EASE_TYPE")
	if cfg.MovementEaseType == "" {
		cfg.MovementEaseType = "power2.out"
	}

	// --- Event Log Settings ---
	// An empty EVENT_LOG_DIR disables the event log entirely.
	cfg.EventLogDir = os.Getenv("EVENT_LOG_DIR")
	if cfg.EventLogDir == "" && cfg.Environment == "development" {
		cfg.EventLogDir = "logs"
	}

	return cfg, nil
}

// intEnv reads an integer environment variable, falling back to def when unset.
func intEnv(name string, def int) (int, error) {
	str := os.Getenv(name)
	if str == "" {
		return def, nil
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return val, nil
}

// boolEnv reads a boolean environment variable, falling back to def when unset.
func boolEnv(name string, def bool) bool {
	str := os.Getenv(name)
	if str == "" {
		return def
	}
	return str == "true" || str == "1"
}
