package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	Gateway    GatewayConfig
	AI         AIConfig
	Admin      AdminConfig
	Followup   FollowupConfig
	Whatsapp   WhatsappConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Version        string
	Port           string
	Debug          bool
	Environment    string
	BasePath       string
	TrustedProxies []string
}

type PathsConfig struct {
	Storages string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB name for Postgres
}

// GatewayConfig configures the Green-API style REST gateway transport.
type GatewayConfig struct {
	BaseURL          string
	InstanceID       string
	APITokenInstance string
	WebhookSecret    string
}

type AIConfig struct {
	Provider      string // "gemini" (default) or "openai"
	GeminiAPIKey  string
	OpenAIAPIKey  string
	ModelOverride string
}

// AdminConfig carries the admin panel credentials. There are deliberately
// no default values: the rest server refuses to expose the admin API when
// either field is empty.
type AdminConfig struct {
	User     string
	Password string
}

type FollowupConfig struct {
	PollInterval int // seconds between scheduler batches
	BatchLimit   int
	SendPauseMs  int
}

type WhatsappConfig struct {
	SessionName   string
	OS            string
	TypingEnabled bool
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration (set by LoadConfig).
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
// Lookups go through viper, so keys resolve case-insensitively against
// the process environment.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()

	storages := envString("app_storages_dir", "storages")

	cfg := &Config{
		App: AppConfig{
			Version:        "v1.2.0",
			Port:           envString("app_port", "3000"),
			Debug:          envBool("app_debug", false),
			Environment:    envString("app_env", "development"),
			BasePath:       envString("app_base_path", ""),
			TrustedProxies: splitList(envString("app_trusted_proxies", "")),
		},
		Paths: PathsConfig{Storages: storages},
		Database: DatabaseConfig{
			Driver:   envString("db_driver", "sqlite"),
			Name:     envString("db_name", filepath.Join(storages, "bot.db")),
			Host:     envString("db_host", "localhost"),
			Port:     envInt("db_port", 5432),
			User:     envString("db_user", "postgres"),
			Password: envString("db_password", ""),
		},
		Gateway: GatewayConfig{
			BaseURL:          envString("green_api_base_url", ""),
			InstanceID:       envString("green_api_id_instance", ""),
			APITokenInstance: envString("green_api_token", ""),
			WebhookSecret:    envString("webhook_secret", ""),
		},
		AI: AIConfig{
			Provider:      strings.ToLower(envString("ai_provider", "gemini")),
			GeminiAPIKey:  envString("gemini_api_key", ""),
			OpenAIAPIKey:  envString("openai_api_key", ""),
			ModelOverride: envString("gemini_model", ""),
		},
		Admin: AdminConfig{
			User:     envString("admin_user", ""),
			Password: envString("admin_pass", ""),
		},
		Followup: FollowupConfig{
			PollInterval: envInt("followup_poll_interval_sec", 60),
			BatchLimit:   envInt("followup_batch_limit", 50),
			SendPauseMs:  envInt("followup_send_pause_ms", 1000),
		},
		Whatsapp: WhatsappConfig{
			SessionName:   envString("wa_session_name", "main-session"),
			OS:            envString("app_os", "Linux"),
			TypingEnabled: envBool("wa_typing_enabled", true),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      envInt("message_worker_pool_size", 8),
			QueueSize: envInt("message_worker_queue_size", 256),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	Global = cfg
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}
	return nil
}

// AIAPIKey returns the API key for the configured provider.
func (c *Config) AIAPIKey() string {
	if c.AI.Provider == "openai" {
		return c.AI.OpenAIAPIKey
	}
	return c.AI.GeminiAPIKey
}

// AdminConfigured reports whether the admin panel may be exposed.
func (c *Config) AdminConfigured() bool {
	return c.Admin.User != "" && c.Admin.Password != ""
}

// GatewayConfigured reports whether the REST gateway transport is usable.
func (c *Config) GatewayConfigured() bool {
	return c.Gateway.BaseURL != "" && c.Gateway.InstanceID != "" && c.Gateway.APITokenInstance != ""
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n := viper.GetInt(key); n > 0 {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return fallback
}
