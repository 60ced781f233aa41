// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Bot       BotConfig       `mapstructure:"bot"`
	Platform  PlatformConfig  `mapstructure:"platform"`
	Rates     RatesConfig     `mapstructure:"rates"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Trading   TradingConfig   `mapstructure:"trading"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	AutoGem   AutoGemConfig   `mapstructure:"autogem"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Health    HealthConfig    `mapstructure:"health"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// BotConfig identifies the bot account and its administrators.
type BotConfig struct {
	SteamID string   `mapstructure:"steam_id"`
	Owners  []string `mapstructure:"owners"`
}

// PlatformConfig holds the session bridge endpoints.
type PlatformConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	EventsURL         string        `mapstructure:"events_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	MaxReconnects     int           `mapstructure:"max_reconnects"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
}

// RatesConfig holds the four fixed exchange rates, in gems.
type RatesConfig struct {
	KeyBuy          int64 `mapstructure:"key_buy"`
	KeySell         int64 `mapstructure:"key_sell"`
	CollectibleBuy  int64 `mapstructure:"collectible_buy"`
	CollectibleSell int64 `mapstructure:"collectible_sell"`
}

// LimitsConfig holds per-trade key limits. -1 means unlimited, 0 disables the
// direction.
type LimitsConfig struct {
	MaxBuy        int   `mapstructure:"max_buy"`
	MaxSell       int   `mapstructure:"max_sell"`
	ConvertToGems int64 `mapstructure:"convert_to_gems"`
}

// TradingConfig holds item policy and offer handling settings.
type TradingConfig struct {
	KeyNames         []string      `mapstructure:"key_names"`
	ItemsNotForTrade []string      `mapstructure:"items_not_for_trade"`
	MixedOfferPolicy string        `mapstructure:"mixed_offer_policy"`
	SettlementTTL    time.Duration `mapstructure:"settlement_ttl"`
}

// ChatConfig holds chat and friend handling settings.
type ChatConfig struct {
	MaxMsgPerSec   int           `mapstructure:"max_msg_per_sec"`
	SpamWindow     time.Duration `mapstructure:"spam_window"`
	BroadcastDelay time.Duration `mapstructure:"broadcast_delay"`
	InviteGroupID  string        `mapstructure:"invite_group_id"`
	IgnoreList     []string      `mapstructure:"ignore_list"`
}

// MessagesConfig holds the static reply texts.
type MessagesConfig struct {
	Welcome           string `mapstructure:"welcome"`
	Help              string `mapstructure:"help"`
	AdminHelp         string `mapstructure:"admin_help"`
	Info              string `mapstructure:"info"`
	CommentAfterTrade string `mapstructure:"comment_after_trade"`
}

// AutoGemConfig controls the collectible liquidation sweep.
type AutoGemConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	Throttle     time.Duration `mapstructure:"throttle"`
	RunOnStartup bool          `mapstructure:"run_on_startup"`
}

// StorageConfig selects the persistence driver for the ledger and block list.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	Dir           string `mapstructure:"dir"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// HealthConfig holds the health/ledger HTTP server settings.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Mixed offer policies.
const (
	MixedOfferReject    = "reject"
	MixedOfferFirstItem = "first_item"
)

// Storage drivers.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

var steamIDPattern = regexp.MustCompile(`^[0-9]{17}$`)

// MissingFieldsError lists every mandatory field that was not provided.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing mandatory configuration: " + strings.Join(e.Fields, ", ")
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "BOT_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "BOT_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "BOT_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_file", "BOT_LOG_FILE")

	// Bot account
	v.BindEnv("bot.steam_id", "BOT_STEAM_ID")
	v.BindEnv("bot.owners", "BOT_OWNERS")

	// Platform bridge
	v.BindEnv("platform.base_url", "BOT_PLATFORM_URL", "PLATFORM_URL")
	v.BindEnv("platform.events_url", "BOT_PLATFORM_EVENTS_URL", "PLATFORM_EVENTS_URL")
	v.BindEnv("platform.api_key", "BOT_PLATFORM_API_KEY", "PLATFORM_API_KEY")

	// Storage
	v.BindEnv("storage.driver", "BOT_STORAGE_DRIVER")
	v.BindEnv("storage.dir", "BOT_STORAGE_DIR")
	v.BindEnv("storage.redis_addr", "BOT_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("storage.redis_password", "BOT_REDIS_PASSWORD", "REDIS_PASSWORD")

	// Telemetry
	v.BindEnv("telemetry.enabled", "BOT_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "BOT_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "BOT_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "gem-key-bot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")

	v.SetDefault("bot.steam_id", "")
	v.SetDefault("bot.owners", []string{})

	// Platform defaults
	v.SetDefault("platform.base_url", "")
	v.SetDefault("platform.events_url", "")
	v.SetDefault("platform.api_key", "")
	v.SetDefault("platform.request_timeout", "15s")
	v.SetDefault("platform.requests_per_minute", 120)
	v.SetDefault("platform.max_reconnects", 0) // infinite
	v.SetDefault("platform.initial_backoff", "1s")
	v.SetDefault("platform.max_backoff", "30s")

	// Rates, in gems
	v.SetDefault("rates.key_buy", 4200)
	v.SetDefault("rates.key_sell", 3900)
	v.SetDefault("rates.collectible_buy", 10)
	v.SetDefault("rates.collectible_sell", 25)

	// Limits
	v.SetDefault("limits.max_buy", 50)
	v.SetDefault("limits.max_sell", 50)
	v.SetDefault("limits.convert_to_gems", 20)

	// Trading
	v.SetDefault("trading.key_names", []string{"Mann Co. Supply Crate Key"})
	v.SetDefault("trading.items_not_for_trade", []string{
		":cleancake:",
		":cleankey:",
		"A Clean Garage",
		":cleandino:",
		":cleanfloppy:",
		":dustpan:",
		":featherduster:",
		":cleanhourglass:",
		":goldfeatherduster:",
		"A Work-in-Progress Garage",
		":cleanseal:",
		"A Slightly Cleaner Garage",
		"A Messy Garage",
		"Dirty and Dusty",
		"All Tidied Up",
	})
	v.SetDefault("trading.mixed_offer_policy", MixedOfferReject)
	v.SetDefault("trading.settlement_ttl", "336h")

	// Chat
	v.SetDefault("chat.max_msg_per_sec", 3)
	v.SetDefault("chat.spam_window", "1s")
	v.SetDefault("chat.broadcast_delay", "500ms")
	v.SetDefault("chat.invite_group_id", "103582791474038795")
	v.SetDefault("chat.ignore_list", []string{})

	// Messages
	v.SetDefault("messages.welcome", defaultWelcome)
	v.SetDefault("messages.help", defaultHelp)
	v.SetDefault("messages.admin_help", defaultAdminHelp)
	v.SetDefault("messages.info", defaultInfo)
	v.SetDefault("messages.comment_after_trade", "+Rep! Thanks for Trading with me!")

	// Autogem
	v.SetDefault("autogem.enabled", true)
	v.SetDefault("autogem.interval", "168h")
	v.SetDefault("autogem.throttle", "1s")
	v.SetDefault("autogem.run_on_startup", true)

	// Storage
	v.SetDefault("storage.driver", StorageJSON)
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.sqlite_path", "data/bot.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "gembot")

	v.SetDefault("health.port", 8081)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "gem-key-bot")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Every missing mandatory field is
// reported at once; other problems are joined after it.
func (c *Config) Validate() error {
	var missing []string
	if c.Platform.BaseURL == "" {
		missing = append(missing, "platform.base_url")
	}
	if c.Platform.EventsURL == "" {
		missing = append(missing, "platform.events_url")
	}
	if c.Platform.APIKey == "" {
		missing = append(missing, "platform.api_key")
	}
	if c.Bot.SteamID == "" {
		missing = append(missing, "bot.steam_id")
	}
	if len(c.Bot.Owners) == 0 {
		missing = append(missing, "bot.owners")
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, &MissingFieldsError{Fields: missing})
	}

	if c.Bot.SteamID != "" && !steamIDPattern.MatchString(c.Bot.SteamID) {
		errs = append(errs, fmt.Errorf("bot.steam_id must be a 17-digit SteamID64"))
	}
	for _, id := range c.Bot.Owners {
		if !steamIDPattern.MatchString(id) {
			errs = append(errs, fmt.Errorf("bot.owners contains an invalid SteamID64: %q", id))
		}
	}
	if c.Rates.KeyBuy <= 0 || c.Rates.KeySell <= 0 || c.Rates.CollectibleBuy <= 0 || c.Rates.CollectibleSell <= 0 {
		errs = append(errs, fmt.Errorf("rates must be positive integers"))
	}
	if c.Limits.MaxBuy < -1 || c.Limits.MaxSell < -1 {
		errs = append(errs, fmt.Errorf("limits.max_buy and limits.max_sell must be -1 (unlimited) or >= 0"))
	}
	switch c.Trading.MixedOfferPolicy {
	case MixedOfferReject, MixedOfferFirstItem:
	default:
		errs = append(errs, fmt.Errorf("invalid trading.mixed_offer_policy: %q", c.Trading.MixedOfferPolicy))
	}
	switch c.Storage.Driver {
	case StorageJSON, StorageSQLite, StorageRedis:
	default:
		errs = append(errs, fmt.Errorf("invalid storage.driver: %q", c.Storage.Driver))
	}
	if len(c.Trading.KeyNames) == 0 {
		errs = append(errs, fmt.Errorf("trading.key_names cannot be empty"))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy with secret values masked, safe to log.
func (c Config) Redacted() Config {
	c.Platform.APIKey = mask(c.Platform.APIKey)
	c.Storage.RedisPassword = mask(c.Storage.RedisPassword)
	c.Telemetry.OTLPHeaders = mask(c.Telemetry.OTLPHeaders)
	return c
}

// IsOwner reports whether id is one of the configured administrators.
func (c *Config) IsOwner(id string) bool {
	for _, o := range c.Bot.Owners {
		if o == id {
			return true
		}
	}
	return false
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
