package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Supabase SupabaseConfig `yaml:"supabase" mapstructure:"supabase"`
	Chat     ChatConfig     `yaml:"chat" mapstructure:"chat"`
	Heatmap  HeatmapConfig  `yaml:"heatmap" mapstructure:"heatmap"`
	Simulate SimulateConfig `yaml:"simulate" mapstructure:"simulate"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SnapshotConfig selects where prediction snapshots are read from.
// Source is one of "dir", "http", "ftp" or "store".
type SnapshotConfig struct {
	Source  string `yaml:"source" mapstructure:"source"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	FTPURL  string `yaml:"ftp_url" mapstructure:"ftp_url"`
	FTPUser string `yaml:"ftp_user" mapstructure:"ftp_user"`
	FTPPass string `yaml:"ftp_pass" mapstructure:"ftp_pass"`
	MaxIdx  int    `yaml:"max_index" mapstructure:"max_index"`
}

// StoreConfig configures the snapshot database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SupabaseConfig holds identity provider settings.
type SupabaseConfig struct {
	URL          string `yaml:"url" mapstructure:"url"`
	AnonKey      string `yaml:"anon_key" mapstructure:"anon_key"`
	JWTSecret    string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	ProfileTable string `yaml:"profile_table" mapstructure:"profile_table"`
	RoleCacheTTL int    `yaml:"role_cache_ttl_secs" mapstructure:"role_cache_ttl_secs"`
}

// ChatConfig configures the chat assistant and its generative-text backend.
type ChatConfig struct {
	Provider  string          `yaml:"provider" mapstructure:"provider"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	// RatePerSec limits outbound generation calls.
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst            int     `yaml:"burst" mapstructure:"burst"`
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// GeminiConfig holds Gemini generateContent settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// HeatmapConfig configures the synthetic heatmap generator.
// A non-zero Seed makes point clouds reproducible for debugging.
type HeatmapConfig struct {
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
}

// SimulateConfig configures the prediction snapshot simulator.
type SimulateConfig struct {
	Files        int     `yaml:"files" mapstructure:"files"`
	IntervalSecs int     `yaml:"interval_secs" mapstructure:"interval_secs"`
	BaseKW       float64 `yaml:"base_kw" mapstructure:"base_kw"`
	VariationKW  float64 `yaml:"variation_kw" mapstructure:"variation_kw"`
	NoiseKW      float64 `yaml:"noise_kw" mapstructure:"noise_kw"`
	MaxErrorPct  float64 `yaml:"max_error_pct" mapstructure:"max_error_pct"`
}

// secretKeys are endpoints and credentials with no default; they normally
// arrive as FEDGRID_* environment variables.
var secretKeys = []string{
	"supabase.url",
	"supabase.anon_key",
	"supabase.jwt_secret",
	"chat.gemini.key",
	"chat.anthropic.key",
	"snapshot.base_url",
	"snapshot.ftp_url",
	"snapshot.ftp_user",
	"snapshot.ftp_pass",
}

// Load reads configuration from ./config.yaml (optional) and environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration from path, or from ./config.yaml when path
// is empty. An explicit path must exist.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("FEDGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	// AutomaticEnv only resolves keys viper already knows, so every
	// env-only setting needs a registered key.
	for _, key := range secretKeys {
		v.SetDefault(key, "")
	}
	v.SetDefault("heatmap.seed", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("snapshot.source", "dir")
	v.SetDefault("snapshot.dir", "public/frontend_data")
	v.SetDefault("snapshot.max_index", 100)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "fedgrid.db")
	v.SetDefault("supabase.profile_table", "profiles")
	v.SetDefault("supabase.role_cache_ttl_secs", 300)
	v.SetDefault("chat.provider", "gemini")
	v.SetDefault("chat.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("chat.gemini.model", "gemini-1.5-flash")
	v.SetDefault("chat.anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("chat.anthropic.max_tokens", 1024)
	v.SetDefault("chat.rate_per_sec", 2.0)
	v.SetDefault("chat.burst", 4)
	v.SetDefault("chat.failure_threshold", 5)
	v.SetDefault("chat.reset_timeout_secs", 30)
	v.SetDefault("simulate.files", 50)
	v.SetDefault("simulate.interval_secs", 5)
	v.SetDefault("simulate.base_kw", 2500)
	v.SetDefault("simulate.variation_kw", 500)
	v.SetDefault("simulate.noise_kw", 50)
	v.SetDefault("simulate.max_error_pct", 8.0)

	// Read config file (optional unless named)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings required by the given command mode are
// present. Mode is "serve" or "simulate".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Supabase.URL == "" {
			errs = append(errs, "supabase.url is required")
		}
		if c.Supabase.AnonKey == "" {
			errs = append(errs, "supabase.anon_key is required")
		}
		errs = append(errs, c.validateChat()...)
		errs = append(errs, c.validateSnapshot()...)
	case "simulate":
		if c.Simulate.Files < 1 || c.Simulate.Files > 100 {
			errs = append(errs, "simulate.files must be between 1 and 100")
		}
		if c.Simulate.MaxErrorPct < 0 {
			errs = append(errs, "simulate.max_error_pct must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateChat() []string {
	var errs []string
	switch c.Chat.Provider {
	case "gemini":
		if c.Chat.Gemini.Key == "" {
			errs = append(errs, "chat.gemini.key is required")
		}
	case "anthropic":
		if c.Chat.Anthropic.Key == "" {
			errs = append(errs, "chat.anthropic.key is required")
		}
	default:
		errs = append(errs, "chat.provider must be gemini or anthropic")
	}
	return errs
}

func (c *Config) validateSnapshot() []string {
	var errs []string
	switch c.Snapshot.Source {
	case "dir":
		if c.Snapshot.Dir == "" {
			errs = append(errs, "snapshot.dir is required")
		}
	case "http":
		if c.Snapshot.BaseURL == "" {
			errs = append(errs, "snapshot.base_url is required")
		}
	case "ftp":
		if c.Snapshot.FTPURL == "" {
			errs = append(errs, "snapshot.ftp_url is required")
		}
	case "store":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		errs = append(errs, "snapshot.source must be dir, http, ftp or store")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
