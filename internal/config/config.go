package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"OptiLiveAudit/pkg/logger"
)

const (
	configPathEnv     = "OPTILIVE_CONFIG"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	httpAddrEnv       = "HTTP_ADDR"
	logLevelEnv       = "LOG_LEVEL"
	auditSeedEnv      = "AUDIT_SEED"
	auditPopEnv       = "AUDIT_POPULATION"
)

var warn = logger.New("config")

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Audit         AuditConfig        `yaml:"audit"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	HTTP          HTTPConfig         `yaml:"http"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AuditConfig parameterises a pipeline run.
type AuditConfig struct {
	Population         int      `yaml:"population"`
	MaxPopulation      int      `yaml:"maxPopulation"`
	Seed               uint64   `yaml:"seed"`
	Threshold          int      `yaml:"threshold"`
	Features           []string `yaml:"features"`
	Workers            int      `yaml:"workers"`
	BlockSize          int      `yaml:"blockSize"`
	DisparityTolerance float64  `yaml:"disparityTolerance"`
}

// DatabaseConfig describes the SQL store. An empty DSN keeps the latest
// MemoryRuns reports in process memory instead.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	MemoryRuns int    `yaml:"memoryRuns"`
}

// SchedulerConfig defines how often audits re-run in serve mode.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	AuditsPerMinute int    `yaml:"auditsPerMinute"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			warn.Printf("cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			warn.Printf("cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Audit.Features) == 0 {
		cfg.Audit.Features = defaultConfig().Audit.Features
	}

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(auditSeedEnv); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Audit.Seed = seed
		} else {
			warn.Printf("ignoring %s=%q: %v", auditSeedEnv, v, err)
		}
	}
	if v := os.Getenv(auditPopEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Audit.Population = n
		} else {
			warn.Printf("ignoring %s=%q: %v", auditPopEnv, v, err)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Audit.Population != 0 {
		base.Audit.Population = override.Audit.Population
	}
	if override.Audit.MaxPopulation != 0 {
		base.Audit.MaxPopulation = override.Audit.MaxPopulation
	}
	if override.Audit.Seed != 0 {
		base.Audit.Seed = override.Audit.Seed
	}
	if override.Audit.Threshold != 0 {
		base.Audit.Threshold = override.Audit.Threshold
	}
	if len(override.Audit.Features) > 0 {
		base.Audit.Features = override.Audit.Features
	}
	if override.Audit.Workers != 0 {
		base.Audit.Workers = override.Audit.Workers
	}
	if override.Audit.BlockSize != 0 {
		base.Audit.BlockSize = override.Audit.BlockSize
	}
	if override.Audit.DisparityTolerance != 0 {
		base.Audit.DisparityTolerance = override.Audit.DisparityTolerance
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.MemoryRuns != 0 {
		base.Database.MemoryRuns = override.Database.MemoryRuns
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.HTTP.AuditsPerMinute != 0 {
		base.HTTP.AuditsPerMinute = override.HTTP.AuditsPerMinute
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Audit: AuditConfig{
			Population:         1000,
			MaxPopulation:      5000,
			Seed:               42,
			Threshold:          600,
			Features:           []string{"Gender", "Origin", "Employment", "SingleParent", "Disability", "HousingStatus"},
			BlockSize:          500,
			DisparityTolerance: 0.10,
		},
		Database:  DatabaseConfig{Driver: "postgres", MemoryRuns: 32},
		Scheduler: SchedulerConfig{Enabled: false, Interval: 24 * time.Hour},
		HTTP:      HTTPConfig{Addr: ":8080", AuditsPerMinute: 30},
	}
}
