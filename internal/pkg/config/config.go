package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	MTProto    MTProtoCfg    `yaml:"mtproto"`
	Downloads  DownloadsCfg  `yaml:"downloads"`
	DB         DBCfg         `yaml:"db"`
	Notify     NotifyCfg     `yaml:"notify"`
	Reconciler ReconcilerCfg `yaml:"reconciler"`
	Log        LogCfg        `yaml:"log"`
}

type MTProtoCfg struct {
	AppID       int    `yaml:"app_id" env:"MTPROTO_APP_ID"`
	AppHash     string `yaml:"app_hash" env:"MTPROTO_APP_HASH"`
	Token       string `yaml:"token" env:"BOT_TOKEN"`
	SessionPath string `yaml:"session_path" env:"MTPROTO_SESSION_PATH"`
	PartSize    int    `yaml:"part_size" env:"MTPROTO_PART_SIZE"`
}

type DownloadsCfg struct {
	DirPath     string `yaml:"dir_path" env:"DOWNLOADS_DIR"`
	Concurrency int    `yaml:"concurrency" env:"DOWNLOADS_CONCURRENCY"`
}

type DBCfg struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     uint16 `yaml:"port" env:"DB_PORT"`
	Username string `yaml:"username" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
}

type NotifyCfg struct {
	ChatID int64 `yaml:"chat_id" env:"NOTIFY_CHAT_ID"`
}

type ReconcilerCfg struct {
	Interval    time.Duration `yaml:"interval" env:"RECONCILER_INTERVAL"`
	Batch       int           `yaml:"batch" env:"RECONCILER_BATCH"`
	MaxAttempts int           `yaml:"max_attempts" env:"RECONCILER_MAX_ATTEMPTS"`
}

type LogCfg struct {
	Debug bool `yaml:"debug" env:"LOG_DEBUG"`
}

// Load reads the YAML file at path (a missing file is not an error),
// applies .env and environment overrides, then fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.setDefaults()
	return cfg, cfg.validate()
}

func (c *Config) setDefaults() {
	if c.MTProto.PartSize == 0 {
		c.MTProto.PartSize = 512 * 1024
	}
	if c.Downloads.DirPath == "" {
		c.Downloads.DirPath = "downloads"
	}
	if c.Downloads.Concurrency <= 0 {
		c.Downloads.Concurrency = 4
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.Reconciler.Interval == 0 {
		c.Reconciler.Interval = time.Hour
	}
	if c.Reconciler.Batch <= 0 {
		c.Reconciler.Batch = 50
	}
	if c.Reconciler.MaxAttempts <= 0 {
		c.Reconciler.MaxAttempts = 5
	}
}

func (c *Config) validate() error {
	if c.MTProto.AppID == 0 || c.MTProto.AppHash == "" {
		return errors.New("mtproto app_id and app_hash are required")
	}
	if c.MTProto.Token == "" {
		return errors.New("mtproto token is required")
	}
	if c.MTProto.PartSize%1024 != 0 {
		return fmt.Errorf("mtproto part_size %d is not a multiple of 1024", c.MTProto.PartSize)
	}
	return nil
}

// JournalEnabled reports whether download outcomes should be persisted.
func (c *Config) JournalEnabled() bool {
	return c.DB.Host != ""
}
