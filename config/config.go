package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
}

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	HTTPPort string `mapstructure:"http_port"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres | mysql | sqlite
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text | json
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type WorkflowConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	HostPort    string        `mapstructure:"host_port"`
	Namespace   string        `mapstructure:"namespace"`
	TaskQueue   string        `mapstructure:"task_queue"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type SecretsConfig struct {
	Backend string      `mapstructure:"backend"` // local | vault
	Key     string      `mapstructure:"key"`     // hex, 32 bytes
	Vault   VaultConfig `mapstructure:"vault"`
}

type VaultConfig struct {
	Address  string        `mapstructure:"address"`
	Token    string        `mapstructure:"token"`
	Mount    string        `mapstructure:"mount"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// KeyBytes decodes the local secrets key.
func (s SecretsConfig) KeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(s.Key)
	if err != nil {
		return nil, fmt.Errorf("secrets.key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("secrets.key must be 32 bytes of hex, got %d bytes", len(key))
	}
	return key, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "5240")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("workflow.enabled", false)
	v.SetDefault("workflow.host_port", "localhost:7233")
	v.SetDefault("workflow.namespace", "default")
	v.SetDefault("workflow.task_queue", "region")
	v.SetDefault("workflow.dial_timeout", 60*time.Second)
	v.SetDefault("secrets.backend", "local")
	v.SetDefault("secrets.key", "")
	v.SetDefault("secrets.vault.address", "")
	v.SetDefault("secrets.vault.token", "")
	v.SetDefault("secrets.vault.mount", "secret")
	v.SetDefault("secrets.vault.cache_ttl", time.Minute)
}

// Load reads path (optional) and applies REGIOND_* environment overrides,
// e.g. REGIOND_DATABASE_DSN.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("REGIOND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
