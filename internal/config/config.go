package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. DEBATE_QUEUE_SIZE.
const EnvPrefix = "DEBATE"

const (
	AddrKey             = "addr"
	LogLevelKey         = "log_level"
	ArchivePathKey      = "archive_path"
	QueueSizeKey        = "queue_size"
	MaxMessageLengthKey = "max_message_length"
	ShutdownTimeoutKey  = "shutdown_timeout"
	ServerURLKey        = "server_url"
)

// Config holds the server settings.
type Config struct {
	// Addr is the listen address. Empty falls back to :$PORT, then :8080.
	Addr     string `mapstructure:"addr"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=DEBUG INFO WARN ERROR"`
	// ArchivePath is the badger directory for drained transcripts. Empty
	// disables archiving.
	ArchivePath      string        `mapstructure:"archive_path"`
	QueueSize        int           `mapstructure:"queue_size" validate:"gte=1"`
	MaxMessageLength int           `mapstructure:"max_message_length" validate:"gte=0"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// ServerURL is where the CLI reaches a running server.
	ServerURL string `mapstructure:"server_url" validate:"required"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:         "INFO",
		QueueSize:        64,
		MaxMessageLength: 2000,
		ShutdownTimeout:  10 * time.Second,
		ServerURL:        "http://localhost:8080",
	}
}

var validate = validator.New()

// New returns a viper instance carrying the defaults and reading DEBATE_*
// environment variables.
func New() *viper.Viper {
	v := viper.New()
	defaults := Default()
	v.SetDefault(AddrKey, defaults.Addr)
	v.SetDefault(LogLevelKey, defaults.LogLevel)
	v.SetDefault(ArchivePathKey, defaults.ArchivePath)
	v.SetDefault(QueueSizeKey, defaults.QueueSize)
	v.SetDefault(MaxMessageLengthKey, defaults.MaxMessageLength)
	v.SetDefault(ShutdownTimeoutKey, defaults.ShutdownTimeout)
	v.SetDefault(ServerURLKey, defaults.ServerURL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges an optional config file into v. A missing file is only an
// error when path was given explicitly.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("debateroom")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	cfg.Addr = resolveAddr(cfg.Addr)
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func resolveAddr(addr string) string {
	if addr = strings.TrimSpace(addr); addr != "" {
		return addr
	}
	addr = ":" + strings.TrimSpace(os.Getenv("PORT"))
	if addr == ":" {
		addr = ":8080"
	}
	return addr
}
