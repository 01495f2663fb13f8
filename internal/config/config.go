package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "PORTAL"

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Chat     *ChatConfig     `mapstructure:"chat"`
	Upload   *UploadConfig   `mapstructure:"upload"`
	Log      *LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTExpiration      time.Duration `mapstructure:"jwt_expiration"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

// ChatConfig drives the real-time chat transport.
type ChatConfig struct {
	// Store is either "postgres" or "badger".
	Store           string `mapstructure:"store"`
	BadgerPath      string `mapstructure:"badger_path"`
	HistoryLimit    int    `mapstructure:"history_limit"`
	SendBufferSize  int    `mapstructure:"send_buffer_size"`
	MaxMessageBytes int64  `mapstructure:"max_message_bytes"`
	// RequireAuth rejects websocket upgrades without a valid token.
	RequireAuth bool `mapstructure:"require_auth"`
}

type UploadConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:5173"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.jwt_expiration", "168h")
	v.SetDefault("api.shutdown_timeout", "10s")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "portal")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("chat.store", "postgres")
	v.SetDefault("chat.badger_path", "data/chat")
	v.SetDefault("chat.history_limit", 50)
	v.SetDefault("chat.send_buffer_size", 256)
	v.SetDefault("chat.max_message_bytes", 8192)
	v.SetDefault("chat.require_auth", true)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("log.level", "info")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	}

	return v
}

// Load reads the yaml file at path (optional) and lets PORTAL_* variables override it.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig(%s) -> %w", path, err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *AppConfig) Validate() error {
	switch c.Chat.Store {
	case "postgres", "badger":
	default:
		return fmt.Errorf("unsupported chat store %q", c.Chat.Store)
	}
	if c.Chat.HistoryLimit <= 0 {
		return fmt.Errorf("chat.history_limit must be positive, got %d", c.Chat.HistoryLimit)
	}
	if c.Chat.SendBufferSize <= 0 {
		return fmt.Errorf("chat.send_buffer_size must be positive, got %d", c.Chat.SendBufferSize)
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be positive, got %d", c.Upload.MaxSize)
	}

	return nil
}

// Watch re-reads the config file whenever it changes on disk and hands the new
// values to onChange. Invalid edits are reported through onError and ignored.
func Watch(path string, onChange func(*AppConfig), onError func(error)) {
	if path == "" {
		return
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		onError(fmt.Errorf("v.ReadInConfig(%s) -> %w", path, err))
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		conf, err := decode(v)
		if err != nil {
			onError(err)
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}
