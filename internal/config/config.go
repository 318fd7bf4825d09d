// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"rotator-service/internal/model"
	"rotator-service/pkg/rotator"
)

// EnvPrefix is the prefix of environment variable overrides
const EnvPrefix = "ROTATOR_SERVICE"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Rotator  RotatorConfig  `mapstructure:"rotator"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// RotatorConfig represents how the rotator is reached and framed
type RotatorConfig struct {
	ConnectionType string              `mapstructure:"connection_type" validate:"required"`
	ReadTimeout    time.Duration       `mapstructure:"read_timeout"`
	Framing        string              `mapstructure:"framing"`
	Serial         SerialPortConfig    `mapstructure:"serial"`
	TCP            TCPPortConfig       `mapstructure:"tcp"`
	WebSocket      WebSocketPortConfig `mapstructure:"websocket"`
}

// SerialPortConfig represents serial port configuration. The baud rate is
// fixed by the rotator protocol.
type SerialPortConfig struct {
	Port     string `mapstructure:"port"`
	DataBits int    `mapstructure:"data_bits"`
	StopBits int    `mapstructure:"stop_bits"`
	Parity   string `mapstructure:"parity"`
}

// TCPPortConfig represents a raw TCP serial bridge (ser2net and friends)
type TCPPortConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeepAlive    bool          `mapstructure:"keep_alive"`
}

// WebSocketPortConfig represents a serial-over-WebSocket bridge
type WebSocketPortConfig struct {
	URL              string        `mapstructure:"url"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from a file and environment variables. With an
// empty path the usual locations are searched and a missing file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/rotator-service")
	}

	// Environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.cert_file", "")
	v.SetDefault("server.tls.key_file", "")

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Rotator defaults
	v.SetDefault("rotator.connection_type", string(model.ConnectionTypeSerial))
	v.SetDefault("rotator.read_timeout", rotator.DefaultReadTimeout.String())
	v.SetDefault("rotator.framing", rotator.FramingIdle.String())

	v.SetDefault("rotator.serial.port", "/dev/ttyUSB0")
	v.SetDefault("rotator.serial.data_bits", 8)
	v.SetDefault("rotator.serial.stop_bits", 1)
	v.SetDefault("rotator.serial.parity", "none")

	v.SetDefault("rotator.tcp.host", "localhost")
	v.SetDefault("rotator.tcp.port", 4001)
	v.SetDefault("rotator.tcp.dial_timeout", "10s")
	v.SetDefault("rotator.tcp.write_timeout", "5s")
	v.SetDefault("rotator.tcp.keep_alive", true)

	v.SetDefault("rotator.websocket.url", "")
	v.SetDefault("rotator.websocket.handshake_timeout", "10s")

	// App defaults
	v.SetDefault("app.name", "rotator-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Server.TLS.Enabled && (config.Server.TLS.CertFile == "" || config.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls.cert_file and server.tls.key_file are required when TLS is enabled")
	}

	// Validate environment
	if !contains([]string{"development", "staging", "production", "test"}, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: development, staging, production, test")
	}

	// Validate logging
	if !contains([]string{"debug", "info", "warn", "error", "fatal"}, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, fatal")
	}
	if !contains([]string{"json", "console"}, config.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: json, console")
	}

	return config.Rotator.Validate()
}

// Validate checks the rotator connection settings
func (rc *RotatorConfig) Validate() error {
	if rc.ReadTimeout <= 0 {
		return fmt.Errorf("rotator.read_timeout must be positive")
	}
	if _, err := rotator.ParseFraming(rc.Framing); err != nil {
		return fmt.Errorf("rotator.framing: %w", err)
	}

	switch model.ConnectionType(rc.ConnectionType) {
	case model.ConnectionTypeSerial:
		if rc.Serial.Port == "" {
			return fmt.Errorf("rotator.serial.port is required")
		}
		if !contains([]string{"none", "odd", "even"}, rc.Serial.Parity) {
			return fmt.Errorf("rotator.serial.parity must be one of: none, odd, even")
		}
	case model.ConnectionTypeTCP:
		if rc.TCP.Host == "" || rc.TCP.Port <= 0 {
			return fmt.Errorf("rotator.tcp.host and rotator.tcp.port are required")
		}
	case model.ConnectionTypeWebSocket:
		if !strings.HasPrefix(rc.WebSocket.URL, "ws://") && !strings.HasPrefix(rc.WebSocket.URL, "wss://") {
			return fmt.Errorf("rotator.websocket.url must be a ws:// or wss:// URL")
		}
	default:
		return fmt.Errorf("rotator.connection_type must be one of: %v", model.ConnectionTypes)
	}

	return nil
}

// FramingPolicy returns the parsed framing policy
func (rc *RotatorConfig) FramingPolicy() rotator.Framing {
	framing, _ := rotator.ParseFraming(rc.Framing)
	return framing
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
