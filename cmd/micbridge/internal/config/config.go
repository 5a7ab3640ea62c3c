// Package config loads the micbridge host configuration.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-drift/micbridge/pkg/microphone/simsession"
	"github.com/spf13/viper"
)

// Session backends.
const (
	BackendAuto      = "auto"
	BackendNative    = "native"
	BackendSimulated = "simulated"
)

// Prompt modes for the simulated backend.
const (
	PromptTerminal = "terminal"
	PromptAllow    = "allow"
	PromptDeny     = "deny"
)

// Config is the root host configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Client  ClientConfig  `mapstructure:"client"`
	Session SessionConfig `mapstructure:"session"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// ServerConfig configures the host's HTTP listener.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	// AllowedOrigins lists browser origins allowed to open /ws in addition
	// to same-origin requests.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ClientConfig configures the request and call commands.
type ClientConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig selects the audio session behind the bridge.
type SessionConfig struct {
	// Backend is auto, native or simulated. auto uses the native API when
	// the host has one and the simulated platform otherwise.
	Backend string `mapstructure:"backend"`
	// StateFile is where the simulated platform keeps its decision.
	StateFile string `mapstructure:"state_file"`
	// Prompt is how the simulated platform asks: terminal, allow or deny.
	Prompt string `mapstructure:"prompt"`
	// AppName and Reason are shown in the simulated dialog.
	AppName string `mapstructure:"app_name"`
	Reason  string `mapstructure:"reason"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Load reads micbridge.yaml from path, or from the working directory and
// $HOME/.micbridge when path is empty, then applies MICBRIDGE_* environment
// overrides (MICBRIDGE_SERVER_ADDR overrides server.addr). A missing file is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("micbridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.micbridge")
	}

	v.SetEnvPrefix("MICBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:7766")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("client.url", "ws://127.0.0.1:7766/ws")
	v.SetDefault("client.timeout", 2*time.Minute)
	v.SetDefault("session.backend", BackendAuto)
	v.SetDefault("session.state_file", simsession.DefaultPath())
	v.SetDefault("session.prompt", PromptTerminal)
	v.SetDefault("session.app_name", "micbridge")
	v.SetDefault("session.reason", "The application needs the microphone to record audio.")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if !slices.Contains([]string{BackendAuto, BackendNative, BackendSimulated}, c.Session.Backend) {
		return fmt.Errorf("session.backend: unknown backend %q (use auto, native or simulated)", c.Session.Backend)
	}
	if !slices.Contains([]string{PromptTerminal, PromptAllow, PromptDeny}, c.Session.Prompt) {
		return fmt.Errorf("session.prompt: unknown prompt %q (use terminal, allow or deny)", c.Session.Prompt)
	}
	if !slices.Contains([]string{"json", "console"}, c.Logger.Format) {
		return fmt.Errorf("logger.format: unknown format %q (use json or console)", c.Logger.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
