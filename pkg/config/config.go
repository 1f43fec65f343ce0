// Package config loads the forwarder configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/tinyland-inc/mediafwd/pkg/logger"
)

// ErrInvalidConfig wraps every configuration failure. It is raised before any network activity.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	TransportMTProto = "mtproto"
	TransportBotAPI  = "botapi"

	SessionPyrogram = "pyrogram"
	SessionTelethon = "telethon"

	DefaultPort = 8000
)

type Config struct {
	APIID         int      // parsed from RawAPIID by Validate
	RawAPIID      string   `env:"API_ID,required,notEmpty"`
	APIHash       string   `env:"API_HASH,required,notEmpty"`
	SessionString string   `env:"SESSION_STRING,required,notEmpty"`
	Senders       []string `env:"BOT_USERNAMES,required,notEmpty"         envSeparator:","`
	TargetInvite  string   `env:"TARGET_CHANNEL_INVITE,required,notEmpty"`

	Host          string `env:"HOST"                envDefault:"0.0.0.0"`
	Port          int    // parsed from RawPort by Validate
	RawPort       string `env:"PORT"                envDefault:"8000"`
	Transport     string `env:"FORWARDER_TRANSPORT" envDefault:"mtproto"`
	BotToken      string `env:"BOT_TOKEN"`
	SessionFormat string `env:"SESSION_FORMAT"      envDefault:"pyrogram"`
	DedupeSize    int    `env:"DEDUPE_SIZE"         envDefault:"1024"`
	LogLevel      string `env:"LOG_LEVEL"           envDefault:"info"`
}

// Load parses the process environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the sender list and checks the invariants env tags cannot express.
func (c *Config) Validate() error {
	id, err := strconv.Atoi(strings.TrimSpace(c.RawAPIID))
	if err != nil {
		return fmt.Errorf("%w: API_ID must be an integer", ErrInvalidConfig)
	}
	c.APIID = id

	senders := make([]string, 0, len(c.Senders))
	for _, s := range c.Senders {
		if s = strings.TrimSpace(s); s != "" {
			senders = append(senders, s)
		}
	}
	if len(senders) == 0 {
		return fmt.Errorf("%w: BOT_USERNAMES must list at least one sender", ErrInvalidConfig)
	}
	c.Senders = senders

	c.TargetInvite = strings.TrimSpace(c.TargetInvite)

	switch c.Transport {
	case TransportMTProto:
	case TransportBotAPI:
		if c.BotToken == "" {
			return fmt.Errorf("%w: BOT_TOKEN is required for the %s transport", ErrInvalidConfig, TransportBotAPI)
		}
	default:
		return fmt.Errorf("%w: unknown FORWARDER_TRANSPORT %q", ErrInvalidConfig, c.Transport)
	}

	switch c.SessionFormat {
	case SessionPyrogram, SessionTelethon:
	default:
		return fmt.Errorf("%w: unknown SESSION_FORMAT %q", ErrInvalidConfig, c.SessionFormat)
	}

	c.Port = parsePort(c.RawPort, c.Port)
	if c.DedupeSize < 0 {
		return fmt.Errorf("%w: DEDUPE_SIZE must not be negative", ErrInvalidConfig)
	}
	return nil
}

// parsePort reads PORT. The health server is auxiliary, so a bad value falls back to
// DefaultPort with a warning rather than stopping the forwarder.
func parsePort(raw string, current int) int {
	raw = strings.TrimSpace(raw)
	port := current
	if raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			logger.WarnCF("config", "PORT is not a number, using default", map[string]any{
				"port":    raw,
				"default": DefaultPort,
			})
			return DefaultPort
		}
		port = p
	}
	if port < 1 || port > 65535 {
		logger.WarnCF("config", "PORT out of range, using default", map[string]any{
			"port":    port,
			"default": DefaultPort,
		})
		return DefaultPort
	}
	return port
}

// Redacted renders the configuration for display with secrets masked.
func (c *Config) Redacted() map[string]string {
	return map[string]string{
		"API_ID":                strconv.Itoa(c.APIID),
		"API_HASH":              mask(c.APIHash),
		"SESSION_STRING":        mask(c.SessionString),
		"BOT_USERNAMES":         strings.Join(c.Senders, ","),
		"TARGET_CHANNEL_INVITE": c.TargetInvite,
		"HOST":                  c.Host,
		"PORT":                  strconv.Itoa(c.Port),
		"FORWARDER_TRANSPORT":   c.Transport,
		"BOT_TOKEN":             mask(c.BotToken),
		"SESSION_FORMAT":        c.SessionFormat,
		"DEDUPE_SIZE":           strconv.Itoa(c.DedupeSize),
		"LOG_LEVEL":             c.LogLevel,
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}

// Addr is the listen address of the health server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
