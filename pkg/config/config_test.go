package config

import (
	"errors"
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("API_ID", "12345")
	t.Setenv("API_HASH", "0123456789abcdef0123456789abcdef")
	t.Setenv("SESSION_STRING", "BQAAAAA")
	t.Setenv("BOT_USERNAMES", "@first_bot, second_bot ,987654")
	t.Setenv("TARGET_CHANNEL_INVITE", "https://t.me/+AbCdEf123")
}

func TestLoad_AllPresent(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIID != 12345 {
		t.Errorf("APIID: got %d, want 12345", cfg.APIID)
	}
	want := []string{"@first_bot", "second_bot", "987654"}
	if strings.Join(cfg.Senders, "|") != strings.Join(want, "|") {
		t.Errorf("Senders: got %q, want %q", cfg.Senders, want)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port: got %d, want 8000", cfg.Port)
	}
	if cfg.Transport != TransportMTProto {
		t.Errorf("Transport: got %q, want %q", cfg.Transport, TransportMTProto)
	}
	if cfg.SessionFormat != SessionPyrogram {
		t.Errorf("SessionFormat: got %q, want %q", cfg.SessionFormat, SessionPyrogram)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr: got %q", cfg.Addr())
	}
}

func TestLoad_PortOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port: got %d, want 9090", cfg.Port)
	}
}

func TestLoad_MissingValue(t *testing.T) {
	for _, name := range []string{"API_ID", "API_HASH", "SESSION_STRING", "BOT_USERNAMES", "TARGET_CHANNEL_INVITE"} {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(name, "")

			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_NonNumericAPIID(t *testing.T) {
	setRequired(t)
	t.Setenv("API_ID", "abc")

	_, err := Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "API_ID must be an integer") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestLoad_OnlyBlankSenders(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_USERNAMES", " , ,")

	_, err := Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_BotTransportNeedsToken(t *testing.T) {
	setRequired(t)
	t.Setenv("FORWARDER_TRANSPORT", "botapi")

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	t.Setenv("BOT_TOKEN", "123456:ABCDEF")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Transport != TransportBotAPI {
		t.Errorf("Transport: got %q", cfg.Transport)
	}
}

func TestLoad_UnknownEnums(t *testing.T) {
	setRequired(t)
	t.Setenv("FORWARDER_TRANSPORT", "carrier-pigeon")
	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("transport: expected ErrInvalidConfig, got %v", err)
	}

	setRequired(t)
	t.Setenv("FORWARDER_TRANSPORT", "mtproto")
	t.Setenv("SESSION_FORMAT", "tdesktop")
	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("session format: expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_BadPortFallsBack(t *testing.T) {
	for _, raw := range []string{"http", "70000", "0", "-1"} {
		t.Run(raw, func(t *testing.T) {
			setRequired(t)
			t.Setenv("PORT", raw)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Port != DefaultPort {
				t.Errorf("Port: got %d, want %d", cfg.Port, DefaultPort)
			}
		})
	}
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		raw     string
		current int
		want    int
	}{
		{raw: " 9090 ", want: 9090},
		{raw: "", current: 8123, want: 8123},
		{raw: "", current: 0, want: DefaultPort},
		{raw: "65536", want: DefaultPort},
		{raw: "eighty", current: 9000, want: DefaultPort},
	}
	for _, tt := range tests {
		if got := parsePort(tt.raw, tt.current); got != tt.want {
			t.Errorf("parsePort(%q, %d) = %d, want %d", tt.raw, tt.current, got, tt.want)
		}
	}
}

func TestRedacted(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	r := cfg.Redacted()
	if r["API_HASH"] != "0123****" {
		t.Errorf("API_HASH: got %q", r["API_HASH"])
	}
	if r["SESSION_STRING"] != "****" {
		t.Errorf("SESSION_STRING: got %q", r["SESSION_STRING"])
	}
	if r["BOT_TOKEN"] != "" {
		t.Errorf("BOT_TOKEN: got %q", r["BOT_TOKEN"])
	}
	if r["API_ID"] != "12345" {
		t.Errorf("API_ID: got %q", r["API_ID"])
	}
}
