package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/mediafwd/pkg/config"
)

func TestLoadConfig_EnvFile(t *testing.T) {
	for _, key := range []string{"API_ID", "API_HASH", "SESSION_STRING", "BOT_USERNAMES", "TARGET_CHANNEL_INVITE", "PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("PORT", "9000")

	path := filepath.Join(t.TempDir(), "forwarder.env")
	content := "API_ID=12345\nAPI_HASH=abcdef0123456789\nSESSION_STRING=session\n" +
		"BOT_USERNAMES=@one, two\nTARGET_CHANNEL_INVITE=https://t.me/+AbCdEf\nPORT=8001\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.APIID)
	assert.Equal(t, []string{"@one", "two"}, cfg.Senders)
	// Already-set variables are not overridden by the file.
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalidConfig)
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, GetVersion(), FormatVersion())

	_, goVer := FormatBuildInfo()
	assert.NotEmpty(t, goVer)
}
