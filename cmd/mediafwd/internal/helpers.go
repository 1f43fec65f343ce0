package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/joho/godotenv"

	"github.com/tinyland-inc/mediafwd/pkg/config"
)

const Logo = "📨"

// DefaultEnvFile is loaded when present and no --env-file is given.
const DefaultEnvFile = ".env"

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

// LoadConfig loads envFile (or DefaultEnvFile when it exists) into the process
// environment and parses the configuration from it. Variables already set in the
// environment win over the file.
func LoadConfig(envFile string) (*config.Config, error) {
	if envFile == "" {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			envFile = DefaultEnvFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error checking %s: %w", DefaultEnvFile, err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}
	return config.Load()
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

// GetVersion returns the version string
func GetVersion() string {
	return version
}
