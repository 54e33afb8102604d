// Package config reads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDataDir        = "CLIPD_DATA_DIR"
	EnvMediaDir       = "CLIPD_MEDIA_DIR"
	EnvPort           = "CLIPD_PORT"
	EnvFFmpegPath     = "CLIPD_FFMPEG"
	EnvFFprobePath    = "CLIPD_FFPROBE"
	EnvBadwordsPath   = "CLIPD_BADWORDS"
	EnvTranscriberCmd = "CLIPD_TRANSCRIBER"
	EnvCaptionFont    = "CLIPD_CAPTION_FONT"
	EnvLogLevel       = "CLIPD_LOG_LEVEL"
)

const (
	defaultPort        = 8787
	defaultCaptionFont = "Montserrat"
)

// Config exposes the settings the daemon needs. An interface so tests
// can inject fixed values.
type Config interface {
	// DataDir holds the database, lock file, and export artifacts.
	DataDir() string
	// MediaDir holds source clips and their transcript side files.
	MediaDir() string
	Port() int
	FFmpegPath() string
	FFprobePath() string
	BadwordsPath() string
	TranscriberCmd() string
	CaptionFont() string
	LogLevel() string
}

// EnvConfig reads every setting from the process environment.
type EnvConfig struct{}

// Load reads a .env file when present and returns the env-backed
// config. A missing .env is not an error.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return EnvConfig{}, nil
}

func (EnvConfig) DataDir() string {
	if v := os.Getenv(EnvDataDir); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clipd"
	}
	return filepath.Join(home, ".clipd")
}

func (c EnvConfig) MediaDir() string {
	if v := os.Getenv(EnvMediaDir); v != "" {
		return v
	}
	return filepath.Join(c.DataDir(), "media")
}

func (EnvConfig) Port() int {
	v := os.Getenv(EnvPort)
	if v == "" {
		return defaultPort
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 65535 {
		return defaultPort
	}
	return n
}

func (EnvConfig) FFmpegPath() string     { return os.Getenv(EnvFFmpegPath) }
func (EnvConfig) FFprobePath() string    { return os.Getenv(EnvFFprobePath) }
func (EnvConfig) BadwordsPath() string   { return os.Getenv(EnvBadwordsPath) }
func (EnvConfig) TranscriberCmd() string { return os.Getenv(EnvTranscriberCmd) }

func (EnvConfig) CaptionFont() string {
	if v := os.Getenv(EnvCaptionFont); v != "" {
		return v
	}
	return defaultCaptionFont
}

func (EnvConfig) LogLevel() string {
	if v := os.Getenv(EnvLogLevel); v != "" {
		return v
	}
	return "info"
}
