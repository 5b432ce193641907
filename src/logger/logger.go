// Package logger configures the process-wide zerolog logger from the environment.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "limit-order-book"

var logFile *os.File

// Settings mirrors the LOG_* environment variables.
type Settings struct {
	Level  string // LOG_LEVEL, default info
	File   string // LOG_FILE, empty/none/disabled for console only
	Format string // LOG_FORMAT, "pretty" for the console writer, JSON otherwise
}

func SettingsFromEnv() Settings {
	return Settings{
		Level:  os.Getenv("LOG_LEVEL"),
		File:   os.Getenv("LOG_FILE"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

func InitLogger() zerolog.Logger {
	return Init(SettingsFromEnv(), os.Stdout)
}

// Init installs a logger writing to console and, when configured, an append-only log file.
// It replaces log.Logger so packages logging through zerolog/log pick it up.
func Init(s Settings, console io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(s.Level))
	if err != nil || s.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	CloseLogger()
	switch s.File {
	case "", "none", "disabled":
	default:
		logFile, err = os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			log.Error().Err(err).Str("log_file", s.File).Msg("Failed to open log file, using console only")
			logFile = nil
		}
	}

	writers := []io.Writer{console}
	if s.Format == "pretty" {
		writers[0] = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	}
	if logFile != nil {
		writers = append(writers, logFile)
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	log.Logger = l

	l.Info().
		Str("log_level", level.String()).
		Bool("log_file", logFile != nil).
		Msg("Logger initialized")
	return l
}

func CloseLogger() {
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
}
