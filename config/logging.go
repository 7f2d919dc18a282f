package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

var appLogger = logrus.New()

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	return appLogger
}

// InitLogging prepares the log file and points the application logger and
// LogWriter at console plus the file. A nil console means stdout.
func InitLogging(cfg *Configuration, console io.Writer) (*os.File, io.Writer) {
	if console == nil {
		console = os.Stdout
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		appLogger.SetLevel(level)
	}
	if cfg.IsProduction() {
		appLogger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		appLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), os.ModePerm); err != nil {
		appLogger.WithError(err).Warn("Failed to create logs directory")
	}

	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		appLogger.WithError(err).Warn("Failed to open log file")
		LogWriter = console
		appLogger.SetOutput(LogWriter)
		return nil, LogWriter
	}

	LogWriter = io.MultiWriter(console, logFile)
	appLogger.SetOutput(LogWriter)
	return logFile, LogWriter
}
