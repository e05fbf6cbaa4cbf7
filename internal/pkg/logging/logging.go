package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/ManuelReschke/TaskFox/internal/pkg/env"
	"github.com/sirupsen/logrus"
)

var (
	logger = logrus.New()
	once   sync.Once
)

// Setup configures the shared logger from LOG_LEVEL and LOG_FORMAT.
// JSON is the default outside of dev.
func Setup() *logrus.Logger {
	once.Do(func() {
		configure(logger, env.GetEnv("LOG_LEVEL", "info"), env.GetEnv("LOG_FORMAT", defaultFormat()))
	})
	return logger
}

// Logger returns the shared logger. It is usable before Setup with logrus defaults.
func Logger() *logrus.Logger {
	return logger
}

// Component returns a child logger tagged with the component name.
func Component(name string) logrus.FieldLogger {
	return logger.WithField("component", name)
}

func configure(l *logrus.Logger, level, format string) {
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}
}

func defaultFormat() string {
	if env.IsDev() {
		return "text"
	}
	return "json"
}
