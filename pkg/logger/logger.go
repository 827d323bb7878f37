package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log - общий логгер сервера. Компоненты берут из него Entry с полями.
var Log *logrus.Logger

// Init настраивает Log по LOG_LEVEL, LOG_FORMAT и LOG_OUTPUT.
// Вызывается в main и в TestMain; повторный вызов пересоздает логгер.
func Init() {
	Log = logrus.New()
	Log.SetLevel(levelFromEnv())
	Log.SetFormatter(formatterFromEnv())
	Log.SetOutput(outputFromEnv())
}

// For возвращает Entry с полем component.
func For(component string) *logrus.Entry {
	if Log == nil {
		Init()
	}
	return Log.WithField("component", component)
}

func levelFromEnv() logrus.Level {
	raw, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// json для сбора логов, text для локальной игры.
func formatterFromEnv() logrus.Formatter {
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	}
}

func outputFromEnv() io.Writer {
	if strings.EqualFold(os.Getenv("LOG_OUTPUT"), "stderr") {
		return os.Stderr
	}
	return os.Stdout
}
