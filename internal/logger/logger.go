package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log глобальный логгер приложения. До вызова Init пишет в stderr с уровнем info.
var Log = logrus.New()

// Init настраивает уровень и формат логгера.
// В production пишем JSON, в остальных окружениях читаемый текст.
func Init(level string, production bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	Log.SetOutput(os.Stdout)

	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Silence отключает вывод логов (используется в тестах).
func Silence() {
	Log.SetOutput(io.Discard)
}
