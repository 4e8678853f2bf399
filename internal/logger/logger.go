package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log общий логгер процесса. До Init пишет в stderr с уровнем info.
var Log = logrus.New()

// Init настраивает уровень и формат структурированного логгера.
func Init(level string, development bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, текст для development
	if development {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		Log.SetFormatter(&logrus.JSONFormatter{})
	}
}

// SetOutput перенаправляет вывод (CLI пишет логи в stderr, тесты глушат).
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// WithComponent возвращает запись с полем component.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
