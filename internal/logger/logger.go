package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log = logrus.New()

type Entry = logrus.Entry

// Options задаёт уровень логирования и необязательный файл с ротацией.
type Options struct {
	Debug bool
	File  string
}

// Init настраивает глобальный логгер. Если задан File, записи дублируются
// в файл, который ротирует lumberjack.
func Init(opts Options) {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64, // MB
			MaxBackups: 3,
			MaxAge:     7, // дней
			Compress:   true,
		})
	}
	Log.SetOutput(out)

	if opts.Debug {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}
