package logging

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"sync"
)

var logger *logrus.Logger
var once sync.Once

func GetLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		logger.SetLevel(logrus.InfoLevel)

		err := os.MkdirAll("logs", 0770)
		if err != nil {
			fmt.Println(err)
		}

		file, err := os.OpenFile("logs/all.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Println(err)
			logger.SetOutput(os.Stdout)
		} else {
			logger.SetOutput(io.MultiWriter(file, os.Stdout))
		}
	})

	return logger
}

// SetDebug включает debug-уровень; вызывается из main после чтения конфига.
func SetDebug(enabled bool) {
	l := GetLogger()
	if enabled {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
}
