package config

import (
	"fmt"
	"gopkg.in/gcfg.v1"
	"io"
	"log"
	"os"
	"sync"
)

type (
	Config struct {
		MOYSKLAD struct {
			URL          string
			Login        string
			Password     string
			RPS          int
			WriteWorkers int
		}
		CATALOGSYNC struct {
			Timeout        int
			SyncCategories int
			SyncArticles   int
			TelegramReport int
		}
		TELEGRAM struct {
			BotToken string
			ChatID   int64
			Debug    int
		}
		LOG struct {
			Debug int
		}
		SERVICE struct {
			PORT int
		}
		DBSQLITE struct {
			DB string
		}
	}
)

var cfg Config
var once sync.Once

func GetConfig() *Config {
	once.Do(func() {
		err := os.MkdirAll("logs", 0770)
		if err != nil {
			fmt.Println(err)
		}

		file, err := os.OpenFile("logs/config.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Println(err)
		}

		multiWriter := io.MultiWriter(file, os.Stdout)

		logger := log.New(multiWriter, "MAIN ", log.Ldate|log.Ltime|log.Lshortfile)

		logger.Print("Config:>Read application configurations")

		err = gcfg.ReadFileInto(&cfg, "./config/config.ini")
		if err != nil {
			logger.Fatalf("Config:>Failed to parse gcfg data: %s", err)
		} else {
			logger.Print("Config:>Config is read")
		}

		if cfg.MOYSKLAD.RPS == 0 {
			cfg.MOYSKLAD.RPS = 5 // лимит МойСклад по умолчанию
		}
		if cfg.MOYSKLAD.WriteWorkers == 0 {
			cfg.MOYSKLAD.WriteWorkers = 4
		}
	})

	return &cfg
}
