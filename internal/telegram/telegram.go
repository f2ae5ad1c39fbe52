package telegram

import (
	"ShopWithMoysklad/internal/config"
	"ShopWithMoysklad/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
	"sync"
)

var bot *tgbotapi.BotAPI
var botErr error
var once sync.Once

func getBot() (*tgbotapi.BotAPI, error) {
	once.Do(func() {
		cfg := config.GetConfig()
		if cfg.TELEGRAM.BotToken == "" {
			botErr = errors.New("TELEGRAM.BotToken не задан")
			return
		}
		bot, botErr = tgbotapi.NewBotAPI(cfg.TELEGRAM.BotToken)
		if botErr == nil && cfg.TELEGRAM.Debug == 1 {
			bot.Debug = true
		}
	})
	return bot, botErr
}

func SendMessage(text string) error {

	cfg := config.GetConfig()

	b, err := getBot()
	if err != nil {
		return errors.Wrap(err, "failed tgbotapi.NewBotAPI")
	}

	msg := tgbotapi.NewMessage(cfg.TELEGRAM.ChatID, text)
	_, err = b.Send(msg)
	if err != nil {
		return errors.Wrap(err, "failed bot.Send")
	}

	return nil
}

func SendMessageToTelegramWithLogError(text string) {
	logger := logging.GetLogger()
	logger.Error(text)

	err := SendMessage(text)
	if err != nil {
		logger.Errorf("failed telegram.SendMessage(), error: %v", err)
	}
}
