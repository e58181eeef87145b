package notify

import (
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/subkassa/autopay/internal/pkg/env"
)

// TelegramNotifier sends billing notifications through a Telegram bot.
type TelegramNotifier struct {
	bot *tele.Bot
}

// NewTelegramNotifier builds a notifier from the configured bot token.
// Returns a NopNotifier when no token is set, so callers never need a
// nil check.
func NewTelegramNotifier() (Notifier, error) {
	token := env.GetEnv("TELEGRAM_BOT_TOKEN", "")
	if token == "" {
		return NopNotifier{}, nil
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	return &TelegramNotifier{bot: bot}, nil
}

func (n *TelegramNotifier) send(telegramID int64, text string) error {
	// Users created outside Telegram have no chat to write to.
	if telegramID == 0 {
		return nil
	}
	_, err := n.bot.Send(tele.ChatID(telegramID), text, &tele.SendOptions{
		ParseMode: tele.ModeHTML,
	})
	return err
}

// RenewalSuccess tells the user their subscription was renewed and charged.
func (n *TelegramNotifier) RenewalSuccess(telegramID int64, amountKopeks int64) error {
	return n.send(telegramID, renewalSuccessMessage(amountKopeks))
}

// RenewalFailure tells the user the automatic charge did not go through.
func (n *TelegramNotifier) RenewalFailure(telegramID int64, amountKopeks int64) error {
	return n.send(telegramID, renewalFailureMessage(amountKopeks))
}

// NoPaymentMethod tells the user autopay is on but no saved card exists.
func (n *TelegramNotifier) NoPaymentMethod(telegramID int64) error {
	return n.send(telegramID, noPaymentMethodMessage())
}
