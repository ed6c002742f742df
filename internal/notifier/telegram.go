package notifier

import (
	"context"

	"github.com/pfrederiksen/covid-jp-sync/internal/telegram"
)

// TelegramNotifier posts reports to a Telegram chat
type TelegramNotifier struct {
	client *telegram.Client
}

// NewTelegramNotifier creates a notifier for the bot and chat.
func NewTelegramNotifier(botToken, chatID string, opts ...telegram.Option) (*TelegramNotifier, error) {
	client, err := telegram.NewClient(botToken, chatID, opts...)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{client: client}, nil
}

// Notify sends message as one chat message
func (n *TelegramNotifier) Notify(ctx context.Context, message string) error {
	return n.client.SendMessage(ctx, message)
}
