package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// TelegramNotifier announces status changes in a team chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) LeadStatusChanged(lead *models.Lead, from, to pipeline.Status) {
	text := fmt.Sprintf("Lead %s: %s → %s", leadTitle(lead), from, to)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("telegram notify: %v", err)
	}
}

func (n *TelegramNotifier) FollowUpScheduled(lead *models.Lead, fu models.FollowUp) {
	text := fmt.Sprintf("Follow-up for %s on %s: %s",
		leadTitle(lead), fu.Date.Format("02.01.2006 15:04"), fu.Description)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("telegram notify: %v", err)
	}
}
