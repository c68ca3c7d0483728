package services

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramService struct {
	bot    botAPI
	dryRun bool
	log    zerolog.Logger
}

// NewTelegramService connects to the Bot API. An empty token or dry run gives
// a service that only logs.
func NewTelegramService(token string, dryRun bool) (*TelegramService, error) {
	t := &TelegramService{dryRun: dryRun, log: logging.Component("telegram")}
	if token == "" || dryRun {
		return t, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return t, fmt.Errorf("telegram bot: %w", err)
	}
	t.bot = bot
	return t, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || chatID == 0 {
		return nil
	}
	if t.bot == nil {
		t.log.Info().Int64("chat_id", chatID).Bool("dry_run", t.dryRun).Str("text", text).Msg("[tg][send][skip]")
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		t.log.Error().Err(err).Int64("chat_id", chatID).Msg("[tg][send][err]")
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	t.log.Debug().Int64("chat_id", chatID).Msg("[tg][send][ok]")
	return nil
}

func (t *TelegramService) SendAssignment(chatID int64, doer string, tasks []models.GeneratedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return t.SendMessage(chatID, assignmentText(doer, tasks))
}

func assignmentText(doer string, tasks []models.GeneratedTask) string {
	t := tasks[0]
	var b strings.Builder
	fmt.Fprintf(&b, "<b>New task for %s</b>\n", html.EscapeString(doer))
	fmt.Fprintf(&b, "%s\n", html.EscapeString(t.Description))
	fmt.Fprintf(&b, "Given by: %s\n", html.EscapeString(t.GivenBy))
	fmt.Fprintf(&b, "Frequency: %s\n", html.EscapeString(string(t.Frequency)))
	if len(tasks) == 1 {
		fmt.Fprintf(&b, "Due: %s", t.DueDate)
	} else {
		fmt.Fprintf(&b, "Due: %s to %s (%d occurrences)", t.DueDate, tasks[len(tasks)-1].DueDate, len(tasks))
	}
	return b.String()
}
