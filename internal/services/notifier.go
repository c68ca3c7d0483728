package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"sheetdesk/internal/config"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
)

// Notifier tells doers about freshly assigned tasks. Failures are logged and
// never returned.
type Notifier interface {
	TasksAssigned(ctx context.Context, tasks []models.GeneratedTask)
}

type telegramSender interface {
	SendAssignment(chatID int64, doer string, tasks []models.GeneratedTask) error
}

type notifier struct {
	email      EmailService
	telegram   telegramSender
	recipients map[string]config.Recipient
	log        zerolog.Logger
}

// NewNotifier looks recipients up by doer name, case-insensitively. email and
// telegram may be nil.
func NewNotifier(email EmailService, telegram telegramSender, recipients map[string]config.Recipient) Notifier {
	byName := make(map[string]config.Recipient, len(recipients))
	for name, r := range recipients {
		byName[normName(name)] = r
	}
	return &notifier{
		email:      email,
		telegram:   telegram,
		recipients: byName,
		log:        logging.Component("notify"),
	}
}

func (n *notifier) TasksAssigned(ctx context.Context, tasks []models.GeneratedTask) {
	var order []string
	byDoer := map[string][]models.GeneratedTask{}
	for _, t := range tasks {
		if _, ok := byDoer[t.Doer]; !ok {
			order = append(order, t.Doer)
		}
		byDoer[t.Doer] = append(byDoer[t.Doer], t)
	}

	for _, doer := range order {
		if ctx.Err() != nil {
			return
		}
		r, ok := n.recipients[normName(doer)]
		if !ok {
			n.log.Debug().Str("doer", doer).Msg("[notify][assign][no-recipient]")
			continue
		}
		if r.Email != "" && n.email != nil {
			if err := n.email.SendAssignmentEmail(r.Email, doer, byDoer[doer]); err != nil {
				n.log.Warn().Err(err).Str("doer", doer).Msg("[notify][email][err]")
			}
		}
		if r.TelegramChatID != 0 && n.telegram != nil {
			if err := n.telegram.SendAssignment(r.TelegramChatID, doer, byDoer[doer]); err != nil {
				n.log.Warn().Err(err).Str("doer", doer).Msg("[notify][telegram][err]")
			}
		}
	}
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
