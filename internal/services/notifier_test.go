package services

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"sheetdesk/internal/config"
	"sheetdesk/internal/dates"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/recurrence"
)

type sentEmail struct {
	to, doer string
	n        int
}

type fakeEmail struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmail) SendAssignmentEmail(to, doer string, tasks []models.GeneratedTask) error {
	f.sent = append(f.sent, sentEmail{to, doer, len(tasks)})
	return f.err
}

type sentTelegram struct {
	chatID int64
	doer   string
}

type fakeTelegram struct{ sent []sentTelegram }

func (f *fakeTelegram) SendAssignment(chatID int64, doer string, _ []models.GeneratedTask) error {
	f.sent = append(f.sent, sentTelegram{chatID, doer})
	return nil
}

func genTasks(doers ...string) []models.GeneratedTask {
	out := make([]models.GeneratedTask, 0, len(doers))
	for _, d := range doers {
		out = append(out, models.GeneratedTask{
			Doer:        d,
			GivenBy:     "Boss",
			Description: "Check <stock>",
			DueDate:     dates.MustNew(2024, 6, 3),
			Frequency:   recurrence.Weekly,
		})
	}
	return out
}

func TestNotifier_RoutesPerDoer(t *testing.T) {
	email := &fakeEmail{err: errors.New("smtp down")}
	tg := &fakeTelegram{}
	n := NewNotifier(email, tg, map[string]config.Recipient{
		"asha": {Email: "asha@example.com", TelegramChatID: 7},
		"Ravi": {TelegramChatID: 42},
	})

	n.TasksAssigned(context.Background(), genTasks("Asha", "Asha", "Ravi", "Zed"))

	assert.Equal(t, []sentEmail{{"asha@example.com", "Asha", 2}}, email.sent)
	assert.Equal(t, []sentTelegram{{7, "Asha"}, {42, "Ravi"}}, tg.sent)
}

func TestNotifier_NilChannels(t *testing.T) {
	n := NewNotifier(nil, nil, map[string]config.Recipient{"asha": {Email: "a@x"}})
	assert.NotPanics(t, func() { n.TasksAssigned(context.Background(), genTasks("Asha")) })
}

type fakeDialer struct{ msgs []*gomail.Message }

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.msgs = append(f.msgs, m...)
	return nil
}

func TestEmailService_SendAssignmentEmail(t *testing.T) {
	d := &fakeDialer{}
	svc := &emailService{dialer: d, from: "desk@example.com"}

	require.NoError(t, svc.SendAssignmentEmail("asha@example.com", "Asha", genTasks("Asha", "Asha")))
	require.Len(t, d.msgs, 1)
	m := d.msgs[0]
	assert.Equal(t, []string{"asha@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"desk@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"New task assigned: Check <stock>"}, m.GetHeader("Subject"))

	html := assignmentHTML("Asha", genTasks("Asha", "Asha"))
	assert.Contains(t, html, "Check &lt;stock&gt;")
	assert.Contains(t, html, "first of 2")

	require.NoError(t, svc.SendAssignmentEmail("x@example.com", "X", nil))
	assert.Len(t, d.msgs, 1)
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramService_SendAssignment(t *testing.T) {
	bot := &fakeBot{}
	svc := &TelegramService{bot: bot, log: logging.Component("telegram")}

	require.NoError(t, svc.SendAssignment(42, "Ravi", genTasks("Ravi")))
	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Check &lt;stock&gt;")
	assert.Contains(t, msg.Text, "Due: 03/06/2024")

	bot.err = errors.New("blocked")
	assert.Error(t, svc.SendMessage(42, "hi"))
	assert.NoError(t, svc.SendMessage(0, "skipped"))
}

func TestTelegramService_DryRun(t *testing.T) {
	svc, err := NewTelegramService("123:abc", true)
	require.NoError(t, err)
	assert.NoError(t, svc.SendMessage(42, "hello"))

	var nilSvc *TelegramService
	assert.NoError(t, nilSvc.SendMessage(42, "hello"))
}
