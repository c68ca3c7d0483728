package services

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"sheetdesk/internal/models"
)

type EmailService interface {
	SendAssignmentEmail(to, doer string, tasks []models.GeneratedTask) error
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer mailSender
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendAssignmentEmail(to, doer string, tasks []models.GeneratedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New task assigned: %s", firstLine(tasks[0].Description)))
	m.SetBody("text/html", assignmentHTML(doer, tasks))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send assignment email: %w", err)
	}
	return nil
}

func assignmentHTML(doer string, tasks []models.GeneratedTask) string {
	t := tasks[0]
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Hello %s,</h3>\n", html.EscapeString(doer))
	fmt.Fprintf(&b, "<p>%s assigned you a task", html.EscapeString(t.GivenBy))
	if t.Department != "" {
		fmt.Fprintf(&b, " for <strong>%s</strong>", html.EscapeString(t.Department))
	}
	b.WriteString(":</p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(t.Description))
	fmt.Fprintf(&b, "<p>Frequency: %s<br>", html.EscapeString(string(t.Frequency)))
	fmt.Fprintf(&b, "Due: %s", t.DueDate)
	if len(tasks) > 1 {
		fmt.Fprintf(&b, " (first of %d, last %s)", len(tasks), tasks[len(tasks)-1].DueDate)
	}
	b.WriteString("</p>\n")
	if t.RequireAttachment {
		b.WriteString("<p>An attachment is required when you complete it.</p>\n")
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 60 {
		s = string(r[:57]) + "..."
	}
	return s
}
