package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/carauction/carauction-backend/pkg/logger"
)

var ErrInvalidRecipient = errors.New("invalid recipient address")

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages. A nil error means the transport accepted the message.
type Mailer interface {
	Send(msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay with PLAIN auth (Gmail by default).
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	send     sendFunc
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	if msg.To == "" || strings.ContainsAny(msg.To, "\r\n") {
		return ErrInvalidRecipient
	}

	body := buildMessage(m.from, msg)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	if err := m.send(m.host+":"+m.port, auth, m.from, []string{msg.To}, body); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      msg.To,
			"subject": msg.Subject,
		})
		return fmt.Errorf("smtp send: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

func buildMessage(from string, msg Message) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, msg.To, msg.Subject, msg.HTML,
	))
}

// LogMailer is used in development when SMTP credentials are not configured.
// It writes the message to the log instead of delivering it.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (LogMailer) Send(msg Message) error {
	if msg.To == "" {
		return ErrInvalidRecipient
	}
	logger.Warn("[DEV MODE] SMTP not configured, email not delivered", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.HTML,
	})
	return nil
}
