package mailer

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Send(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotBody string
	)
	m := NewSMTPMailer("smtp.example.com", "587", "noreply@example.com", "app-password", "")
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, string(msg)
		return nil
	}

	err := m.Send(VerificationCodeEmail("buyer@example.com", "Kim", "482913"))
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"buyer@example.com"}, gotTo)
	assert.Contains(t, gotBody, "Subject: "+VerificationSubject+"\r\n")
	assert.Contains(t, gotBody, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, gotBody, "482913")
}

func TestSMTPMailer_SendRejected(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "noreply@example.com", "pw", "cars@example.com")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("550 mailbox unavailable")
	}

	err := m.Send(ResetCodeEmail("nobody@example.com", "Lee", "111111"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "550")
}

func TestSMTPMailer_InvalidRecipient(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "u", "p", "")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}

	assert.ErrorIs(t, m.Send(Message{To: ""}), ErrInvalidRecipient)
	assert.ErrorIs(t, m.Send(Message{To: "a@example.com\r\nBcc: x@example.com"}), ErrInvalidRecipient)
}

func TestLogMailer_Send(t *testing.T) {
	assert.NoError(t, NewLogMailer().Send(VerificationCodeEmail("a@example.com", "A", "123456")))
	assert.ErrorIs(t, NewLogMailer().Send(Message{}), ErrInvalidRecipient)
}

func TestTemplates(t *testing.T) {
	v := VerificationCodeEmail("a@example.com", "<script>", "654321")
	assert.Equal(t, "a@example.com", v.To)
	assert.Contains(t, v.HTML, "654321")
	assert.Contains(t, v.HTML, "valid for 10 minutes")
	assert.NotContains(t, v.HTML, "<script>", "names are HTML escaped")

	r := ResetCodeEmail("b@example.com", "B", "777777")
	assert.Equal(t, ResetSubject, r.Subject)
	assert.Contains(t, r.HTML, "777777")
}
