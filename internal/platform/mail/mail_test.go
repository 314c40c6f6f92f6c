// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/platform/mail"
)

type recordingSender struct {
	sent []mail.Message
}

func (r *recordingSender) Send(_ context.Context, message mail.Message) error {
	r.sent = append(r.sent, message)
	return nil
}

/*
TestComposer_SendTemplate verifies the subject prefix and that the link is
rendered into every template.
*/
func TestComposer_SendTemplate(t *testing.T) {
	templates := []string{mail.TemplateConfirm, mail.TemplateReset, mail.TemplateChangeEmail}

	for _, name := range templates {
		t.Run(name, func(t *testing.T) {
			sender := &recordingSender{}
			composer, err := mail.NewComposer(sender, "[CryptoNotifications]")
			require.NoError(t, err)

			err = composer.SendTemplate(context.Background(), "alice@example.com", "Please confirm your email", name, mail.LinkData{
				Username:  "alice",
				Link:      "http://localhost:8080/api/v1/auth/confirm/abc?x=1&y=2",
				ExpiresIn: "1h0m0s",
			})
			require.NoError(t, err)
			require.Len(t, sender.sent, 1)

			message := sender.sent[0]
			assert.Equal(t, "alice@example.com", message.To)
			assert.Equal(t, "[CryptoNotifications] Please confirm your email", message.Subject)
			assert.Contains(t, message.HTML, "alice")
			assert.Contains(t, message.HTML, "http://localhost:8080/api/v1/auth/confirm/abc?x=1&amp;y=2")
		})
	}
}

func TestComposer_UnknownTemplate(t *testing.T) {
	composer, err := mail.NewComposer(&recordingSender{}, "")
	require.NoError(t, err)

	err = composer.SendTemplate(context.Background(), "a@example.com", "x", "missing.html", mail.LinkData{})
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	var buffer bytes.Buffer
	sender := mail.NewLogSender(slog.New(slog.NewJSONHandler(&buffer, nil)))

	require.NoError(t, sender.Send(context.Background(), mail.Message{To: "bob@example.com", Subject: "hi", HTML: "<p>x</p>"}))
	assert.Contains(t, buffer.String(), `"msg":"mail_logged"`)
	assert.Contains(t, buffer.String(), "bob@example.com")
}

func TestNewSMTPSender(t *testing.T) {
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     465,
		UseSSL:   true,
		Username: "user",
		Password: "secret",
		From:     "Cryptonotify <noreply@example.com>",
	})
	require.NoError(t, err)
	assert.NotNil(t, sender)
}
