// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers the transactional emails of the account flows.

Two senders share the [Sender] contract:

  - SMTPSender: delivers through an SMTP relay with wneessen/go-mail.
  - LogSender: writes the message to the structured log (development).

Bodies are rendered from the embedded HTML templates by [Composer], which also
applies the subject prefix.
*/
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	gomail "github.com/wneessen/go-mail"
)

// # Contracts

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message. Implementations do not retry.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// # SMTP Delivery

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	UseSSL   bool
	Username string
	Password string
	From     string
}

// SMTPSender sends through an SMTP relay.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

/*
NewSMTPSender builds a go-mail client for the configured relay.

Returns:
  - *SMTPSender: Ready sender (no connection is opened until Send)
  - error: Invalid client options
*/
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	options := []gomail.Option{gomail.WithPort(cfg.Port)}

	if cfg.UseSSL {
		options = append(options, gomail.WithSSL())
	} else {
		options = append(options, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}

	if cfg.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, options...)
	if err != nil {
		return nil, fmt.Errorf("mail_client_init_failed: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send delivers message in a single dial.
func (sender *SMTPSender) Send(ctx context.Context, message Message) error {
	msg := gomail.NewMsg()
	if err := msg.From(sender.from); err != nil {
		return fmt.Errorf("mail_invalid_sender: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("mail_invalid_recipient: %w", err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, message.HTML)

	if err := sender.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail_send_failed: %w", err)
	}
	return nil
}

// # Development Delivery

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a sender that logs at info level.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (sender *LogSender) Send(ctx context.Context, message Message) error {
	sender.logger.InfoContext(ctx, "mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("html", message.HTML),
	)
	return nil
}

// # Templates

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	TemplateConfirm     = "confirm.html"
	TemplateReset       = "reset.html"
	TemplateChangeEmail = "change_email.html"
)

// LinkData is the data every template receives.
type LinkData struct {
	Username  string
	Link      string
	ExpiresIn string
}

// Composer renders templates and hands the result to a [Sender].
type Composer struct {
	sender        Sender
	templates     *template.Template
	subjectPrefix string
}

// NewComposer parses the embedded templates.
func NewComposer(sender Sender, subjectPrefix string) (*Composer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mail_templates_parse_failed: %w", err)
	}
	return &Composer{sender: sender, templates: templates, subjectPrefix: subjectPrefix}, nil
}

/*
SendTemplate renders name with data and sends it to recipient.

Parameters:
  - ctx: context.Context
  - recipient: Email address
  - subject: Subject without the prefix
  - name: One of the Template* constants
  - data: Template data

Returns:
  - error: Render or delivery failures
*/
func (composer *Composer) SendTemplate(ctx context.Context, recipient, subject, name string, data LinkData) error {
	var body bytes.Buffer
	if err := composer.templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("mail_render_failed: %w", err)
	}

	return composer.sender.Send(ctx, Message{
		To:      recipient,
		Subject: composer.subject(subject),
		HTML:    body.String(),
	})
}

func (composer *Composer) subject(subject string) string {
	if composer.subjectPrefix == "" {
		return subject
	}
	return strings.TrimSpace(composer.subjectPrefix + " " + subject)
}
