// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/wneessen/go-mail"

	"github.com/danielhkuo/meeting-vote/cliparse"
)

// SubjectPrefix is prepended to the meeting title in every notification.
const SubjectPrefix = "[Meeting Vote] "

// qrFileName doubles as the Content-ID the HTML body refers to.
const qrFileName = "qr.png"

// Notification is one member's vote invitation.
type Notification struct {
	To      string
	Name    string
	Title   string
	VoteURL string
}

// Subject returns the message subject derived from the meeting title.
func (n Notification) Subject() string {
	return SubjectPrefix + n.Title
}

// Sender delivers composed messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer renders the vote link as a QR code and mails it to the member.
type Mailer struct {
	sender  Sender
	from    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewMailer builds a Mailer that talks to the SMTP relay in cfg using
// STARTTLS and PLAIN authentication.
func NewMailer(cfg cliparse.Config, logger *slog.Logger) (*Mailer, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTimeout(cfg.MailTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return NewMailerWithSender(client, cfg.MailFrom, cfg.MailTimeout, logger), nil
}

func NewMailerWithSender(sender Sender, from string, timeout time.Duration, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{sender: sender, from: from, timeout: timeout, logger: logger}
}

// Dispatch sends n and reports whether the relay accepted it.
// Errors are logged, never returned.
func (m *Mailer) Dispatch(ctx context.Context, n Notification) bool {
	msg, err := m.Compose(n)
	if err != nil {
		m.logger.Error("failed to compose notification", "to", n.To, "error", err)
		return false
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("failed to send notification", "to", n.To, "error", err)
		return false
	}

	m.logger.Info("notification sent", "to", n.To)
	return true
}

// Compose builds the message for n: an HTML body with the QR code inline.
func (m *Mailer) Compose(n Notification) (*mail.Msg, error) {
	png, err := RenderQR(n.VoteURL)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, struct {
		Notification
		CID string
	}{n, qrFileName}); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(n.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", n.To, err)
	}
	msg.Subject(n.Subject())
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, body.String())
	if err := msg.EmbedReader(qrFileName, bytes.NewReader(png), mail.WithFileContentID(qrFileName)); err != nil {
		return nil, fmt.Errorf("embed QR code: %w", err)
	}

	return msg, nil
}

// RenderQR encodes content as a PNG QR code.
func RenderQR(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("render QR code: %w", err)
	}
	return png, nil
}

var bodyTemplate = template.Must(template.New("body").Parse(`<div style="font-family:Arial,sans-serif">
<h2>{{.Title}}</h2>
<p>Dear {{.Name}},</p>
<p>Please scan the QR code below to cast your vote. The link can be used once.</p>
<div style="text-align:center;margin:20px"><img src="cid:{{.CID}}" width="180" alt="Vote QR code"></div>
<p>If you cannot scan the code, open this link instead:<br><a href="{{.VoteURL}}">{{.VoteURL}}</a></p>
</div>`))

// LogDispatcher logs vote links instead of mailing them. Used when no SMTP
// relay is configured.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d LogDispatcher) Dispatch(_ context.Context, n Notification) bool {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail disabled, vote link not sent", "to", n.To, "subject", n.Subject(), "url", n.VoteURL)
	return true
}
