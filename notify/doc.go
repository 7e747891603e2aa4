// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify delivers vote links to committee members.

A Notification carries the recipient, the meeting title and the member's
vote URL. Mailer renders the URL as a QR code (github.com/skip2/go-qrcode),
embeds it inline in an HTML message and hands the message to an SMTP relay
through github.com/wneessen/go-mail:

	mailer, err := notify.NewMailer(cfg, logger)
	ok := mailer.Dispatch(ctx, notify.Notification{...})

Dispatch never returns an error. Failures are logged and reported as false
so one bad address cannot affect anyone else's invitation.

LogDispatcher is used when no relay is configured; it logs the link.
*/
package notify
