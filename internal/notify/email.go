package notify

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// MailConfig configures the SMTP email channel. An empty Host or Username
// leaves the channel unconfigured; sends are then soft-skipped.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailChannel sends transactional plain-text email over SMTP. A send
// returns false without attempting delivery when the transport is
// unconfigured, and false on any transport error; errors never escape.
type EmailChannel struct {
	from   string
	client *mail.Client
}

var _ Mailer = (*EmailChannel)(nil)

// NewEmailChannel builds the channel. An unconfigured transport is not an
// error: the channel is returned with no client and soft-skips every send.
// A configured transport that cannot be constructed is a real error.
func NewEmailChannel(cfg MailConfig) (*EmailChannel, error) {
	ch := &EmailChannel{from: cfg.From}
	if cfg.Host == "" || cfg.Username == "" {
		return ch, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create mail client")
	}
	ch.client = client
	return ch, nil
}

// Email delivers a plain-text message to recipient. True means the transport
// accepted the message; false covers unconfigured transport, an empty
// recipient, and every transport failure.
func (c *EmailChannel) Email(ctx context.Context, recipient, subject, body string) bool {
	lg := zctx.From(ctx)
	if c.client == nil {
		lg.Warn("mail transport not configured, skipping send")
		return false
	}
	if recipient == "" {
		lg.Warn("email skipped: empty recipient")
		return false
	}

	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		lg.Error("invalid mail sender", zap.String("from", c.from), zap.Error(err))
		return false
	}
	if err := msg.To(recipient); err != nil {
		lg.Error("invalid mail recipient", zap.String("to", recipient), zap.Error(err))
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := c.client.DialAndSendWithContext(ctx, msg); err != nil {
		lg.Error("mail send failed", zap.String("to", recipient), zap.Error(err))
		return false
	}
	return true
}
