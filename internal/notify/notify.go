// Package notify implements best-effort notification delivery over two
// independent channels: a chat-bot push API and transactional email.
//
// Delivery is strictly fire-and-forget. No call in this package returns an
// error; every attempt resolves to a boolean outcome, and a missing channel
// configuration is a soft skip logged at warning level. The two channels are
// always attempted independently: the outcome of one never gates the other.
package notify

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pusher delivers an operator-facing chat message. Implementations report
// success as a plain boolean and never return an error.
type Pusher interface {
	Push(ctx context.Context, text string) bool
}

// Mailer delivers a transactional email to a single recipient.
type Mailer interface {
	Email(ctx context.Context, recipient, subject, body string) bool
}

// Email is the payload for the email side of a fan-out.
type Email struct {
	Recipient string
	Subject   string
	Body      string
}

// Outcome holds the per-channel results of one fan-out.
type Outcome struct {
	PushOK  bool
	EmailOK bool
}

// Any reports whether at least one channel succeeded. This is the aggregate
// caller-visible success: OR, never AND.
func (o Outcome) Any() bool {
	return o.PushOK || o.EmailOK
}

// Dispatcher fans a notification out to both channels.
type Dispatcher struct {
	push  Pusher
	mail  Mailer
	sends metric.Int64Counter
}

// NewDispatcher wires the two channels and an outcome counter on the given
// meter provider.
func NewDispatcher(push Pusher, mail Mailer, mp metric.MeterProvider, lg *zap.Logger) *Dispatcher {
	meter := mp.Meter("kimhut-cafe/notify")
	sends, err := meter.Int64Counter("notify.dispatch",
		metric.WithDescription("Notification dispatch attempts by channel and outcome"),
	)
	if err != nil {
		// Metric registration failing must not disable delivery.
		lg.Warn("dispatch counter unavailable", zap.Error(err))
	}

	return &Dispatcher{
		push:  push,
		mail:  mail,
		sends: sends,
	}
}

// DispatchBoth attempts both channels unconditionally and concurrently, then
// joins. Partial failure of one channel never suppresses the other; the
// concurrency is an optimization, not a correctness requirement.
func (d *Dispatcher) DispatchBoth(ctx context.Context, pushText string, email Email) Outcome {
	var out Outcome

	// The goroutines never return errors, so the group's cancellation can
	// never fire between them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.PushOK = d.push.Push(gctx, pushText)
		return nil
	})
	g.Go(func() error {
		out.EmailOK = d.mail.Email(gctx, email.Recipient, email.Subject, email.Body)
		return nil
	})
	_ = g.Wait()

	d.record(ctx, "push", out.PushOK)
	d.record(ctx, "email", out.EmailOK)

	if !out.Any() {
		zctx.From(ctx).Warn("notification dispatch failed on both channels")
	}
	return out
}

func (d *Dispatcher) record(ctx context.Context, channel string, ok bool) {
	if d.sends == nil {
		return
	}
	d.sends.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.Bool("ok", ok),
	))
}
