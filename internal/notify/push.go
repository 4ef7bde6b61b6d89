package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PushConfig configures the chat-bot push channel. An empty BotToken or
// ChatID leaves the channel unconfigured; sends are then soft-skipped.
type PushConfig struct {
	BotToken string
	ChatID   string
	APIBase  string
	Timeout  time.Duration
}

// PushChannel posts HTML-formatted messages to a chat-bot sendMessage
// endpoint. Any transport problem, non-2xx response, or missing
// configuration yields false; nothing is ever raised to the caller.
type PushChannel struct {
	cfg    PushConfig
	client *http.Client
	tracer trace.Tracer
}

var _ Pusher = (*PushChannel)(nil)

// NewPushChannel builds the channel with an instrumented HTTP client bounded
// by the configured per-call timeout.
func NewPushChannel(cfg PushConfig, tp trace.TracerProvider) *PushChannel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &PushChannel{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(tp),
			),
		},
		tracer: tp.Tracer("kimhut-cafe/notify"),
	}
}

// Push sends text as an HTML-formatted bot message. It returns true only on
// an HTTP 2xx response.
func (c *PushChannel) Push(ctx context.Context, text string) bool {
	lg := zctx.From(ctx)
	if c.cfg.BotToken == "" || c.cfg.ChatID == "" {
		lg.Warn("push channel not configured, skipping send")
		return false
	}

	ctx, span := c.tracer.Start(ctx, "notify.Push")
	defer span.End()

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("chat_id", func(e *jx.Encoder) { e.Str(c.cfg.ChatID) })
		e.Field("text", func(e *jx.Encoder) { e.Str(text) })
		e.Field("parse_mode", func(e *jx.Encoder) { e.Str("HTML") })
	})

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.APIBase, c.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(e.Bytes()))
	if err != nil {
		lg.Error("build push request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		lg.Error("push send failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The bot API returns a short JSON error description.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		lg.Error("push rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return false
	}
	return true
}
