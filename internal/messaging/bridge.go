package messaging

import (
	"context"
	"log/slog"

	"github.com/gestorzap/botengine/internal/flow"
)

// Bridge connects one transport to the flow engine for a single tenant.
// It consumes the transport's inbound channel, runs each message through the
// engine, and dispatches the resulting responses back through the transport.
type Bridge struct {
	engine   *flow.Engine
	service  Service
	tenantID string
}

// NewBridge creates a bridge binding the transport to the given tenant.
func NewBridge(engine *flow.Engine, service Service, tenantID string) *Bridge {
	return &Bridge{
		engine:   engine,
		service:  service,
		tenantID: tenantID,
	}
}

// Start launches the consume loop. It returns once the loop goroutine is
// running; the loop exits when the context is cancelled or the transport's
// inbound channel closes.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.service.Start(ctx); err != nil {
		return err
	}
	go b.loop(ctx)
	slog.Info("Bridge started", "tenant", b.tenantID)
	return nil
}

func (b *Bridge) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Bridge loop stopping due to context cancellation", "tenant", b.tenantID)
			return
		case msg, ok := <-b.service.Inbound():
			if !ok {
				slog.Debug("Bridge inbound channel closed", "tenant", b.tenantID)
				return
			}
			b.handle(ctx, msg)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, msg Inbound) {
	result := b.engine.Handle(ctx, flow.InboundMessage{
		TenantID:     b.tenantID,
		ContactPhone: msg.From,
		ContactName:  msg.Name,
		MessageText:  msg.Body,
	})
	if !result.Success {
		slog.Debug("Bridge engine produced no deliverable result", "tenant", b.tenantID, "from", msg.From, "error", result.Error)
	}
	if len(result.Responses) == 0 {
		return
	}
	to, err := b.service.CanonicalizeRecipient(msg.From)
	if err != nil {
		slog.Error("Bridge recipient canonicalization failed", "error", err, "from", msg.From)
		return
	}
	if err := Dispatch(ctx, b.service, to, result.Responses); err != nil {
		slog.Error("Bridge response dispatch failed", "error", err, "tenant", b.tenantID, "to", to)
	}
}

// Stop shuts down the underlying transport.
func (b *Bridge) Stop() error {
	return b.service.Stop()
}
