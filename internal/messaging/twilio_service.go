package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gestorzap/botengine/internal/twiliowhatsapp"
)

// TwilioService implements Service using the Twilio WhatsApp API. Inbound
// messages arrive through Twilio's HTTP webhook, which the API layer feeds in
// via Push; there is no event stream to poll.
type TwilioService struct {
	client  twiliowhatsapp.Sender
	inbound chan Inbound
	done    chan struct{}
}

// NewTwilioService creates a new TwilioService wrapping the given Sender.
func NewTwilioService(client twiliowhatsapp.Sender) *TwilioService {
	return &TwilioService{
		client:  client,
		inbound: make(chan Inbound, DefaultChannelBufferSize),
		done:    make(chan struct{}),
	}
}

// CanonicalizeRecipient applies the shared phone rules.
func (s *TwilioService) CanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// Start is a no-op; inbound traffic is webhook-driven.
func (s *TwilioService) Start(ctx context.Context) error {
	slog.Debug("TwilioService Start invoked (webhook-driven, nothing to poll)")
	return nil
}

// Stop closes the inbound channel.
func (s *TwilioService) Stop() error {
	slog.Info("TwilioService Stop invoked")
	close(s.done)
	close(s.inbound)
	return nil
}

// SendText sends a plain text message.
func (s *TwilioService) SendText(ctx context.Context, to string, body string) error {
	slog.Debug("TwilioService SendText invoked", "to", to, "body_length", len(body))
	return s.client.SendMessage(ctx, to, body)
}

// SendMedia sends a media attachment with an optional caption.
func (s *TwilioService) SendMedia(ctx context.Context, to, caption, mediaURL, mediaType string) error {
	slog.Debug("TwilioService SendMedia invoked", "to", to, "media_type", mediaType)
	return s.client.SendMediaMessage(ctx, to, caption, mediaURL)
}

// Inbound returns the channel of incoming contact messages.
func (s *TwilioService) Inbound() <-chan Inbound {
	return s.inbound
}

// Push injects an inbound message received via the Twilio webhook.
func (s *TwilioService) Push(msg Inbound) error {
	select {
	case s.inbound <- msg:
		return nil
	case <-time.After(DefaultChannelTimeout):
		return fmt.Errorf("inbound channel blocked, message from %s dropped", msg.From)
	}
}
