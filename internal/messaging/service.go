// Package messaging defines the pluggable message transport abstraction and
// the bridge that feeds inbound traffic into the flow engine.
package messaging

import (
	"context"
	"fmt"
	"strings"
)

// Inbound is one message received from a contact, as seen by the transport.
// Phone numbers are raw here; the engine performs normalization.
type Inbound struct {
	From string
	Name string
	Body string
	Time int64
}

// Service defines a pluggable message delivery abstraction. It supports
// sending text and media, and provides a channel of inbound messages.
type Service interface {
	// CanonicalizeRecipient validates and canonicalizes a recipient
	// identifier for this transport.
	CanonicalizeRecipient(recipient string) (string, error)

	// SendText sends a plain text message to a recipient.
	SendText(ctx context.Context, to string, body string) error

	// SendMedia sends a media attachment with an optional caption. Transports
	// without native media support fall back to sending the URL as text.
	SendMedia(ctx context.Context, to, caption, mediaURL, mediaType string) error

	// Start begins any background processing (e.g., listening for events).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Inbound returns a channel of incoming contact messages.
	Inbound() <-chan Inbound
}

// canonicalizePhone applies the shared recipient rules: strip whitespace and
// a leading "+", require at least one digit.
func canonicalizePhone(recipient string) (string, error) {
	r := strings.TrimSpace(recipient)
	r = strings.TrimPrefix(r, "+")
	if r == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	for _, c := range r {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("recipient %q contains non-digit characters", recipient)
		}
	}
	return r, nil
}
