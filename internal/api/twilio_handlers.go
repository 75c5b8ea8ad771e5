package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gestorzap/botengine/internal/messaging"
)

// twilioWebhookHandler receives Twilio's inbound message callback
// (application/x-www-form-urlencoded) and feeds it into the Twilio transport.
// The reply is delivered asynchronously through the bridge, so the webhook
// answers with an empty TwiML document.
func (s *Server) twilioWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if s.twilio == nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.Warn("Server.twilioWebhookHandler: form parse failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	from := strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:")
	body := r.PostFormValue("Body")
	name := r.PostFormValue("ProfileName")
	if from == "" {
		slog.Warn("Server.twilioWebhookHandler: missing From field")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	msg := messaging.Inbound{
		From: strings.TrimPrefix(from, "+"),
		Name: name,
		Body: body,
		Time: time.Now().Unix(),
	}
	if err := s.twilio.Push(msg); err != nil {
		slog.Error("Server.twilioWebhookHandler: push failed", "error", err, "from", msg.From)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	slog.Debug("Server.twilioWebhookHandler: inbound message accepted", "from", msg.From, "body_length", len(body))
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response></Response>`))
}
