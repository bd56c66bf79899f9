package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"stockpulse/pkg/logger"
)

// TurnProcessor handles one inbound user message and returns the reply
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, userID, text string) (string, error)
}

// WebhookHandler terminates the Twilio WhatsApp webhook. Twilio POSTs
// an inbound message as a form and expects TwiML back; the reply text
// inside the TwiML is delivered to the user.
type WebhookHandler struct {
	processor TurnProcessor
	log       *logger.Logger
}

// NewWebhookHandler creates the WhatsApp webhook handler
func NewWebhookHandler(processor TurnProcessor) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		log:       logger.Get().With("component", "webhook"),
	}
}

// Handle serves the /whatsapp endpoint. GET is a liveness probe for
// the Twilio console; POST carries an inbound message.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "StockPulse webhook is up")
	case http.MethodPost:
		h.handleMessage(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *WebhookHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.log.Warnw("Malformed webhook form", "error", err)
		writeTwiML(w, "Sorry, I couldn't read that message.")
		return
	}

	body := strings.TrimSpace(r.PostFormValue("Body"))
	from := r.PostFormValue("From")
	userID := strings.TrimPrefix(from, "whatsapp:")

	if userID == "" || body == "" {
		h.log.Warnw("Webhook missing From or Body", "from", from)
		writeTwiML(w, "Sorry, I couldn't read that message.")
		return
	}

	reply, err := h.processor.ProcessTurn(r.Context(), userID, body)
	if err != nil {
		h.log.Errorw("Turn processing failed", "user_id", userID, "error", err)
		writeTwiML(w, "Something went wrong on my side. Please try again.")
		return
	}

	writeTwiML(w, reply)
}

// writeTwiML responds with the minimal TwiML message envelope
func writeTwiML(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprintf(w,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?><Response><Message>%s</Message></Response>",
		escapeXML(text),
	)
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
