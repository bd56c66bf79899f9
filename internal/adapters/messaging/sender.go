package messaging

import "context"

// Sender delivers an outbound message to a user over the configured
// channel. The user id is the same stable identifier used for inbound
// turns (phone number for WhatsApp, chat id for Telegram).
type Sender interface {
	Send(ctx context.Context, userID, text string) error
}
