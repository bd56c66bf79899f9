package conversation

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"stockpulse/pkg/errors"
)

// Role identifies the author of a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the persisted dialogue history
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// History is the ordered message sequence, stored as JSONB
type History []Message

// Value implements driver.Valuer for JSONB storage
func (h History) Value() (driver.Value, error) {
	if h == nil {
		h = History{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB storage
func (h *History) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	case nil:
		*h = History{}
		return nil
	default:
		return errors.Newf("unsupported history scan type %T", src)
	}
}

// Memory holds transient key-value context carried across turns
type Memory map[string]string

// Value implements driver.Valuer for JSONB storage
func (m Memory) Value() (driver.Value, error) {
	if m == nil {
		m = Memory{}
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage
func (m *Memory) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = Memory{}
		return nil
	default:
		return errors.Newf("unsupported memory scan type %T", src)
	}
}

// State is the per-user conversational state. It is loaded at the start
// of every turn, mutated only by the orchestrator, and persisted before
// the reply is returned.
type State struct {
	UserID        string    `db:"user_id"`
	History       History   `db:"history"`
	WorkingMemory Memory    `db:"working_memory"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Append adds a message to the history
func (s *State) Append(role Role, content string) {
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// Truncate evicts oldest messages until the history fits the window
func (s *State) Truncate(window int) {
	if window <= 0 || len(s.History) <= window {
		return
	}
	s.History = s.History[len(s.History)-window:]
}
