package postgres

import (
	"context"
	"database/sql"

	"stockpulse/internal/domain/conversation"
	"stockpulse/pkg/errors"
)

// Compile-time check
var _ conversation.Repository = (*ConversationRepository)(nil)

// ConversationRepository implements conversation.Repository using sqlx.
// History and working memory are stored as JSONB.
type ConversationRepository struct {
	db DBTX
}

// NewConversationRepository creates a new conversation state repository
func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Get retrieves the conversation state for a user
func (r *ConversationRepository) Get(ctx context.Context, userID string) (*conversation.State, error) {
	var state conversation.State

	query := `SELECT * FROM conversation_states WHERE user_id = $1`

	err := r.db.GetContext(ctx, &state, query, userID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save upserts the conversation state. The write is a single statement
// so a failed persist leaves the previous state intact.
func (r *ConversationRepository) Save(ctx context.Context, state *conversation.State) error {
	query := `
		INSERT INTO conversation_states (user_id, history, working_memory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			history        = EXCLUDED.history,
			working_memory = EXCLUDED.working_memory,
			updated_at     = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		state.UserID, state.History, state.WorkingMemory,
		state.CreatedAt, state.UpdatedAt,
	)
	return err
}
