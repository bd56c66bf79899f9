package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndTruncate(t *testing.T) {
	state := &State{UserID: "user-1", History: History{}}

	for i := 0; i < 25; i++ {
		state.Append(RoleUser, fmt.Sprintf("question %d", i))
		state.Append(RoleAssistant, fmt.Sprintf("answer %d", i))
	}
	require.Len(t, state.History, 50)

	state.Truncate(40)
	require.Len(t, state.History, 40)

	// Oldest messages are evicted first
	assert.Equal(t, "question 5", state.History[0].Content)
	assert.Equal(t, "answer 24", state.History[len(state.History)-1].Content)
}

func TestTruncate_NoopWithinWindow(t *testing.T) {
	state := &State{UserID: "user-1"}
	state.Append(RoleUser, "hi")
	state.Append(RoleAssistant, "hello")

	state.Truncate(40)
	assert.Len(t, state.History, 2)

	state.Truncate(0)
	assert.Len(t, state.History, 2, "non-positive window disables truncation")
}

func TestHistoryRoundTrip(t *testing.T) {
	state := &State{UserID: "user-1"}
	state.Append(RoleUser, "what's AAPL at?")
	state.Append(RoleAssistant, "AAPL is at $190.00 📈")

	value, err := state.History.Value()
	require.NoError(t, err)

	var restored History
	require.NoError(t, restored.Scan(value))

	require.Len(t, restored, 2)
	assert.Equal(t, RoleUser, restored[0].Role)
	assert.Equal(t, "AAPL is at $190.00 📈", restored[1].Content)
}

func TestMemoryScan_Nil(t *testing.T) {
	var m Memory
	require.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
	assert.Empty(t, m)
}
