package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	label string
	seen  *[]string
}

func (s captureSink) Emit(_ context.Context, name string, _ map[string]any) {
	*s.seen = append(*s.seen, s.label+":"+name)
}

func TestNewEventStampsIdentityAndTime(t *testing.T) {
	event := NewEvent(EventLoginSucceeded, map[string]any{"user_id": "u-1"})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventLoginSucceeded, event.Name)
	assert.Equal(t, "u-1", event.Details["user_id"])
	assert.False(t, event.Timestamp.IsZero())

	other := NewEvent(EventLoginSucceeded, nil)
	assert.NotEqual(t, event.ID, other.ID)
}

func TestFanoutEmitsInOrder(t *testing.T) {
	var seen []string
	fanout := Fanout{
		captureSink{label: "log", seen: &seen},
		captureSink{label: "stream", seen: &seen},
	}

	fanout.Emit(context.Background(), EventUserDeleted, nil)
	fanout.Emit(context.Background(), EventPasswordChanged, nil)

	require.Equal(t, []string{
		"log:user-deleted",
		"stream:user-deleted",
		"log:password-changed",
		"stream:password-changed",
	}, seen)
}
