package notify

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_RecordsInOrder(t *testing.T) {
	n := NewLogNotifier(10, zerolog.Nop())

	n.Success("Widget added to cart!")
	n.Error("Failed to place order. Please try again.")

	recent := n.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, LevelSuccess, recent[0].Level)
	assert.Equal(t, "Widget added to cart!", recent[0].Text)
	assert.Equal(t, LevelError, recent[1].Level)
	assert.False(t, recent[1].SentAt.IsZero())
}

func TestLogNotifier_DropsOldestBeyondCapacity(t *testing.T) {
	n := NewLogNotifier(3, zerolog.Nop())

	for i := 0; i < 5; i++ {
		n.Success(fmt.Sprintf("message %d", i))
	}

	recent := n.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "message 2", recent[0].Text)
	assert.Equal(t, "message 4", recent[2].Text)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Success("ignored")
		Nop().Error("ignored")
	})
}
