package assistants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	nonTerminal := []Status{StatusQueued, StatusInProgress, StatusCancelling}
	for _, s := range nonTerminal {
		assert.False(t, s.Terminal(), string(s))
	}
	terminal := []Status{
		StatusRequiresAction,
		StatusCancelled,
		StatusFailed,
		StatusCompleted,
		StatusIncomplete,
		StatusExpired,
	}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), string(s))
	}
}
