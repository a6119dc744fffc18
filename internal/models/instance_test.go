package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstanceState(t *testing.T) {
	for _, name := range []string{"pending", "running", "shutting-down", "terminated", "stopping", "stopped"} {
		state, err := ParseInstanceState(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, string(state))
	}

	_, err := ParseInstanceState("Running")
	assert.Error(t, err)
}

func TestInstanceStatePredicates(t *testing.T) {
	assert.True(t, StatePending.Up())
	assert.True(t, StateRunning.Up())
	assert.False(t, StateStopped.Up())

	assert.True(t, StateStopping.Stopping())
	assert.True(t, StateShuttingDown.Stopping())
	assert.False(t, StateStopped.Stopping())
	assert.False(t, StateTerminated.Stopping())
}
