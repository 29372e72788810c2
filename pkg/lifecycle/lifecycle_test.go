package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
)

func TestValid(t *testing.T) {
	for _, s := range Order {
		assert.True(t, Valid(s), "state %q", s)
	}
	assert.False(t, Valid("archived"))
	assert.False(t, Valid(""))
}

func TestValidInitial(t *testing.T) {
	assert.True(t, ValidInitial(model.ExperimentConfiguring))
	assert.True(t, ValidInitial(model.ExperimentInProgress))
	assert.False(t, ValidInitial(model.ExperimentPending))
	assert.False(t, ValidInitial(model.ExperimentCompleted))
	assert.False(t, ValidInitial(model.ExperimentSigned))
}

func TestCanTransitionForwardOnly(t *testing.T) {
	// any state may move to itself or any later non-signed state
	for i, from := range Order[:len(Order)-1] {
		for j, to := range Order[:len(Order)-1] {
			err := CanTransition(from, to)
			if j >= i {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.Error(t, err, "%s -> %s", from, to)
			}
		}
	}
}

func TestCanTransitionGuards(t *testing.T) {
	// signed is terminal
	for _, to := range Order {
		assert.Error(t, CanTransition(model.ExperimentSigned, to))
	}
	// signed is only reachable through the sign action
	assert.Error(t, CanTransition(model.ExperimentCompleted, model.ExperimentSigned))
	// unknown states are rejected on both sides
	assert.Error(t, CanTransition("bogus", model.ExperimentPending))
	assert.Error(t, CanTransition(model.ExperimentPending, "bogus"))
}

func TestCanSign(t *testing.T) {
	require.NoError(t, CanSign(model.ExperimentCompleted))

	assert.Error(t, CanSign(model.ExperimentConfiguring))
	assert.Error(t, CanSign(model.ExperimentPending))
	assert.Error(t, CanSign(model.ExperimentInProgress))
	// double sign is rejected, not a silent no-op
	assert.Error(t, CanSign(model.ExperimentSigned))
}
