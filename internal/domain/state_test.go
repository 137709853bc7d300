package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualStateEffective(t *testing.T) {
	d := DualState[bool]{Current: false}
	assert.Equal(t, false, d.Effective())

	d.Predict(true)
	assert.Equal(t, true, d.Effective())
}

func TestCommitServerPredictionLands(t *testing.T) {
	d := DualState[bool]{Current: false}
	d.Predict(true)

	contradicted := CommitServer(&d, true)

	require.False(t, contradicted)
	assert.Nil(t, d.Pending)
	assert.True(t, d.Current)
}

func TestCommitServerContradictsPending(t *testing.T) {
	d := DualState[bool]{Current: false}
	d.Predict(true)

	contradicted := CommitServer(&d, false)

	require.True(t, contradicted)
	assert.True(t, d.Pending != nil && *d.Pending)
	assert.False(t, d.Current)
}

func TestCommitServerNoPendingStillContradicted(t *testing.T) {
	d := DualState[bool]{Current: false}

	contradicted := CommitServer(&d, true)

	require.True(t, contradicted, "a write with no pending value must still clear any timer")
	assert.True(t, d.Current)
}

func TestBlockStateEqual(t *testing.T) {
	a := Route(NodeRef(1), NodeRef(2))
	b := Route(NodeRef(1), NodeRef(2))
	c := Route(NodeRef(2), NodeRef(1))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(ClearState))
	assert.True(t, ClearState.Equal(BlockState{}))
}
