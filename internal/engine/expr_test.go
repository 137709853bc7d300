package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/bars/internal/domain"
)

func TestExprEvaluatorEmptyDisjunctionIsOff(t *testing.T) {
	ev := NewExprEvaluator()

	state, err := ev.Evaluate(0, domain.EdgeRef(0), domain.NodeExpression{}, func(domain.NodeRef) domain.NodeState {
		t.Fatal("nodeState should not be called for an empty disjunction")
		return domain.NodeOff
	})

	require.NoError(t, err)
	require.Equal(t, domain.EdgeOff, state)
}

func TestExprEvaluatorConjunction(t *testing.T) {
	ev := NewExprEvaluator()

	states := map[domain.NodeRef]domain.NodeState{
		0: domain.NodeOn,
		1: domain.NodeOff,
	}
	lookup := func(n domain.NodeRef) domain.NodeState { return states[n] }

	expr := domain.NodeExpression{
		Disjunction: []domain.NodeConjunction{
			{Positive: []domain.NodeRef{0}, Negative: []domain.NodeRef{1}},
		},
	}

	state, err := ev.Evaluate(0, domain.EdgeRef(0), expr, lookup)
	require.NoError(t, err)
	require.Equal(t, domain.EdgeOn, state)

	states[1] = domain.NodeOn
	state, err = ev.Evaluate(0, domain.EdgeRef(0), expr, lookup)
	require.NoError(t, err)
	require.Equal(t, domain.EdgeOff, state)
}

func TestExprEvaluatorCachesPerProfile(t *testing.T) {
	ev := NewExprEvaluator()

	alwaysTrue := domain.NodeExpression{Disjunction: []domain.NodeConjunction{{}}}
	alwaysFalse := domain.NodeExpression{}

	lookup := func(domain.NodeRef) domain.NodeState { return domain.NodeOff }

	state, err := ev.Evaluate(0, domain.EdgeRef(5), alwaysTrue, lookup)
	require.NoError(t, err)
	require.Equal(t, domain.EdgeOn, state)

	// Same edge index, different profile: must not reuse profile 0's
	// compiled program for this edge.
	state, err = ev.Evaluate(1, domain.EdgeRef(5), alwaysFalse, lookup)
	require.NoError(t, err)
	require.Equal(t, domain.EdgeOff, state)

	require.Len(t, ev.program, 2)
}
