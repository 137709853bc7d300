package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/bars/internal/domain"
)

func elementAerodrome() *domain.Aerodrome {
	cfg := simpleAerodrome()
	cfg.Elements = []domain.Element{
		{ID: "stopbar", Condition: domain.ElementCondition{Kind: domain.ElementNode, Node: 0}},
		{ID: "route-light", Condition: domain.ElementCondition{Kind: domain.ElementEdge, Edge: 0}},
		{ID: "static", Condition: domain.ElementCondition{Kind: domain.ElementFixed, Fixed: true}},
	}
	return cfg
}

func TestTakePendingOnlyEmitsTouchedElements(t *testing.T) {
	cfg := elementAerodrome()
	idx := Build(cfg)
	ev := NewEdgeEvaluator()
	st := &State{
		Nodes:  make([]domain.DualState[bool], len(cfg.Nodes)),
		Blocks: []domain.DualState[domain.BlockState]{{Current: domain.ClearState}},
	}
	st.PrevEdges = ev.CalculateEdges(cfg, idx, st)

	buf := NewBuffer()
	SetBlock(cfg, idx, st, buf, 0, 0, domain.Route(0, 1))

	_, scenery := TakePending(cfg, idx, ev, st, buf)

	require.Contains(t, scenery, domain.ElementRef(1))
	require.NotContains(t, scenery, domain.ElementRef(2), "a fixed element with no dependency on the touched edge/node must not appear")
}

func TestTakePendingFullRefreshEmitsEveryElementOnce(t *testing.T) {
	cfg := elementAerodrome()
	idx := Build(cfg)
	ev := NewEdgeEvaluator()
	st := &State{
		Nodes:  make([]domain.DualState[bool], len(cfg.Nodes)),
		Blocks: []domain.DualState[domain.BlockState]{{Current: domain.ClearState}},
	}

	buf := NewBuffer()
	SetDefaultState(cfg, idx, ev, st, buf, true)

	patch, scenery := TakePending(cfg, idx, ev, st, buf)

	require.True(t, patch.ProfilePending)
	require.Len(t, scenery, len(cfg.Elements))
	for i := range cfg.Elements {
		require.Contains(t, scenery, domain.ElementRef(i))
	}
}

func TestTakePendingResetsBuffer(t *testing.T) {
	cfg := elementAerodrome()
	idx := Build(cfg)
	ev := NewEdgeEvaluator()
	st := &State{
		Nodes:  make([]domain.DualState[bool], len(cfg.Nodes)),
		Blocks: []domain.DualState[domain.BlockState]{{Current: domain.ClearState}},
	}
	st.PrevEdges = ev.CalculateEdges(cfg, idx, st)

	buf := NewBuffer()
	SetBlock(cfg, idx, st, buf, 0, 0, domain.Route(0, 1))
	TakePending(cfg, idx, ev, st, buf)

	require.Empty(t, buf.NodePatch)
	require.Empty(t, buf.BlockPatch)
	require.Empty(t, buf.PendingNodes)
	require.False(t, buf.ProfilePending)
}
