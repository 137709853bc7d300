package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/bars/internal/domain"
)

func cascadeAerodrome() *domain.Aerodrome {
	return &domain.Aerodrome{
		Nodes: []domain.Node{
			{ID: "N1"}, // 0: Router
			{ID: "T"},  // 1: Fixed-Off, transparent
			{ID: "N2"}, // 2: Router
		},
		Blocks: []domain.Block{
			{ID: "B1", Nodes: []domain.NodeRef{0, 1}},
			{ID: "B2", Nodes: []domain.NodeRef{1, 2}},
		},
		Profiles: []domain.Profile{
			{
				ID: "default",
				Nodes: []domain.NodeCondition{
					{Kind: domain.NodeRouter},
					{Kind: domain.NodeFixed, FixedState: domain.NodeOff},
					{Kind: domain.NodeRouter},
				},
				Blocks: []domain.BlockCondition{{Reset: domain.NoReset}, {Reset: domain.NoReset}},
			},
		},
	}
}

func newState(cfg *domain.Aerodrome) *State {
	return &State{
		Nodes:  make([]domain.DualState[bool], len(cfg.Nodes)),
		Blocks: make([]domain.DualState[domain.BlockState], len(cfg.Blocks)),
	}
}

func TestSetBlockCascadesThroughTransparentNode(t *testing.T) {
	cfg := cascadeAerodrome()
	idx := Build(cfg)
	st := newState(cfg)
	buf := NewBuffer()

	SetBlock(cfg, idx, st, buf, 0, 0, domain.Route(0, 1))

	require.True(t, st.Blocks[0].Effective().Equal(domain.Route(0, 1)))
	require.True(t, st.Blocks[1].Effective().Equal(domain.Route(0, 1)))
}

func TestSetBlockIdempotent(t *testing.T) {
	cfg := cascadeAerodrome()
	idx := Build(cfg)

	st1 := newState(cfg)
	buf1 := NewBuffer()
	SetBlock(cfg, idx, st1, buf1, 0, 0, domain.RelaxState)

	st2 := newState(cfg)
	buf2 := NewBuffer()
	SetBlock(cfg, idx, st2, buf2, 0, 0, domain.RelaxState)
	SetBlock(cfg, idx, st2, buf2, 0, 0, domain.RelaxState)

	require.Equal(t, st1.Blocks, st2.Blocks)
}

func TestSetNodeArmsAndTickFiresTimer(t *testing.T) {
	cfg := &domain.Aerodrome{
		Nodes: []domain.Node{{ID: "N1"}},
		Profiles: []domain.Profile{
			{
				ID: "default",
				Nodes: []domain.NodeCondition{
					{Kind: domain.NodeDirect, Reset: domain.TimeSecs(5)},
				},
			},
		},
	}
	idx := Build(cfg)
	st := newState(cfg)
	buf := NewBuffer()

	SetNode(cfg, st, buf, 0, 0, false)
	require.False(t, st.Nodes[0].Effective())
	require.Len(t, st.NodeTimers, 1)
	require.Equal(t, int64(5), st.NodeTimers[0].Deadline)

	Tick(cfg, idx, st, buf, 4)
	require.False(t, st.Nodes[0].Effective(), "timer must not fire before its deadline")

	Tick(cfg, idx, st, buf, 5)
	require.True(t, st.Nodes[0].Effective())
	require.Empty(t, st.NodeTimers)
}
