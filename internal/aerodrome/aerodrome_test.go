package aerodrome

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/bars/internal/domain"
	"github.com/smilemakc/bars/internal/ipc"
)

func directAerodrome() *domain.Aerodrome {
	return &domain.Aerodrome{
		ICAO: "TEST",
		Nodes: []domain.Node{
			{ID: "STOPBAR"},
		},
		Elements: []domain.Element{
			{ID: "stopbar-light", Condition: domain.ElementCondition{Kind: domain.ElementNode, Node: 0}},
		},
		Profiles: []domain.Profile{
			{
				ID: "default",
				Nodes: []domain.NodeCondition{
					{Kind: domain.NodeDirect, Reset: domain.TimeSecs(10)},
				},
				Presets: []domain.Preset{
					{Name: "all-off", Nodes: []domain.PresetNode{{Node: 0, State: false}}},
				},
			},
		},
	}
}

// S1: a single stopbar toggled off, then back on, reflects immediately
// in the node's effective state.
func TestSingleStopbarToggle(t *testing.T) {
	cfg := directAerodrome()
	a, err := New("TEST", cfg, 0)
	require.NoError(t, err)

	require.NoError(t, a.SetNode("STOPBAR", false, 0))
	require.False(t, a.State.Nodes[0].Effective())

	require.NoError(t, a.SetNode("STOPBAR", true, 0))
	require.True(t, a.State.Nodes[0].Effective())
}

// S2: a node with a reset timer set to off returns to on by itself once
// enough ticks have elapsed, with no further operator input.
func TestAutoResetViaTick(t *testing.T) {
	cfg := directAerodrome()
	a, err := New("TEST", cfg, 0)
	require.NoError(t, err)

	require.NoError(t, a.SetNode("STOPBAR", false, 0))
	require.False(t, a.State.Nodes[0].Effective())

	a.Tick(9)
	require.False(t, a.State.Nodes[0].Effective())

	a.Tick(10)
	require.True(t, a.State.Nodes[0].Effective())
}

// S3: applying a preset replaces the pending patch buffer rather than
// merging into whatever was pending before.
func TestApplyPresetReplacesPendingBuffer(t *testing.T) {
	cfg := directAerodrome()
	cfg.Nodes = append(cfg.Nodes, domain.Node{ID: "OTHER"})
	cfg.Profiles[0].Nodes = append(cfg.Profiles[0].Nodes, domain.NodeCondition{Kind: domain.NodeDirect, Reset: domain.NoReset})

	a, err := New("TEST", cfg, 0)
	require.NoError(t, err)

	require.NoError(t, a.SetNode("OTHER", false, 0))
	require.Contains(t, a.Buf.NodePatch, domain.NodeRef(1))

	require.NoError(t, a.ApplyPreset("all-off", 0))
	require.NotContains(t, a.Buf.NodePatch, domain.NodeRef(1), "apply_preset must discard whatever was pending, not merge into it")
	require.Contains(t, a.Buf.NodePatch, domain.NodeRef(0))
	require.False(t, a.State.Nodes[0].Effective())
}

// S6: switching to another profile triggers a full refresh that emits
// exactly one scenery entry per element.
func TestSetProfileTriggersFullRefresh(t *testing.T) {
	cfg := directAerodrome()
	cfg.Profiles = append(cfg.Profiles, domain.Profile{
		ID: "night",
		Nodes: []domain.NodeCondition{
			{Kind: domain.NodeDirect, Reset: domain.NoReset},
		},
	})

	a, err := New("TEST", cfg, 0)
	require.NoError(t, err)

	_, _ = a.Tick(0) // drain the initial full refresh from New

	require.NoError(t, a.SetProfile("night", 0))
	_, scenery := a.Tick(0)

	require.Len(t, scenery, len(cfg.Elements))
}

func TestApplyServerPatchContradictsPendingPrediction(t *testing.T) {
	cfg := directAerodrome()
	a, err := New("TEST", cfg, 0)
	require.NoError(t, err)

	require.NoError(t, a.SetNode("STOPBAR", false, 0))

	warnings := a.ApplyServerPatch(ipc.Patch{Nodes: map[string]bool{"STOPBAR": true}})
	require.Empty(t, warnings)
	require.False(t, a.State.Nodes[0].Effective(), "a contradicted prediction stays stale until the operator or a timer clears it")
	require.NotNil(t, a.State.Nodes[0].Pending)
	require.False(t, *a.State.Nodes[0].Pending)
}

func TestApplyServerPatchWarnsOnUnknownID(t *testing.T) {
	cfg := directAerodrome()
	a, err := New("TEST", cfg, 0)
	require.NoError(t, err)

	warnings := a.ApplyServerPatch(ipc.Patch{Nodes: map[string]bool{"NOPE": true}})
	require.Len(t, warnings, 1)
}
