package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/bars/internal/domain"
)

func nodeRefPtr(n domain.NodeRef) *domain.NodeRef { return &n }

func TestValidateParentTreeAcceptsOneLevel(t *testing.T) {
	cfg := &domain.Aerodrome{
		Nodes: []domain.Node{
			{ID: "PARENT"},
			{ID: "CHILD", Parent: nodeRefPtr(0)},
		},
	}
	require.NoError(t, ValidateParentTree(cfg))
}

func TestValidateParentTreeRejectsTwoLevels(t *testing.T) {
	cfg := &domain.Aerodrome{
		Nodes: []domain.Node{
			{ID: "GRANDPARENT"},
			{ID: "PARENT", Parent: nodeRefPtr(0)},
			{ID: "CHILD", Parent: nodeRefPtr(1)},
		},
	}
	require.Error(t, ValidateParentTree(cfg))
}

func TestValidateParentTreeRejectsSelfParent(t *testing.T) {
	cfg := &domain.Aerodrome{
		Nodes: []domain.Node{
			{ID: "N0", Parent: nodeRefPtr(0)},
		},
	}
	require.Error(t, ValidateParentTree(cfg))
}

func TestValidateParentTreeRejectsCycle(t *testing.T) {
	cfg := &domain.Aerodrome{
		Nodes: []domain.Node{
			{ID: "N0", Parent: nodeRefPtr(1)},
			{ID: "N1", Parent: nodeRefPtr(0)},
		},
	}
	require.Error(t, ValidateParentTree(cfg))
}

func TestValidateParentTreeRejectsOutOfRangeParent(t *testing.T) {
	cfg := &domain.Aerodrome{
		Nodes: []domain.Node{
			{ID: "N0", Parent: nodeRefPtr(5)},
		},
	}
	require.Error(t, ValidateParentTree(cfg))
}
