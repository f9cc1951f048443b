package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformline/internal/orchestrator"
)

func TestMemoryStoreCopiesPlans(t *testing.T) {
	s := orchestrator.NewMemoryStore()
	ctx := context.Background()
	p := orchestrator.Plan{ID: "a", SuccessCriteria: map[string]float64{"roi_improvement": 0.5}}
	require.NoError(t, s.Create(ctx, p))

	p.SuccessCriteria["roi_improvement"] = 0.9
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.SuccessCriteria["roi_improvement"])

	got.RiskFactors = append(got.RiskFactors, "x")
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, again.RiskFactors)
}

func TestMemoryStoreUpdateUnknown(t *testing.T) {
	s := orchestrator.NewMemoryStore()
	err := s.Update(context.Background(), orchestrator.Plan{ID: "nope"})
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := orchestrator.NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Create(ctx, orchestrator.Plan{ID: "old", CreatedAt: base}))
	require.NoError(t, s.Create(ctx, orchestrator.Plan{ID: "new", CreatedAt: base.Add(time.Hour)}))

	plans, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "new", plans[0].ID)
	assert.Equal(t, "old", plans[1].ID)
}
