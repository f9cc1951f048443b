package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformline/internal/app"
	"transformline/internal/orchestrator"
)

func TestSetEnvValueKeepsOtherEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRANSFORMLINE_JWT_SECRET=s3cret\n"), 0o644))

	require.NoError(t, app.SetEnvValue(dir, app.PlanEnvKey, "p1"))
	require.NoError(t, app.SetEnvValue(dir, app.PlanEnvKey, "p2"))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TRANSFORMLINE_JWT_SECRET": "s3cret", app.PlanEnvKey: "p2"}, env)
}

func TestLoadEnvMissingFile(t *testing.T) {
	assert.NoError(t, app.LoadEnv(t.TempDir()))
}

func TestResolvePlan(t *testing.T) {
	ctx := context.Background()
	store := orchestrator.NewMemoryStore()
	t.Setenv(app.PlanEnvKey, "")

	_, err := app.ResolvePlan(ctx, "", store)
	assert.Error(t, err)

	id, err := app.ResolvePlan(ctx, " explicit ", store)
	require.NoError(t, err)
	assert.Equal(t, "explicit", id)

	now := time.Now()
	require.NoError(t, store.Create(ctx, orchestrator.Plan{ID: "only", CreatedAt: now}))
	id, err = app.ResolvePlan(ctx, "", store)
	require.NoError(t, err)
	assert.Equal(t, "only", id)

	require.NoError(t, store.Create(ctx, orchestrator.Plan{ID: "second", CreatedAt: now}))
	_, err = app.ResolvePlan(ctx, "", store)
	assert.Error(t, err)

	t.Setenv(app.PlanEnvKey, "second")
	id, err = app.ResolvePlan(ctx, "", store)
	require.NoError(t, err)
	assert.Equal(t, "second", id)
}

func TestOpenEngineUsesDefaults(t *testing.T) {
	ctx := context.Background()
	e, err := app.OpenEngine(ctx, t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer e.DB.Close()

	plans, err := e.ListPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.Equal(t, 0.10, e.Config.Finance.DiscountRate)
}
