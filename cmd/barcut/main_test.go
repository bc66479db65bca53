package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barcut/barcut/internal/config"
	"github.com/barcut/barcut/internal/model"
	"github.com/barcut/barcut/internal/project"
)

func TestResolveStockLengths_FlagWins(t *testing.T) {
	cfg := config.Default()
	inv := project.Inventory{Stocks: []project.StockEntry{{ID: "a", Length: 3500}}}

	lengths, err := resolveStockLengths(cfg, project.NewProject("t"), inv, "2500, 6100")

	require.NoError(t, err)
	assert.Equal(t, []float64{2500, 6100}, lengths)
}

func TestResolveStockLengths_FallsBackToInventory(t *testing.T) {
	cfg := config.Default()
	proj := project.NewProject("t")
	proj.StockLengths = nil
	inv := project.Inventory{Stocks: []project.StockEntry{
		{ID: "a", Length: 3500, Quantity: 10},
		{ID: "b", Length: 6100},
		{ID: "c", Length: 3500, ProfileType: "40x40"},
	}}

	lengths, err := resolveStockLengths(cfg, proj, inv, "")

	require.NoError(t, err)
	assert.Equal(t, []float64{3500, 6100}, lengths, "duplicate lengths collapse")
}

func TestResolveStockLengths_EmptyInventoryUsesConfigDefault(t *testing.T) {
	cfg := config.Default()
	proj := project.NewProject("t")
	proj.StockLengths = nil

	lengths, err := resolveStockLengths(cfg, proj, project.Inventory{}, "")

	require.NoError(t, err)
	assert.Equal(t, []float64{cfg.DefaultStockLength}, lengths)
}

func TestResolveStockLengths_RejectsMalformedFlag(t *testing.T) {
	_, err := resolveStockLengths(config.Default(), project.NewProject("t"), project.Inventory{}, "6100,tall")

	assert.Error(t, err)
}

func TestBankRemnants_StoresReclaimableOffcuts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")

	keeper := model.NewCut(6100)
	keeper.RemainingLength = 300
	keeper.Reclaimable = true
	dust := model.NewCut(6100)
	dust.RemainingLength = 4

	banked, err := bankRemnants(path, project.DefaultInventory(), []*model.Cut{keeper, dust}, "job-42")

	require.NoError(t, err)
	assert.Equal(t, 1, banked, "only reclaimable offcuts are banked")

	loaded, err := project.LoadInventory(path)
	require.NoError(t, err)
	require.Len(t, loaded.Remnants, 1)
	assert.Equal(t, 300.0, loaded.Remnants[0].Length)
	assert.Equal(t, "job-42", loaded.Remnants[0].SourcePlan)
}

func TestPlanName_PrefersProjectOverInput(t *testing.T) {
	opts := runOptions{projectFile: "/tmp/pergola.json", inputFile: "cuts.csv"}
	assert.Equal(t, "pergola", planName(opts))

	assert.Equal(t, "cuts.csv", planName(runOptions{inputFile: "cuts.csv"}))
	assert.Equal(t, "ad-hoc", planName(runOptions{}))
}
