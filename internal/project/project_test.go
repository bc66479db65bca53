package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barcut/barcut/internal/model"
)

func TestSaveAndLoadProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames", "order42.json")

	p := NewProject("Order 42")
	p.Items = []model.OptimizationItem{model.NewItem("Rail", 918, 4)}
	p.StockLengths = []float64{6100, 3500}
	p.Constraints.KerfWidth = 3.0

	require.NoError(t, SaveProject(path, p))

	loaded, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "Order 42", loaded.Name)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 918.0, loaded.Items[0].Length)
	assert.Equal(t, []float64{6100, 3500}, loaded.StockLengths)
	assert.Equal(t, 3.0, loaded.Constraints.KerfWidth)
	assert.NotEmpty(t, loaded.UpdatedAt)
}

func TestLoadProject_MissingFile(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "nope.json"))

	assert.Error(t, err)
}

func TestLoadProject_RejectsUnnamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items":[]}`), 0o644))

	_, err := LoadProject(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}

func TestLoadProject_DefaultsEmptyStockLengths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"P"}`), 0o644))

	p, err := LoadProject(path)

	require.NoError(t, err)
	assert.Equal(t, []float64{model.DefaultStockLength}, p.StockLengths)
}

func TestSaveAndLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	inv := Inventory{
		Stocks: []StockEntry{
			{ID: "s1", Length: 6100, Quantity: 20},
			{ID: "s2", Length: 3500, Quantity: 10},
		},
	}

	require.NoError(t, SaveInventory(path, inv))

	loaded, err := LoadInventory(path)
	require.NoError(t, err)
	require.Len(t, loaded.Stocks, 2)
	assert.Equal(t, []float64{6100, 3500}, loaded.StockLengths())
}

func TestLoadInventory_CreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")

	inv, err := LoadInventory(path)

	require.NoError(t, err)
	require.Len(t, inv.Stocks, 1)
	assert.Equal(t, model.DefaultStockLength, inv.Stocks[0].Length)
	assert.FileExists(t, path, "the default inventory is written back")
}

func TestInventory_AddRemnants(t *testing.T) {
	inv := DefaultInventory()
	cuts := []*model.Cut{
		{ID: "c1", RemainingLength: 250, Reclaimable: true},
		{ID: "c2", RemainingLength: 40, Reclaimable: false},
	}

	inv = inv.AddRemnants(cuts, "Order 42")

	require.Len(t, inv.Remnants, 1, "only reclaimable remnants return to stock")
	assert.Equal(t, "c1", inv.Remnants[0].ID)
	assert.Equal(t, 250.0, inv.Remnants[0].Length)
	assert.Equal(t, "Order 42", inv.Remnants[0].SourcePlan)
}

func TestImportInventory_MergesAndSkipsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	imported := Inventory{
		Stocks: []StockEntry{
			{ID: "s1", Length: 6100},
			{ID: "s3", Length: 2500},
		},
		Remnants: []Remnant{{ID: "r1", Length: 300}},
	}
	require.NoError(t, SaveInventory(path, imported))

	existing := Inventory{Stocks: []StockEntry{{ID: "s1", Length: 6100, Quantity: 5}}}

	merged, err := ImportInventory(path, existing)

	require.NoError(t, err)
	require.Len(t, merged.Stocks, 2, "duplicate s1 is skipped")
	assert.Equal(t, 5, merged.Stocks[0].Quantity, "existing entry wins")
	assert.Equal(t, "s3", merged.Stocks[1].ID)
	require.Len(t, merged.Remnants, 1)
}
