package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/barcut/barcut/internal/model"
)

// StockEntry is one stock length available in the shop, with how many bars
// are on hand. A zero Quantity means unlimited supply.
type StockEntry struct {
	ID          string  `json:"id"`
	Length      float64 `json:"length"`
	Quantity    int     `json:"quantity"`
	ProfileType string  `json:"profile_type,omitempty"`
}

// Remnant is a reclaimable offcut returned to stock by an earlier plan.
type Remnant struct {
	ID          string  `json:"id"`
	Length      float64 `json:"length"`
	ProfileType string  `json:"profile_type,omitempty"`
	SourcePlan  string  `json:"source_plan,omitempty"`
}

// Inventory holds the stock bars and reclaimed remnants available for
// cutting.
type Inventory struct {
	Stocks   []StockEntry `json:"stocks"`
	Remnants []Remnant    `json:"remnants"`
}

// DefaultInventory returns an inventory with the standard bar length in
// unlimited supply.
func DefaultInventory() Inventory {
	return Inventory{
		Stocks: []StockEntry{
			{ID: "default", Length: model.DefaultStockLength, Quantity: 0},
		},
	}
}

// StockLengths returns the distinct bar lengths in the inventory.
func (inv Inventory) StockLengths() []float64 {
	seen := make(map[float64]bool)
	var lengths []float64
	for _, s := range inv.Stocks {
		if !seen[s.Length] {
			seen[s.Length] = true
			lengths = append(lengths, s.Length)
		}
	}
	return lengths
}

// AddRemnants returns the inventory with the reclaimable remnants of a
// finished plan added to the remnant pool.
func (inv Inventory) AddRemnants(cuts []*model.Cut, planName string) Inventory {
	for _, cut := range cuts {
		if !cut.Reclaimable {
			continue
		}
		inv.Remnants = append(inv.Remnants, Remnant{
			ID:         cut.ID,
			Length:     cut.RemainingLength,
			SourcePlan: planName,
		})
	}
	return inv
}

// DefaultInventoryPath returns the default file path for the inventory,
// located at ~/.barcut/inventory.json.
func DefaultInventoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".barcut", "inventory.json"), nil
}

// SaveInventory writes the inventory to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv Inventory) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadInventory reads the inventory from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := DefaultInventory()
			if saveErr := SaveInventory(path, inv); saveErr != nil {
				return inv, saveErr
			}
			return inv, nil
		}
		return Inventory{}, err
	}
	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}

// ImportInventory imports an inventory from a user-specified JSON file,
// merging it with the existing inventory. Duplicate IDs are skipped.
func ImportInventory(path string, existing Inventory) (Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	stockIDs := make(map[string]bool, len(existing.Stocks))
	for _, s := range existing.Stocks {
		stockIDs[s.ID] = true
	}
	remnantIDs := make(map[string]bool, len(existing.Remnants))
	for _, r := range existing.Remnants {
		remnantIDs[r.ID] = true
	}

	for _, s := range imported.Stocks {
		if !stockIDs[s.ID] {
			existing.Stocks = append(existing.Stocks, s)
			stockIDs[s.ID] = true
		}
	}
	for _, r := range imported.Remnants {
		if !remnantIDs[r.ID] {
			existing.Remnants = append(existing.Remnants, r)
			remnantIDs[r.ID] = true
		}
	}

	return existing, nil
}
