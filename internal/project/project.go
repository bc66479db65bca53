// Package project persists cutting projects and the stock inventory as
// JSON files under the user's configuration directory.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/barcut/barcut/internal/model"
)

// Project bundles everything needed to reproduce an optimization run:
// the demand list, the available stock lengths, the saw constraints and,
// once solved, the resulting plan.
type Project struct {
	Name         string                   `json:"name"`
	CreatedAt    string                   `json:"created_at"`
	UpdatedAt    string                   `json:"updated_at"`
	Items        []model.OptimizationItem `json:"items"`
	StockLengths []float64                `json:"stock_lengths"`
	Constraints  model.Constraints        `json:"constraints"`
	Result       *model.OptimizeResult    `json:"result,omitempty"`
}

// NewProject creates a named project with default constraints.
func NewProject(name string) Project {
	now := time.Now().UTC().Format(time.RFC3339)
	return Project{
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
		StockLengths: []float64{model.DefaultStockLength},
		Constraints:  model.DefaultConstraints(),
	}
}

// DefaultConfigDir returns the default directory for application data.
// On all platforms this is ~/.barcut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".barcut")
}

// SaveProject persists a project to the given path as JSON, bumping its
// UpdatedAt stamp. It creates any missing parent directories.
func SaveProject(path string, p Project) error {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadProject reads a project from the given path.
func LoadProject(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, err
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.Name == "" {
		return Project{}, fmt.Errorf("invalid project file: missing name field")
	}
	if len(p.StockLengths) == 0 {
		p.StockLengths = []float64{model.DefaultStockLength}
	}
	return p, nil
}
