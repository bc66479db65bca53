package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barcut/barcut/internal/engine"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, engine.DefaultMinUtilization, cfg.MinUtilization)
	assert.Equal(t, engine.DefaultFragmentPenalty, cfg.FragmentPenalty)
	assert.Equal(t, engine.DefaultLookaheadDepth, cfg.LookaheadDepth)
	assert.Equal(t, 5.0, cfg.KerfWidth)
	assert.Equal(t, 6100.0, cfg.DefaultStockLength)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "kerf_width: 3.2\nmin_utilization: 0.5\nlookahead_depth: 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "barcut.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 3.2, cfg.KerfWidth)
	assert.Equal(t, 0.5, cfg.MinUtilization)
	assert.Equal(t, 5, cfg.LookaheadDepth)
	assert.Equal(t, engine.DefaultFragmentPenalty, cfg.FragmentPenalty, "unset keys keep their defaults")
}

func TestLoad_ZeroMinUtilizationDisablesFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "barcut.yaml"), []byte("min_utilization: 0\n"), 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.MinUtilization)
	assert.Equal(t, 0.0, cfg.EngineParams().MinUtilization,
		"zero passes through so pattern generation skips the utilization filter")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"utilization out of range", "min_utilization: 1.5\n"},
		{"zero fragment penalty", "fragment_penalty: 0\n"},
		{"negative lookahead", "lookahead_depth: -1\n"},
		{"zero stock length", "default_stock_length: 0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "barcut.yaml"), []byte(tc.content), 0o644))

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestConfig_EngineParams(t *testing.T) {
	cfg := Default()
	cfg.MaxSearchStates = 500
	cfg.OverProductionTolerance = 1

	params := cfg.EngineParams()

	assert.Equal(t, cfg.MinUtilization, params.MinUtilization)
	assert.Equal(t, 500, params.Search.MaxStates)
	assert.Equal(t, 1, params.Search.OverProductionTolerance)
	assert.Equal(t, cfg.FragmentPenalty, params.Placer.FragmentPenalty)
	assert.Equal(t, cfg.GreedyOverageTolerance, params.GreedyOverageTolerance)
}

func TestConfig_Constraints(t *testing.T) {
	cfg := Default()

	c := cfg.Constraints()

	assert.Equal(t, 5.0, c.KerfWidth)
	assert.Equal(t, 10.0, c.StartSafety)
	assert.Equal(t, 10.0, c.EndSafety)
	assert.Equal(t, 100.0, c.MinScrapLength)
}
