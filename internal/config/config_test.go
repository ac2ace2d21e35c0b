package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"settlement-pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Datasets/Original_Demand.csv", c.Inputs.Demand)
	assert.Equal(t, "Datasets/merged_generation_demand.csv", c.Outputs.Merged)
	assert.Equal(t, model.NewDate(2016, time.January, 6), c.Window.Start)
	assert.Equal(t, model.NewDate(2024, time.April, 1), c.Window.End)
	assert.Empty(t, c.Outputs.MergedXLSX)
}

func TestLoad_OverlaysAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "raw", "demand.csv"), "SETTLEMENT_DATE,SETTLEMENT_PERIOD,TSD\n")
	cfgPath := filepath.Join(dir, "pipeline.yaml")
	writeFile(t, cfgPath, `
inputs:
  demand: raw/demand.csv
  generation: /abs/generation.csv
outputs:
  merged: out/merged.csv
  merged_xlsx: out/merged.xlsx
window:
  start: 2020-01-01
  end: "2021-01-01"
`)

	c, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "raw", "demand.csv"), c.Inputs.Demand)
	assert.Equal(t, "/abs/generation.csv", c.Inputs.Generation)
	// not present next to the config: left relative to the working directory
	assert.Equal(t, "Datasets/Original_Cost.csv", c.Inputs.Cost)
	assert.Equal(t, filepath.Join(dir, "out", "merged.csv"), c.Outputs.Merged)
	assert.Equal(t, filepath.Join(dir, "out", "merged.xlsx"), c.Outputs.MergedXLSX)
	assert.Equal(t, filepath.Join(dir, "Datasets", "preprocessed_cost.csv"), c.Outputs.Cost)
	assert.Equal(t, model.NewDate(2020, time.January, 1), c.Window.Start)
	assert.Equal(t, model.NewDate(2021, time.January, 1), c.Window.End)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty required path", "inputs:\n  cost: \"\"\n"},
		{"inverted window", "window:\n  start: 2024-01-01\n  end: 2023-01-01\n"},
		{"equal window", "window:\n  start: 2024-01-01\n  end: 2024-01-01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			writeFile(t, path, tt.yaml)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidConfig), err.Error())
		})
	}
}

func TestLoad_BadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "window:\n  start: soon\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
