package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Engine.TopK)
	assert.InDelta(t, 0.75, cfg.Engine.ScoreThreshold, 1e-9)
	assert.True(t, cfg.Engine.AdministrativeFallback)
	assert.False(t, cfg.Engine.UnscopedSearch)
	assert.Greater(t, cfg.Engine.Workers, 0)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matcher.yaml")
	content := `
engine:
  top_k: 20
  score_threshold: 0.6
  unscoped_search: true
  weights:
    coverage: 0.5
    string_sim: 0.5
input:
  poi_file: data/poi.csv
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Engine.TopK)
	assert.InDelta(t, 0.6, cfg.Engine.ScoreThreshold, 1e-9)
	assert.True(t, cfg.Engine.UnscopedSearch)
	assert.InDelta(t, 0.5, cfg.Engine.Weights["coverage"], 1e-9)
	assert.Equal(t, "data/poi.csv", cfg.Input.POIFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	// 未覆盖的项保持默认
	assert.Equal(t, 256, cfg.Engine.QueueDepth)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name: "top_k 非正",
			content: `
engine:
  top_k: 0
`,
		},
		{
			name: "阈值越界",
			content: `
engine:
  score_threshold: 1.5
`,
		},
		{
			name: "负权重",
			content: `
engine:
  weights:
    coverage: -1
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "matcher.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
