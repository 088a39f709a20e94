package main

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/calcstats/internal/config"
	"github.com/sanspareilsmyn/calcstats/internal/stats"
)

func TestJSONSafe(t *testing.T) {
	res := stats.Result{
		stats.Mean:    math.NaN(),
		stats.Product: math.Inf(1),
		stats.Min:     math.Inf(-1),
		stats.Sum:     3.5,
		stats.Count:   int64(2),
	}

	assert.Equal(t, map[stats.Stat]any{
		stats.Mean:    nil,
		stats.Product: nil,
		stats.Min:     nil,
		stats.Sum:     3.5,
		stats.Count:   int64(2),
	}, jsonSafe(res))
}

func TestWriteResultNonFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	res := stats.Result{
		stats.Sum:     328350.0,
		stats.Product: math.Inf(1),
		stats.Median:  math.NaN(),
	}

	require.NoError(t, writeResult(config.OutputConfig{Path: path, Pretty: true}, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{
		"sum":     328350.0,
		"product": nil,
		"median":  nil,
	}, got)
}
