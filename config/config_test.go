package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/config"
)

func TestLoadDefaults(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 1990, c.Calendar.YearStart)
	assert.Equal(t, 500, c.Solver.MaxIter)
	assert.Equal(t, 100, c.Solver.NoImprove)
	assert.InDelta(t, 2.2648, c.Curve.NSSLambda1, 1e-12)
	assert.Equal(t, "us_trading", c.Tracker.BondFutureCalendars["ty"])
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quant.yaml")
	body := []byte("calendar:\n  year_start: 2000\n  year_end: 2060\nsolver:\n  max_iter: 50\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("QUANT_SOLVER_NO_IMPROVE", "7")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, c.Calendar.YearStart)
	assert.Equal(t, 2060, c.Calendar.YearEnd)
	assert.Equal(t, 50, c.Solver.MaxIter)
	assert.Equal(t, 7, c.Solver.NoImprove)
}

func TestLoadRejectsBadRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quant.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar:\n  year_start: 2050\n  year_end: 2000\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestSetGet(t *testing.T) {
	orig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(orig) })

	c := orig
	c.Solver.Seed = 99
	config.SetConfig(c)
	assert.Equal(t, int64(99), config.GetConfig().Solver.Seed)
}
