package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giordipeperkamp/Megaplanner/core/roster"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Planner.TimeBudgetSeconds)
	assert.Equal(t, 1, cfg.Planner.WorkerCount)
	assert.Equal(t, int64(42), cfg.Planner.RandomSeed)
	assert.Equal(t, 0, cfg.Planner.DefaultPreferenceScore)
	assert.Equal(t, roster.PolicySkip, cfg.Planner.InfeasibleSessionPolicy)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "megaplanner.yaml")
	data := "planner:\n  time_budget_seconds: 10\n  worker_count: 4\n  infeasible_session_policy: fail\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Planner.TimeBudgetSeconds)
	assert.Equal(t, 4, cfg.Planner.WorkerCount)
	assert.Equal(t, roster.PolicyFail, cfg.Planner.InfeasibleSessionPolicy)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "megaplanner.yaml")
	data := "planner:\n  infeasible_session_policy: shrug\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "megaplanner.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	require.NoError(t, os.Setenv("MP_PLANNER__WORKER_COUNT", "8"))
	defer func() { require.NoError(t, os.Unsetenv("MP_PLANNER__WORKER_COUNT")) }()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Planner.WorkerCount)
}
