package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "nal", cfg.Engine)
	assert.Equal(t, 1000, cfg.Reasoner.ConceptBagSize)
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("NARSVM_DB", "/tmp/other.db")
	t.Setenv("NARSVM_ADDR", "0.0.0.0:9000")
	t.Setenv("NARSVM_NATS_URL", "nats://bus:4222")

	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
	assert.Equal(t, "0.0.0.0:9000", cfg.Remote.Addr)
	assert.Equal(t, "nats://bus:4222", cfg.Bus.URL)
}

func TestValidate_ReportsEachProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = "prolog"
	cfg.Runtime.Volume = 101
	cfg.Reasoner.TaskLinkBagSize = 0
	cfg.Bus = BusConfig{URL: "nats://x", Subject: ""}
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"engine must be one of", "runtime.volume", "reasoner: task_link_bag_size", "bus.subject", "logging.level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narsvm.yaml")
	yaml := `
engine: echo
reasoner:
  novel_task_bag_size: 2
  seed: 7
runtime:
  volume: 30
  check_invariants: true
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "echo", cfg.Engine)
	assert.Equal(t, 2, cfg.Reasoner.NovelTaskBagSize)
	assert.Equal(t, uint64(7), cfg.Reasoner.Seed)
	assert.Equal(t, 100, cfg.Reasoner.ConceptBagLevels)
	assert.True(t, cfg.Runtime.CheckInvariants)
	assert.Equal(t, 30, cfg.Runtime.Volume)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "narsvm.yaml")
	cfg := DefaultConfig()
	cfg.Engine = "void"
	cfg.Reasoner.MaxReasonedTermLink = 5
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
