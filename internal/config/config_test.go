package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoadMalformedFileIsError(t *testing.T) {
	path := writeFile(t, "frame_capacity: [this is not an int}")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadFillsUnsetFieldsWithDefaults(t *testing.T) {
	path := writeFile(t, "frame_capacity: 128\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.FrameCapacity)
	assert.Equal(t, config.DefaultFrameSlots, cfg.FrameSlots)
	assert.Equal(t, config.DefaultGCGrowFactor, cfg.GCGrowFactor)
}

func TestLoadHonorsAllFields(t *testing.T) {
	path := writeFile(t, "frame_capacity: 32\nframe_slots: 64\ngc_grow_factor: 4\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.FrameCapacity)
	assert.Equal(t, 64, cfg.FrameSlots)
	assert.Equal(t, 4, cfg.GCGrowFactor)
	assert.Equal(t, 32*64, cfg.StackSlots())
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wisp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
