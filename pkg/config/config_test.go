package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsRingVariant(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "ring", cfg.Variant)
	assert.EqualValues(t, defaultRingCapacity, cfg.NormalizedRingCapacity())
	assert.Equal(t, 5*time.Second, cfg.Duration())
}

func TestLoadFillsMissingVariantFromDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_producers: 12\ntest_duration: 30s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ring", cfg.Variant)
	assert.Equal(t, 12, cfg.NumProducers)
	assert.Equal(t, 30*time.Second, cfg.Duration())
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDurationFallsBackOnMalformedValue(t *testing.T) {
	cfg := Config{TestDuration: "not-a-duration"}
	assert.Equal(t, 5*time.Second, cfg.Duration())
}

func TestNormalizedRingCapacityRoundsUp(t *testing.T) {
	cases := map[uint64]uint64{
		0:    defaultRingCapacity,
		1:    2,
		3:    4,
		1023: 1024,
		1024: 1024,
	}
	for in, want := range cases {
		cfg := Config{RingCapacity: in}
		assert.EqualValues(t, want, cfg.NormalizedRingCapacity(), "input %d", in)
	}
}
