package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPassesValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
}

func TestValidateRejectsSmallWindow(t *testing.T) {
	c := Default()
	c.WindowSize = 1
	assert.Error(t, c.Validate())
}

func TestValidateRejectsZeroThreshold(t *testing.T) {
	c := Default()
	c.CompressionThreshold = 0
	assert.Error(t, c.Validate())
}

func TestDurabilityTextRoundTrip(t *testing.T) {
	for _, d := range []Durability{MaxDurability, SpeedTradeoff, MaxWriteSpeed} {
		text, err := d.MarshalText()
		require.NoError(t, err)

		var got Durability
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, d, got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
window-size = 5000000000
compression-threshold = 2000
durability = "SPEED_TRADEOFF"
enable-huge-tlb = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5000000000, c.WindowSize)
	assert.EqualValues(t, 2000, c.CompressionThreshold)
	assert.Equal(t, SpeedTradeoff, c.Durability)
	assert.True(t, c.EnableHugeTLB)
	assert.EqualValues(t, DefaultMaxCacheSize, c.MaxCacheSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	assert.Error(t, err)
}
