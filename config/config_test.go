package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFreqSuffixes(t *testing.T) {
	cases := map[string]int{
		"100M":  100_000_000,
		"950K":  950_000,
		"88.5M": 88_500_000,
		"1234":  1234,
	}
	for in, want := range cases {
		got, err := ParseFreq(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestLoadMissingFileReturnsErrNoConfigFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	assert.ErrorIs(t, err, ErrNoConfigFound)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.ini")
	contents := "[params]\nfreq = 101.1M\ndemod_mode = AM\nsquelch = 5\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "101.1M", cfg.Params.Freq)
	assert.Equal(t, "AM", cfg.Params.DemodMode)
	assert.Equal(t, 5, cfg.Params.Squelch)

	hz, err := cfg.FrequencyHz()
	require.NoError(t, err)
	assert.Equal(t, 101_100_000, hz)
}

func TestGainDBAutoWhenUnset(t *testing.T) {
	cfg := Defaults()
	_, ok := cfg.GainDB()
	assert.False(t, ok)
}
