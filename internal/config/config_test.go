package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.True(t, s.DarkMode)
	assert.False(t, s.SeamlessMode)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seamless_mode": true}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.SeamlessMode)
	assert.True(t, s.DarkMode, "absent keys keep their defaults")
	assert.False(t, s.HighResolution)
}

func TestLoadParseErrorReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	s, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	want := Settings{
		SeamlessMode:   true,
		PreviewRepeat:  true,
		HighResolution: true,
		InvertG:        true,
	}
	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// On-disk keys are the stable names other tools read.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"seamless_mode"`)
	assert.Contains(t, string(raw), `"high_resolution_mode"`)
	assert.Contains(t, string(raw), `"invert_g_channel"`)
	assert.Contains(t, string(raw), `"is_dark_mode"`)
}

func TestDocumentSize(t *testing.T) {
	assert.Equal(t, StandardSize, Settings{}.DocumentSize(0))
	assert.Equal(t, HighResSize, Settings{HighResolution: true}.DocumentSize(0))
	assert.Equal(t, 512, Settings{HighResolution: true}.DocumentSize(512))
}
