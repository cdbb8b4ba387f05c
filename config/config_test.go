package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 8, c.DefaultTopK)
	assert.Equal(t, "the clothing item is", c.CaptionPrompt)
	assert.Empty(t, c.StopAdjectives)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
port = "9000"
caption_prompt = ""
stop_adjectives = ["nice"]
default_top_k = 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "", c.CaptionPrompt)
	assert.Equal(t, []string{"nice"}, c.StopAdjectives)
	assert.Equal(t, 5, c.DefaultTopK)
	// untouched keys keep their defaults
	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, Default().StopNouns, c.StopNouns)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = = 1"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLOTHTAGGER_PORT", "7000")
	t.Setenv("CLOTHTAGGER_DEFAULT_TOP_K", "3")
	t.Setenv("CLOTHTAGGER_STOP_NOUNS", " shirt , ,hat")
	t.Setenv("CLOTHTAGGER_CAPTION_TIMEOUT", "not-a-number")
	t.Setenv("CLOTHTAGGER_CAPTION_MAX_NEW_TOKENS", "40")
	t.Setenv("CLOTHTAGGER_CAPTION_NO_REPEAT_NGRAM_SIZE", "3")
	t.Setenv("CLOTHTAGGER_OUTPUT_MAX_WIDTH", "800")
	t.Setenv("CLOTHTAGGER_CLEANUP_SPEC", "@every 1h")

	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "7000", c.Port)
	assert.Equal(t, 3, c.DefaultTopK)
	assert.Equal(t, []string{"shirt", "hat"}, c.StopNouns)
	assert.Equal(t, 60, c.CaptionTimeout)
	assert.Equal(t, 40, c.CaptionMaxNewTokens)
	assert.Equal(t, 3, c.CaptionNoRepeatNgramSize)
	assert.Equal(t, 800, c.OutputMaxWidth)
	assert.Equal(t, "@every 1h", c.CleanupSpec)
}
