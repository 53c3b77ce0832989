package symbols

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "THYAO", Normalize(" thyao.is "))
	assert.Equal(t, "AKBNK", Normalize("\ufeffAKBNK"))
	assert.Equal(t, "", Normalize("   "))
}

func TestParse(t *testing.T) {
	seen := map[string]struct{}{}
	require.NoError(t, Parse(strings.NewReader("THYAO.IS,Turk Hava Yollari\n\nakbnk\n,empty\nTHYAO\n"), seen))
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, "THYAO")
	assert.Contains(t, seen, "AKBNK")
}

func TestLoadGlobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lists", "bist"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hisseler.csv"), []byte("SISE\nGARAN.IS\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lists", "bist", "banks.csv"), []byte("garan\nakbnk\n"), 0o644))

	got, err := Load(filepath.Join(dir, "hisseler.csv"), filepath.Join(dir, "lists", "**", "*.csv"), filepath.Join(dir, "missing.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AKBNK", "GARAN", "SISE"}, got)
}

func TestLoadNothing(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "hisseler.csv"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
