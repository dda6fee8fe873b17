package region

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Auckland Region  ", "Auckland Region"},
		{"Hawke’s Bay Region", "Hawke's Bay Region"},
		{"Hawke`s Bay Region", "Hawke's Bay Region"},
		{"Bay  of   Plenty Region", "Bay of Plenty Region"},
		{"\u00a0Tasman Region", "Tasman Region"}, // leading no-break space
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestDefaultAliases_UndoBucketMangling(t *testing.T) {
	aliases := DefaultAliases()

	assert.Equal(t, "Hawke's Bay Region", aliases.Apply("Hawketos Bay Region"))
	assert.Equal(t, "Manawatu-Wanganui Region", aliases.Apply("ManawatutoWanganui Region"))
}

func TestAliasTable_ApplyPassesThroughUnknownNames(t *testing.T) {
	aliases := DefaultAliases()

	assert.Equal(t, "Auckland Region", aliases.Apply("Auckland Region"))
	assert.Equal(t, "Auckland Region", aliases.Apply("  Auckland  Region "), "apply normalizes before lookup")
}

func TestLoadAliases_EmptyPathReturnsDefaults(t *testing.T) {
	aliases, err := LoadAliases("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAliases(), aliases)
}

func TestLoadAliases_FileMergesAndWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := "Hawketos Bay Region: Hawkes Bay Region\nWgtn Region: Wellington Region\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	aliases, err := LoadAliases(path)
	require.NoError(t, err)

	assert.Equal(t, "Hawkes Bay Region", aliases.Apply("Hawketos Bay Region"), "file entry overrides default")
	assert.Equal(t, "Wellington Region", aliases.Apply("Wgtn Region"))
	assert.Equal(t, "Manawatu-Wanganui Region", aliases.Apply("ManawatutoWanganui Region"), "untouched defaults survive")
}

func TestLoadAliases_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))

	_, err := LoadAliases(path)
	require.Error(t, err)
}

func TestLoadAliases_MissingFile(t *testing.T) {
	_, err := LoadAliases(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
