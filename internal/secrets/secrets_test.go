package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"CI_TOKEN", "tok-123")

	p := NewProvider()
	v, ok := p.Get("CI_TOKEN")
	assert.True(t, ok)
	assert.Equal(t, "tok-123", v)

	_, ok = p.Get("NOPE")
	assert.False(t, ok)
}

func TestGetFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("CI_TOKEN: from-file\nOTHER: x\n"), 0o600))

	p, err := NewProviderFromFile(path)
	require.NoError(t, err)

	v, ok := p.Get("CI_TOKEN")
	assert.True(t, ok)
	assert.Equal(t, "from-file", v)

	// Process env wins over the file.
	t.Setenv(EnvPrefix+"CI_TOKEN", "from-env")
	v, _ = p.Get("CI_TOKEN")
	assert.Equal(t, "from-env", v)
}

func TestExpand(t *testing.T) {
	t.Setenv(EnvPrefix+"CI_TOKEN", "tok-123")
	p := NewProvider()

	assert.Equal(t, "tok-123", p.Expand("${{ secrets.CI_TOKEN }}"))
	assert.Equal(t, "Bearer tok-123!", p.Expand("Bearer ${{secrets.CI_TOKEN}}!"))
	assert.Equal(t, "plain value", p.Expand("plain value"))
}

func TestExpandMissingSecretIsEmpty(t *testing.T) {
	p := NewProvider()
	// A missing secret is not an error: the step's tool decides whether
	// an empty credential matters.
	assert.Equal(t, "token=", p.Expand("token=${{ secrets.MISSING }}"))
}
