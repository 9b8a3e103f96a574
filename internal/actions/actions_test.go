package actions

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryUnknownAction(t *testing.T) {
	r := NewRegistry()

	_, err := r.Run(context.Background(), "nope", &Context{Log: zerolog.Nop()})
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestToolchainInstallsComponents(t *testing.T) {
	tc := &Toolchain{}
	actx := &Context{
		Workspace: t.TempDir(),
		With: map[string]string{
			"components": "clippy, rustfmt",
			"installer":  "echo installing",
		},
		Log: zerolog.Nop(),
	}

	out, err := tc.Run(context.Background(), actx)
	require.NoError(t, err)
	assert.Equal(t, "installing clippy\ninstalling rustfmt\n", out)
}

func TestToolchainRequiresComponents(t *testing.T) {
	tc := &Toolchain{}
	_, err := tc.Run(context.Background(), &Context{Workspace: t.TempDir(), Log: zerolog.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "components")
}

func TestToolchainFailedInstall(t *testing.T) {
	tc := &Toolchain{}
	actx := &Context{
		Workspace: t.TempDir(),
		With: map[string]string{
			"components": "clippy",
			"installer":  "false",
		},
		Log: zerolog.Nop(),
	}

	_, err := tc.Run(context.Background(), actx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install clippy")
}
