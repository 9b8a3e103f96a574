package actions

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Toolchain installs optional toolchain add-ons before later steps use
// them. with.components is a comma-separated list; with.installer
// overrides the install command prefix.
type Toolchain struct{}

const defaultInstaller = "rustup component add"

func (t *Toolchain) Run(ctx context.Context, actx *Context) (string, error) {
	raw := actx.With["components"]
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("toolchain: with.components is required")
	}
	installer := actx.With["installer"]
	if installer == "" {
		installer = defaultInstaller
	}

	var out bytes.Buffer
	for _, component := range strings.Split(raw, ",") {
		component = strings.TrimSpace(component)
		if component == "" {
			continue
		}
		cmd := exec.CommandContext(ctx, "sh", "-c", installer+" "+component)
		cmd.Dir = actx.Workspace
		cmd.Env = actx.Env
		cmd.Stdout = &out
		cmd.Stderr = &out

		actx.Log.Debug().Str("component", component).Msg("installing toolchain component")
		if err := cmd.Run(); err != nil {
			return out.String(), fmt.Errorf("install %s: %w", component, err)
		}
	}
	return out.String(), nil
}
