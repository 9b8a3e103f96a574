// Package actions implements the built-in named actions a step can
// invoke with uses:. Actions run before-or-instead-of a shell command
// and receive the step's with: parameter mapping.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrUnknownAction is returned when a step names an action that is not
// registered. The step fails before any process is spawned.
var ErrUnknownAction = errors.New("unknown action")

// Context carries everything an action may need from the run.
type Context struct {
	Workspace string
	With      map[string]string
	Env       []string
	Ref       string
	SHA       string
	CloneURL  string
	Log       zerolog.Logger
}

// Action is one built-in step implementation.
type Action interface {
	Run(ctx context.Context, actx *Context) (string, error)
}

// Registry maps action names to implementations.
type Registry struct {
	actions map[string]Action
}

// NewRegistry returns a registry with the built-in actions installed.
func NewRegistry() *Registry {
	r := &Registry{actions: map[string]Action{}}
	r.Register("checkout", &Checkout{})
	r.Register("toolchain", &Toolchain{})
	return r
}

func (r *Registry) Register(name string, a Action) {
	r.actions[name] = a
}

// Run dispatches to the named action.
func (r *Registry) Run(ctx context.Context, name string, actx *Context) (string, error) {
	a, ok := r.actions[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a.Run(ctx, actx)
}
