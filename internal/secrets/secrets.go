// Package secrets resolves named secrets and expands ${{ secrets.NAME }}
// references in step environment values. Secrets are pass-through only:
// the runner never logs or persists them.
package secrets

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to a secret name when resolving from the
// process environment, e.g. CI_TOKEN -> FORGECI_SECRET_CI_TOKEN.
const EnvPrefix = "FORGECI_SECRET_"

var refPattern = regexp.MustCompile(`\$\{\{\s*secrets\.([A-Za-z0-9_]+)\s*\}\}`)

// Provider resolves secrets from the process environment first, then
// from an optional secrets file (a flat YAML mapping).
type Provider struct {
	file map[string]string
}

func NewProvider() *Provider {
	return &Provider{file: map[string]string{}}
}

// NewProviderFromFile loads a YAML mapping of secret names to values.
func NewProviderFromFile(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse secrets file: %w", err)
	}
	return &Provider{file: values}, nil
}

// Get resolves a secret by name.
func (p *Provider) Get(name string) (string, bool) {
	if v, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(name)); ok {
		return v, true
	}
	v, ok := p.file[name]
	return v, ok
}

// Expand replaces every ${{ secrets.NAME }} reference in s. A missing
// secret expands to the empty string rather than failing: whether an
// absent credential matters is the invoked tool's decision, not the
// runner's.
func (p *Provider) Expand(s string) string {
	return refPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := refPattern.FindStringSubmatch(match)[1]
		v, _ := p.Get(name)
		return v
	})
}
