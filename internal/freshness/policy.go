// Package freshness pins a freshness window to an endpoint so every call site
// that resolves to the same URL writes the cache with the same lifetime.
package freshness

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Window is a freshness window. In YAML it is either a Go duration string
// ("90s", "5m") or a bare number of seconds.
type Window time.Duration

// UnmarshalYAML implements custom YAML unmarshaling for Window
func (w *Window) UnmarshalYAML(value *yaml.Node) error {
	var secs int64
	if err := value.Decode(&secs); err == nil {
		*w = Window(time.Duration(secs) * time.Second)
		return nil
	}

	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return fmt.Errorf("invalid window '%s': %w", str, err)
	}
	*w = Window(d)
	return nil
}

// File is the on-disk policy layout
type File struct {
	Endpoints map[string]Window `yaml:"endpoints"`
}

// Policy maps normalized endpoint paths to their pinned window. Keys are
// matched literally, so a collapsed pattern such as "coins/{id}" only
// applies when the caller resolves that pattern.
type Policy struct {
	rules map[string]time.Duration
}

// New creates a policy from endpoint → window rules
func New(rules map[string]time.Duration) *Policy {
	p := &Policy{rules: make(map[string]time.Duration, len(rules))}
	for endpoint, window := range rules {
		p.rules[normalize(endpoint)] = window
	}
	return p
}

// Load reads a policy file
func Load(path string) (*Policy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open freshness policy: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Parse(file)
}

// Parse decodes and validates a policy document
func Parse(r io.Reader) (*Policy, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode freshness policy: %w", err)
	}

	rules := make(map[string]time.Duration, len(f.Endpoints))
	for endpoint, w := range f.Endpoints {
		if normalize(endpoint) == "" {
			return nil, errors.New("freshness policy: empty endpoint")
		}
		if w <= 0 {
			return nil, fmt.Errorf("freshness policy: window for %s must be positive", endpoint)
		}
		rules[endpoint] = time.Duration(w)
	}
	return New(rules), nil
}

// Resolve returns the pinned window for endpoint, or requested when the
// endpoint has no rule. A nil policy always returns requested.
func (p *Policy) Resolve(endpoint string, requested time.Duration) time.Duration {
	if p == nil {
		return requested
	}
	if w, ok := p.rules[normalize(endpoint)]; ok {
		return w
	}
	return requested
}

// Len returns the number of rules
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.rules)
}

func normalize(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	return strings.Trim(path, "/")
}
