// Package panels defines the text views printed by the command line client
package panels

import (
	"context"
	"errors"
	"sort"
)

// ErrUnavailable is returned after a panel printed its fallback
var ErrUnavailable = errors.New("market data unavailable")

// Panel defines the minimal interface every command line view implements
type Panel interface {
	// Name returns the command that selects the panel (e.g., "overview", "movers")
	Name() string

	// Default renders the panel with its configured defaults
	Default(ctx context.Context) (string, error)

	// Get renders the panel for arg, such as a coin ID or a movers tab
	Get(ctx context.Context, arg string) (string, error)
}

// Registry manages available panels
type Registry struct {
	panels map[string]Panel
}

// NewRegistry creates a new panel registry
func NewRegistry() *Registry {
	return &Registry{
		panels: make(map[string]Panel),
	}
}

// Register adds a panel to the registry
func (r *Registry) Register(panel Panel) {
	r.panels[panel.Name()] = panel
}

// GetPanel retrieves a panel by name
func (r *Registry) GetPanel(name string) (Panel, bool) {
	panel, exists := r.panels[name]
	return panel, exists
}

// List returns all registered panel names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.panels))
	for name := range r.panels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
