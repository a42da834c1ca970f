package views

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTab is returned by ParseTab for anything but gainers or losers
var ErrUnknownTab = errors.New("unknown tab")

// Tab selects which movers list is shown. The zero value is TabGainers.
type Tab int

const (
	TabGainers Tab = iota
	TabLosers
)

func (t Tab) String() string {
	switch t {
	case TabGainers:
		return "gainers"
	case TabLosers:
		return "losers"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

// Title is the heading shown above the table
func (t Tab) Title() string {
	if t == TabLosers {
		return "Top Losers"
	}
	return "Top Gainers"
}

func (t Tab) valid() bool {
	return t == TabGainers || t == TabLosers
}

// ParseTab parses "gainers" or "losers"
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gainers":
		return TabGainers, nil
	case "losers":
		return TabLosers, nil
	}
	return TabGainers, fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Toggle is the two-state movers view selector. It starts on gainers.
type Toggle struct {
	active Tab
}

// NewToggle returns a toggle showing tab. Anything invalid starts on gainers.
func NewToggle(tab Tab) *Toggle {
	t := &Toggle{}
	t.Select(tab)
	return t
}

// Select makes tab active and reports whether the state changed. Selecting
// the active tab or an invalid one is a no-op.
func (t *Toggle) Select(tab Tab) bool {
	if !tab.valid() || tab == t.active {
		return false
	}
	t.active = tab
	return true
}

// Active returns the selected tab
func (t *Toggle) Active() Tab {
	return t.active
}
