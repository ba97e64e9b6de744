package array

import "strings"

// Mode selects whether arrays are materialized immediately or deferred.
type Mode int

const (
	ModeEager Mode = iota
	ModeLazy
)

func (m Mode) String() string {
	if m == ModeLazy {
		return "lazy"
	}
	return "eager"
}

// ParseMode maps "lazy"/"true"/"1" to ModeLazy and anything else to ModeEager.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lazy", "true", "1", "yes", "on":
		return ModeLazy
	default:
		return ModeEager
	}
}

// Manager holds the array mode of one container.
type Manager struct {
	mode Mode
}

// NewManager creates a manager in the given mode.
func NewManager(mode Mode) *Manager {
	return &Manager{mode: mode}
}

// Mode returns the current mode.
func (m *Manager) Mode() Mode { return m.mode }

// IsLazy reports whether arrays are deferred by default.
func (m *Manager) IsLazy() bool { return m.mode == ModeLazy }

// Activate switches to lazy mode.
func (m *Manager) Activate() { m.mode = ModeLazy }

// Deactivate switches to eager mode.
func (m *Manager) Deactivate() { m.mode = ModeEager }

// Prepare converts a to the representation requested by realize, or by the
// current mode when realize is nil.
func (m *Manager) Prepare(a NumericArray, realize *bool) (NumericArray, error) {
	if a == nil {
		return nil, nil
	}
	wantEager := !m.IsLazy()
	if realize != nil {
		wantEager = *realize
	}
	if wantEager {
		e, err := a.Realize()
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return Defer(a), nil
}

// Bool returns a pointer to b, for the realize argument of Prepare.
func Bool(b bool) *bool { return &b }
