package light

import "slices"

// Manager is the set of live lights a renderer considers each frame.
// Lights are kept in registration order, which is the tie-break when two
// lights share a light order.
type Manager struct {
	lights []*Light
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds lights. A light already registered with another manager is
// moved to this one.
func (m *Manager) Register(lights ...*Light) {
	for _, l := range lights {
		if l == nil || l.manager == m {
			continue
		}
		if l.manager != nil {
			l.manager.Deregister(l)
		}
		l.manager = m
		m.lights = append(m.lights, l)
	}
}

// Deregister removes a light. It reports whether the light was registered.
func (m *Manager) Deregister(l *Light) bool {
	i := slices.Index(m.lights, l)
	if i < 0 {
		return false
	}
	m.lights = slices.Delete(m.lights, i, i+1)
	l.manager = nil
	return true
}

// Lights returns the registered lights. The slice must not be modified.
func (m *Manager) Lights() []*Light { return m.lights }

// Len returns the number of registered lights.
func (m *Manager) Len() int { return len(m.lights) }

// HasGlobalLight reports whether any registered light is a global light.
func (m *Manager) HasGlobalLight() bool {
	return slices.ContainsFunc(m.lights, func(l *Light) bool { return l.typ == TypeGlobal })
}
