package visual

import "sync"

// Model owns the scene of one visualizer. Readers get deep copies, so an
// observer never sees a half-applied update.
type Model struct {
	mu    sync.RWMutex
	scene Scene
}

func NewModel(scene Scene) *Model {
	return &Model{scene: scene.Clone()}
}

func (m *Model) Snapshot() Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene.Clone()
}

// Update applies fn under the write lock and returns the resulting snapshot.
func (m *Model) Update(fn func(*Scene)) Scene {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.scene)
	return m.scene.Clone()
}

// Replace swaps in a whole new entity collection.
func (m *Model) Replace(scene Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene = scene.Clone()
}

func (m *Model) Kind() Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene.Kind
}
