package stub

import "sync"

// PresetStore keeps the default preset of each user.
type PresetStore interface {
	Save(user, preset string) error
	Get(user string) (string, bool, error)
}

// MemoryStore is a PresetStore held in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	presets map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		presets: make(map[string]string),
	}
}

// Save overwrites the preset of user.
func (m *MemoryStore) Save(user, preset string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.presets[user] = preset
	return nil
}

// Get returns the preset of user.
func (m *MemoryStore) Get(user string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	preset, ok := m.presets[user]
	return preset, ok, nil
}
