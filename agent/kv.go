package agent

import "sync"

// Keys of the two values the core persists locally. Both are cleared on
// sign-out or explicit cancel.
const (
	KeyDeviceID             = "device_id"
	KeyPendingHelpRequestID = "pending_help_request_id"
)

// KeyValueStore is the persisted local key-value boundary. The host
// provides an implementation that survives process restarts.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Clear(key string)
}

// MemoryKV is a process-local KeyValueStore for tests and the simulator.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryKV) Clear(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}
