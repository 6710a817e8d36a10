package store

import (
	"sync"
)

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage with a publish-subscribe
// mechanism for live updates. Snapshots are keyed by inverter name, with
// new snapshots replacing previous values.
//
// Subscribers receive updates via buffered channels (buffer size 100).
// Updates are sent non-blocking; if a subscriber's buffer is full, the
// update is dropped for that subscriber to prevent blocking the poll path.
type MemoryStore struct {
	mu          sync.RWMutex
	snapshots   map[string]Snapshot
	subscribers map[chan Snapshot]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots:   make(map[string]Snapshot),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Update stores a [Snapshot] and notifies all subscribers.
//
// The snapshot is stored under its Name. Subsequent updates with the same
// name replace the previous value wholesale, never merge in place, so a
// reader can never observe a half-updated record.
func (m *MemoryStore) Update(snap Snapshot) {
	m.mu.Lock()
	m.snapshots[snap.Name] = snap
	m.mu.Unlock()

	m.notifySubscribers(snap)
}

// Get returns the snapshot stored for one inverter name.
func (m *MemoryStore) Get(name string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[name]
	return snap, ok
}

// GetAll returns a copy of all currently stored snapshots.
// Order is not guaranteed.
func (m *MemoryStore) GetAll() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		snaps = append(snaps, snap)
	}
	return snaps
}

// Remove discards the snapshot of a deconfigured inverter.
func (m *MemoryStore) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snapshots, name)
}

// Subscribe creates a new subscription and returns a channel for receiving
// updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource
// leaks.
func (m *MemoryStore) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 100)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel is closed and no further updates
// are sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Snapshot) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the snapshot to all active subscribers.
//
// Non-blocking: if a subscriber's channel buffer is full, the message is
// dropped for that subscriber rather than blocking the update path.
func (m *MemoryStore) notifySubscribers(snap Snapshot) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- snap:
		default:
			// subscriber is slow, drop the message
		}
	}
}
