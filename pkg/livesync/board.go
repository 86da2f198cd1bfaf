package livesync

import (
	"sort"
	"sync"
)

// Board holds the race-status collection for one event. The snapshot is
// authoritative for membership: pushes for dorsals not present in the
// snapshot are dropped, not inserted.
type Board struct {
	mu      sync.RWMutex
	eventID int
	entries []Enrollment
	index   map[int]int
	dropped uint64
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{index: make(map[int]int)}
}

// Reset replaces the board contents with a fresh snapshot, sorted ascending
// by dorsal. The previous collection and drop counter are discarded.
func (b *Board) Reset(eventID int, snapshot []Enrollment) {
	entries := make([]Enrollment, len(snapshot))
	copy(entries, snapshot)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Dorsal < entries[j].Dorsal })

	index := make(map[int]int, len(entries))
	for i, e := range entries {
		index[e.Dorsal] = i
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventID = eventID
	b.entries = entries
	b.index = index
	b.dropped = 0
}

// Apply merges a partial update into the record with the matching dorsal.
// Fields absent from the update keep their current value. Updates for
// unknown dorsals are dropped and counted; re-applying the same update is
// harmless.
func (b *Board) Apply(update StatusUpdate) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.index[update.Dorsal]
	if !ok {
		b.dropped++
		return false
	}
	if update.AthleteName != "" {
		b.entries[i].AthleteName = update.AthleteName
	}
	if update.Status != "" {
		b.entries[i].Status = update.Status
	}
	return true
}

// Enrollments returns a copy of the collection in ascending dorsal order.
func (b *Board) Enrollments() []Enrollment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Enrollment, len(b.entries))
	copy(out, b.entries)
	return out
}

// EventID returns the event the current snapshot belongs to.
func (b *Board) EventID() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.eventID
}

// Len returns the number of enrollments on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Dropped returns how many pushes were discarded for unknown dorsals since
// the last Reset. A non-zero value suggests a stale snapshot.
func (b *Board) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}
