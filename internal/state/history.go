package state

// DefaultHistoryLimit bounds the number of reachable snapshots.
const DefaultHistoryLimit = 20

// History is a bounded, cursor-addressed sequence of committed stroke lists.
// Every snapshot is a deep copy owned by the history; nothing aliases across
// snapshots. It starts with a single empty snapshot.
type History struct {
	snapshots [][]Stroke
	cursor    int
	limit     int
}

// NewHistory creates a history holding at most limit snapshots.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &History{snapshots: [][]Stroke{{}}, limit: limit}
}

// Commit stores a copy of strokes as the new current snapshot, discarding any
// redo snapshots and evicting the oldest once the limit is exceeded.
func (h *History) Commit(strokes []Stroke) {
	snap := CloneStrokes(strokes)
	if snap == nil {
		snap = []Stroke{}
	}
	h.snapshots = append(h.snapshots[:h.cursor+1], snap)
	if over := len(h.snapshots) - h.limit; over > 0 {
		h.snapshots = h.snapshots[over:]
	}
	h.cursor = len(h.snapshots) - 1
}

// Undo moves the cursor back one snapshot. It is a no-op at the start.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward one snapshot. It is a no-op at the end.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }

// Current returns the snapshot at the cursor. The slice is owned by the
// history and must not be modified; clone it first.
func (h *History) Current() []Stroke { return h.snapshots[h.cursor] }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snapshots) }

// Cursor returns the index of the current snapshot.
func (h *History) Cursor() int { return h.cursor }

// Reset discards everything and starts over from a single snapshot.
func (h *History) Reset(strokes []Stroke) {
	snap := CloneStrokes(strokes)
	if snap == nil {
		snap = []Stroke{}
	}
	h.snapshots = [][]Stroke{snap}
	h.cursor = 0
}
