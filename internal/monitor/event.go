package monitor

// EventKind represents the kind of filesystem change observed for a path.
type EventKind int

const (
	// KindCreated is reported when a new file appears in a watched directory.
	KindCreated EventKind = iota
	// KindModified is reported when an existing file's contents change.
	KindModified
	// KindDeleted is reported when a file is removed or renamed away.
	KindDeleted
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindModified:
		return "modified"
	case KindDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// PathEvent is a single raw filesystem notification. Values are immutable
// once created; the service assigns Seq on arrival and the event is discarded
// after it has been folded into a batch.
type PathEvent struct {
	// Path is the absolute path the notification refers to.
	Path string

	// Kind is the kind of change observed.
	Kind EventKind

	// Seq is a monotonic arrival marker assigned by the monitor service.
	// Events with a lower Seq arrived earlier.
	Seq uint64
}

// Batch is the output of one debounce window for one directory: at most one
// entry per path (the latest kind observed for that path in the window),
// ordered by the arrival of each path's first event.
type Batch []PathEvent

// Kind returns the final event kind recorded for path in this batch.
func (b Batch) Kind(path string) (EventKind, bool) {
	for _, ev := range b {
		if ev.Path == path {
			return ev.Kind, true
		}
	}
	return 0, false
}

// Paths returns the batch's paths in batch order.
func (b Batch) Paths() []string {
	paths := make([]string, len(b))
	for i, ev := range b {
		paths[i] = ev.Path
	}
	return paths
}
