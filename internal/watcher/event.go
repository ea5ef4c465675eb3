package watcher

import "time"

// EventType is the kind of change a settled file went through.
type EventType int

const (
	// EventAdded is emitted the first time a file settles.
	EventAdded EventType = iota
	// EventModified is emitted when a file seen before settles again.
	EventModified
	// EventRemoved is emitted when a file is deleted.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a file system change reported after the file stopped changing.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}
