package board

import (
	"slices"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// Location is a position inside a column's list.
type Location struct {
	ListID string `json:"listId"`
	Index  int    `json:"index"`
}

// DragEvent is a finished drag gesture. A nil Destination means the gesture
// was cancelled.
type DragEvent struct {
	ItemID      string    `json:"itemId"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination,omitempty"`
}

// DragOutcome tells what ApplyDrag did.
type DragOutcome int

const (
	DragIgnored DragOutcome = iota
	DragReordered
	DragMoved
)

func (o DragOutcome) String() string {
	switch o {
	case DragReordered:
		return "reordered"
	case DragMoved:
		return "moved"
	default:
		return "ignored"
	}
}

// ApplyDrag turns a drag gesture into a board change.
//
// While the filter is active the visible indexes do not map onto the real
// lists, so same-column drops are ignored and cross-column drops append to
// the end of the destination. Gestures naming an item that is no longer in
// the declared source list are ignored.
func (m Mutator) ApplyDrag(b *domain.Board, ev DragEvent, filter Filter) (*domain.Board, DragOutcome) {
	dst := ev.Destination
	if dst == nil {
		return b, DragIgnored
	}
	if ev.Source.ListID == dst.ListID && ev.Source.Index == dst.Index {
		return b, DragIgnored
	}

	src, ok := FindColumn(b, ev.Source.ListID)
	if !ok {
		return b, DragIgnored
	}
	from := slices.Index(src.FollowerIDs, ev.ItemID)
	if from < 0 {
		return b, DragIgnored
	}
	dest, ok := FindColumn(b, dst.ListID)
	if !ok {
		return b, DragIgnored
	}

	filtered := filter.Active()

	if src.ID == dest.ID {
		if filtered {
			return b, DragIgnored
		}
		to := min(max(dst.Index, 0), len(src.FollowerIDs)-1)
		if to == from {
			return b, DragIgnored
		}
		out, err := m.ReorderWithinColumn(b, src.ID, from, to)
		if err != nil {
			return b, DragIgnored
		}
		return out, DragReordered
	}

	index := dst.Index
	if filtered {
		index = len(dest.FollowerIDs)
	}
	out, err := m.MoveFollowerToColumn(b, ev.ItemID, dest.ID, max(index, 0))
	if err != nil {
		return b, DragIgnored
	}
	return out, DragMoved
}
