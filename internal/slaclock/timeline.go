package slaclock

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Segment is one typed slice of a ticket's lifetime: the ticket held Status
// from Start until End.
type Segment struct {
	Status domain.TicketStatus
	Start  time.Time
	End    time.Time
}

// BuildSegments converts an ordered status history into segments, splitting
// at every transition. The last segment ends at horizon: the ticket's
// resolution instant, or "now" for a still-open ticket. Degenerate segments
// (end <= start, possible with duplicate-timestamp transitions) are dropped.
// An empty history is an InvalidTimelineError.
func BuildSegments(ticketID string, history []domain.TicketStatusChange, horizon time.Time) ([]Segment, error) {
	if len(history) == 0 {
		return nil, &InvalidTimelineError{TicketID: ticketID, Reason: "empty status history"}
	}

	segments := make([]Segment, 0, len(history))
	for i, change := range history {
		end := horizon
		if i+1 < len(history) {
			end = history[i+1].ChangedAt
		}
		if !end.After(change.ChangedAt) {
			continue
		}
		segments = append(segments, Segment{
			Status: change.Status,
			Start:  change.ChangedAt,
			End:    end,
		})
	}
	return segments, nil
}
