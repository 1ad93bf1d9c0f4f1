package domain

import "time"

// TicketStatusChange is one entry in a ticket's status timeline. The first
// entry for a ticket is always the creation status at the creation instant.
type TicketStatusChange struct {
	ID        string
	TicketID  string
	Status    TicketStatus
	ChangedAt time.Time
}
