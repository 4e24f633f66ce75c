package domain

import "time"

// Note is an append-only annotation on a ticket. Notes are never edited or
// deleted; AuthorID becomes nil if the authoring user is later removed.
type Note struct {
	ID          int64
	TicketID    int64
	AuthorID    *int64
	AuthorName  string
	AuthorEmail string
	Text        string
	CreatedAt   time.Time
}
