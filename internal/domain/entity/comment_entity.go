package entity

import "time"

// Comment is authored by one user on one ad. AdID and AuthorID are fixed at
// creation; only Text may change afterwards.
type Comment struct {
	ID        string
	AdID      string
	AuthorID  string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
