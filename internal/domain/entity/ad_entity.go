package entity

import "time"

// Ad belongs to exactly one user. Relations are id-based: the image row and
// comments reference the ad by AdID and are resolved by repositories.
type Ad struct {
	ID          string
	OwnerID     string
	Title       string
	Price       int64
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Image is the single photo attached to an ad. Filename addresses the bytes
// in the media store; the row cascades away with its ad.
type Image struct {
	ID        string
	AdID      string
	Filename  string
	Size      int64
	MediaType string
	CreatedAt time.Time
}
