package entity

import "time"

// Role is persisted as a single text column constrained in the schema.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Avatar is the user's profile image metadata. The bytes live in the media
// store under Filename; the row and the file share one lifecycle.
type Avatar struct {
	ID        string
	UserID    string
	Filename  string
	Size      int64
	MediaType string
	CreatedAt time.Time
	UpdatedAt time.Time
}
