package domain

import "time"

// User is a support agent who authenticates and annotates tickets.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
