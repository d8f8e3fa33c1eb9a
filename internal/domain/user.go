package domain

import "time"

// User is a registered account. Username, e-mail and LRN are each unique
// across the store.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Section      string
	LRN          string // 12-digit learner reference number
	PasswordHash string // argon2id encoded
	CreatedAt    time.Time
}
