package models

import "time"

type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	ID    int64
	Name  string
	Email string
}
