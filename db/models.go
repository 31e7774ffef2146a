package db

import "github.com/google/uuid"

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"password" db:"password"` // Hashed password
	CreatedAt string    `json:"created_at" db:"created_at"`
}
