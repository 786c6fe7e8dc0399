package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns wallets, people and transactions.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	CreatedAt    time.Time `json:"created_at"`
}
