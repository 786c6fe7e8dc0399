package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord ties a client-supplied Idempotency-Key to the
// transaction it created. Keys are unique per owner.
type IdempotencyRecord struct {
	OwnerID       uuid.UUID `json:"owner_id"`
	Key           string    `json:"key"`
	TransactionID uuid.UUID `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}
