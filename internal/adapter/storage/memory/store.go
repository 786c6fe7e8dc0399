// Package memory is an in-process storage backend implementing the same
// ports as the PostgreSQL adapter. Rows are locked with per-resource
// semaphores whose waits are bounded, and writes made inside a transaction
// stay private to it until Commit publishes them under the store lock.
package memory

import (
	"context"
	"sync"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
)

// Store holds every table of the in-memory backend.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]domain.User
	wallets   map[uuid.UUID]domain.Wallet
	people    map[uuid.UUID]domain.Person
	txns      map[uuid.UUID]domain.Transaction
	reversals map[uuid.UUID]uuid.UUID // original id -> reversal id
	idemKeys  map[idemKey]domain.IdempotencyRecord
	audit     []domain.AuditLog

	locks       *lockTable
	lockTimeout time.Duration
}

// NewStore creates an empty store. lockTimeout bounds every row lock wait.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		users:       make(map[uuid.UUID]domain.User),
		wallets:     make(map[uuid.UUID]domain.Wallet),
		people:      make(map[uuid.UUID]domain.Person),
		txns:        make(map[uuid.UUID]domain.Transaction),
		reversals:   make(map[uuid.UUID]uuid.UUID),
		idemKeys:    make(map[idemKey]domain.IdempotencyRecord),
		locks:       newLockTable(),
		lockTimeout: lockTimeout,
	}
}

// lockTable hands out one single-slot semaphore per resource key.
type lockTable struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{sems: make(map[string]chan struct{})}
}

func (l *lockTable) get(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[key] = sem
	}
	return sem
}

// acquire waits for the semaphore of key for at most timeout.
func (l *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) (chan struct{}, error) {
	sem := l.get(key)
	select {
	case sem <- struct{}{}:
		return sem, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case sem <- struct{}{}:
		return sem, nil
	case <-timer.C:
		return nil, ports.ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func walletKey(id uuid.UUID) string { return "wallet:" + id.String() }
func personKey(id uuid.UUID) string { return "person:" + id.String() }
func txnKey(id uuid.UUID) string    { return "txn:" + id.String() }

type idemKey struct {
	owner uuid.UUID
	key   string
}

func (k idemKey) lockKey() string { return "idem:" + k.owner.String() + ":" + k.key }
