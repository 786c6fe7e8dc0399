package memory

import (
	"context"
	"errors"
	"fmt"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errNoSQL = errors.New("memory: SQL is not supported by the in-memory store")

// Tx is a pgx.Tx over the in-memory store. It is used by one goroutine.
type Tx struct {
	store    *Store
	readOnly bool
	done     bool

	held    map[string]chan struct{}
	wallets map[uuid.UUID]domain.Wallet
	people  map[uuid.UUID]domain.Person
	txns    []domain.Transaction
	idem    []domain.IdempotencyRecord

	// snapshot of all wallets taken when a read-only transaction began
	snapshot map[uuid.UUID]domain.Wallet
}

func (s *Store) begin(readOnly bool) *Tx {
	tx := &Tx{
		store:    s,
		readOnly: readOnly,
		held:     make(map[string]chan struct{}),
		wallets:  make(map[uuid.UUID]domain.Wallet),
		people:   make(map[uuid.UUID]domain.Person),
	}
	if readOnly {
		s.mu.RLock()
		tx.snapshot = make(map[uuid.UUID]domain.Wallet, len(s.wallets))
		for id, w := range s.wallets {
			tx.snapshot[id] = w
		}
		s.mu.RUnlock()
	}
	return tx
}

func asTx(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, fmt.Errorf("memory: transaction %T was not started by this store", tx)
	}
	if mtx.done {
		return nil, pgx.ErrTxClosed
	}
	return mtx, nil
}

func (t *Tx) writable() error {
	if t.readOnly {
		return errors.New("memory: write in a read-only transaction")
	}
	return nil
}

// lock takes the row lock for key. Locks are re-entrant within a transaction.
func (t *Tx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	sem, err := t.store.locks.acquire(ctx, key, t.store.lockTimeout)
	if err != nil {
		return err
	}
	t.held[key] = sem
	return nil
}

func (t *Tx) release() {
	for key, sem := range t.held {
		<-sem
		delete(t.held, key)
	}
	t.done = true
}

// Commit publishes the staged writes atomically and releases every lock.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	defer t.release()
	if t.readOnly {
		return nil
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, txn := range t.txns {
		if txn.ReversalOf != nil {
			if _, ok := s.reversals[*txn.ReversalOf]; ok {
				return ports.ErrDuplicate
			}
		}
	}
	for _, rec := range t.idem {
		if _, ok := s.idemKeys[idemKey{rec.OwnerID, rec.Key}]; ok {
			return ports.ErrDuplicate
		}
	}
	for id, w := range t.wallets {
		s.wallets[id] = w
	}
	for id, p := range t.people {
		s.people[id] = p
	}
	for _, txn := range t.txns {
		s.txns[txn.ID] = txn
		if txn.ReversalOf != nil {
			s.reversals[*txn.ReversalOf] = txn.ID
		}
	}
	for _, rec := range t.idem {
		s.idemKeys[idemKey{rec.OwnerID, rec.Key}] = rec
	}
	return nil
}

// Rollback discards the staged writes and releases every lock.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.release()
	return nil
}

// wallet returns the wallet as seen by this transaction.
func (t *Tx) wallet(id uuid.UUID) (domain.Wallet, bool) {
	if w, ok := t.wallets[id]; ok {
		return w, true
	}
	if t.snapshot != nil {
		w, ok := t.snapshot[id]
		return w, ok
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	w, ok := t.store.wallets[id]
	return w, ok
}

// person returns the active person as seen by this transaction.
func (t *Tx) person(id uuid.UUID) (domain.Person, bool) {
	p, ok := t.people[id]
	if !ok {
		t.store.mu.RLock()
		p, ok = t.store.people[id]
		t.store.mu.RUnlock()
	}
	if !ok || p.IsDeleted() {
		return domain.Person{}, false
	}
	return p, true
}

func (t *Tx) Begin(_ context.Context) (pgx.Tx, error) {
	return nil, errors.New("memory: nested transactions are not supported")
}

func (t *Tx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, errNoSQL
}

func (t *Tx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }

func (t *Tx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *Tx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, errNoSQL
}

func (t *Tx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), errNoSQL
}

func (t *Tx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errNoSQL
}

func (t *Tx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return errRow{}
}

func (t *Tx) Conn() *pgx.Conn { return nil }

type errRow struct{}

func (errRow) Scan(_ ...any) error { return errNoSQL }

// Transactor implements ports.DBTransactor over a Store.
type Transactor struct {
	store *Store
}

// NewTransactor creates a new Transactor.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin starts a read-write transaction.
func (t *Transactor) Begin(_ context.Context) (pgx.Tx, error) {
	return t.store.begin(false), nil
}

// BeginSnapshot starts a read-only transaction over a copy of all wallets.
func (t *Transactor) BeginSnapshot(_ context.Context) (pgx.Tx, error) {
	return t.store.begin(true), nil
}
