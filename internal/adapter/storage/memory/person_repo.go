package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"money-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PersonRepo implements ports.PersonRepository.
type PersonRepo struct {
	store *Store
}

// NewPersonRepo creates a new PersonRepo.
func NewPersonRepo(store *Store) *PersonRepo {
	return &PersonRepo{store: store}
}

func (r *PersonRepo) Create(_ context.Context, p *domain.Person) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.people[p.ID] = *p
	return nil
}

func (r *PersonRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Person, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.people[id]
	if !ok || p.IsDeleted() {
		return nil, nil
	}
	return &p, nil
}

// ListByOwner returns active people ordered by name.
func (r *PersonRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Person, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var people []domain.Person
	for _, p := range r.store.people {
		if p.OwnerID == ownerID && !p.IsDeleted() {
			people = append(people, p)
		}
	}
	slices.SortFunc(people, func(a, b domain.Person) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return domain.CompareIDs(a.ID, b.ID)
	})
	return people, nil
}

func (r *PersonRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Person, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := mtx.lock(ctx, personKey(id)); err != nil {
		return nil, fmt.Errorf("lock person %s: %w", id, err)
	}
	p, ok := mtx.person(id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PersonRepo) UpdateTotals(ctx context.Context, tx pgx.Tx, id uuid.UUID, totalReceived, totalGiven decimal.Decimal) error {
	return r.update(ctx, tx, id, func(p *domain.Person) {
		p.TotalReceived = totalReceived
		p.TotalGiven = totalGiven
	})
}

func (r *PersonRepo) SoftDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	return r.update(ctx, tx, id, func(p *domain.Person) {
		p.DeletedAt = &at
	})
}

func (r *PersonRepo) update(ctx context.Context, tx pgx.Tx, id uuid.UUID, apply func(p *domain.Person)) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := mtx.writable(); err != nil {
		return err
	}
	if err := mtx.lock(ctx, personKey(id)); err != nil {
		return fmt.Errorf("lock person %s: %w", id, err)
	}
	p, ok := mtx.person(id)
	if !ok {
		return fmt.Errorf("person not found: %s", id)
	}
	apply(&p)
	mtx.people[id] = p
	return nil
}
