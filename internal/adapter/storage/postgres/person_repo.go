package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"money-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const personColumns = `id, owner_id, name, phone, notes, total_received, total_given, created_at, deleted_at`

// PersonRepo implements ports.PersonRepository.
type PersonRepo struct {
	pool Pool
}

// NewPersonRepo creates a new PersonRepo.
func NewPersonRepo(pool Pool) *PersonRepo {
	return &PersonRepo{pool: pool}
}

func (r *PersonRepo) Create(ctx context.Context, p *domain.Person) error {
	query := `INSERT INTO people (id, owner_id, name, phone, notes, total_received, total_given, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.OwnerID, p.Name, p.Phone, p.Notes, p.TotalReceived, p.TotalGiven, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert person: %w", mapErr(err))
	}
	return nil
}

func (r *PersonRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1 AND deleted_at IS NULL`
	return scanPerson(r.pool.QueryRow(ctx, query, id))
}

// ListByOwner returns the owner's active people ordered by name.
func (r *PersonRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people
		WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY lower(name), id`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []domain.Person
	for rows.Next() {
		var p domain.Person
		if err := rows.Scan(personFields(&p)...); err != nil {
			return nil, fmt.Errorf("scan person row: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate person rows: %w", err)
	}
	return people, nil
}

// GetByIDForUpdate fetches an active person with pessimistic locking.
// This MUST be called within a transaction.
func (r *PersonRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return scanPerson(tx.QueryRow(ctx, query, id))
}

func (r *PersonRepo) UpdateTotals(ctx context.Context, tx pgx.Tx, id uuid.UUID, totalReceived, totalGiven decimal.Decimal) error {
	query := `UPDATE people SET total_received = $1, total_given = $2 WHERE id = $3 AND deleted_at IS NULL`

	tag, err := tx.Exec(ctx, query, totalReceived, totalGiven, id)
	if err != nil {
		return fmt.Errorf("update person totals: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("person not found: %s", id)
	}
	return nil
}

func (r *PersonRepo) SoftDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	query := `UPDATE people SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	tag, err := tx.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("person not found: %s", id)
	}
	return nil
}

func personFields(p *domain.Person) []any {
	return []any{
		&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.Notes,
		&p.TotalReceived, &p.TotalGiven, &p.CreatedAt, &p.DeletedAt,
	}
}

func scanPerson(row pgx.Row) (*domain.Person, error) {
	p := &domain.Person{}
	if err := row.Scan(personFields(p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan person: %w", mapErr(err))
	}
	return p, nil
}
