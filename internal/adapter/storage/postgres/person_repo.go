package postgres

import (
	"context"
	"errors"
	"fmt"

	"moneytracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PersonRepo implements ports.PersonRepository.
type PersonRepo struct {
	pool Pool
}

// NewPersonRepo creates a new PersonRepo.
func NewPersonRepo(pool Pool) *PersonRepo {
	return &PersonRepo{pool: pool}
}

// Create inserts a new person into the database.
func (r *PersonRepo) Create(ctx context.Context, p *domain.Person) error {
	query := `INSERT INTO people (id, user_id, name, phone, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, p.ID, p.UserID, p.Name, p.Phone, p.Notes, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

// GetByID fetches a person by UUID.
func (r *PersonRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	query := `SELECT id, user_id, name, phone, notes, created_at FROM people WHERE id = $1`

	p := &domain.Person{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Phone, &p.Notes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get person by id: %w", err)
	}
	return p, nil
}

// ListByUser fetches all persons owned by a user, newest first.
func (r *PersonRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Person, error) {
	query := `SELECT id, user_id, name, phone, notes, created_at
		FROM people WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []domain.Person
	for rows.Next() {
		p := domain.Person{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Phone, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan person row: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate person rows: %w", err)
	}
	return people, nil
}

// Delete removes a person by UUID.
func (r *PersonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("person not found: %s", id)
	}
	return nil
}
