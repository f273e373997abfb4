package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"lumaevents/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Create inserts the registration without checking for an existing row first;
// the (event_id, user_id) unique constraint decides.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, reg.EventID, reg.UserID, reg.CreatedAt).Scan(&reg.ID)
	if err != nil {
		switch pqCode(err) {
		case codeUniqueViolation:
			return domain.ErrDuplicateRegistration
		case codeForeignKeyViolation:
			return domain.ErrNotFound
		}
		return classify(err)
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM registrations
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	return r.getOne(ctx, query, eventID, userID)
}

func (r *registrationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify(err)
	}
	return reg, nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	regs := []*domain.Registration{}
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.CreatedAt); err != nil {
			return nil, classify(err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return regs, nil
}

func (r *registrationRepository) DeleteByEventAndUser(ctx context.Context, eventID, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return 0, classify(err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func (r *registrationRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1`, eventID)
	return classify(err)
}

func (r *registrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&n)
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// CountByEventIDs counts registrations for every id with one grouped query.
// Ids without rows are present with a zero count.
func (r *registrationRepository) CountByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	for _, id := range eventIDs {
		counts[id] = 0
	}
	query := `
		SELECT event_id, COUNT(*)
		FROM registrations
		WHERE event_id = ANY($1)
		GROUP BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, classify(err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return counts, nil
}
