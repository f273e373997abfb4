package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lumaevents/internal/domain"
)

type agendaRepository struct {
	DB *sql.DB
}

func NewAgendaRepository(db *sql.DB) domain.AgendaRepository {
	return &agendaRepository{DB: db}
}

// CreateItems inserts all items in one transaction, in the given order, so that
// created_at preserves insertion order for display_order ties.
func (r *agendaRepository) CreateItems(ctx context.Context, eventID string, items []domain.AgendaItemInput) ([]*domain.AgendaItem, error) {
	if len(items) == 0 {
		return []*domain.AgendaItem{}, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO agenda_items (event_id, time, title, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	out := make([]*domain.AgendaItem, 0, len(items))
	for _, in := range items {
		item := &domain.AgendaItem{
			EventID:      eventID,
			Time:         in.Time,
			Title:        in.Title,
			DisplayOrder: in.DisplayOrder,
		}
		if err := tx.QueryRowContext(ctx, query, eventID, in.Time, in.Title, in.DisplayOrder).Scan(&item.ID, &item.CreatedAt); err != nil {
			if pqCode(err) == codeForeignKeyViolation {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("insert agenda item: %w", classify(err))
		}
		out = append(out, item)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *agendaRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.AgendaItem, error) {
	query := `
		SELECT id, event_id, time, title, display_order, created_at
		FROM agenda_items
		WHERE event_id = $1
		ORDER BY display_order ASC, created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	items := make([]*domain.AgendaItem, 0)
	for rows.Next() {
		it := &domain.AgendaItem{}
		if err := rows.Scan(&it.ID, &it.EventID, &it.Time, &it.Title, &it.DisplayOrder, &it.CreatedAt); err != nil {
			return nil, classify(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return items, nil
}

func (r *agendaRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM agenda_items WHERE event_id = $1`, eventID)
	return classify(err)
}
