package postgres

import (
	"context"
	"testing"
	"time"

	"lumaevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestAgendaRepository_CreateItems(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("inserts in order within a transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO agenda_items \(event_id, time, title, display_order\)`).
			WithArgs("ev-1", "11:00", "Talk", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("ag-1", at))
		mock.ExpectQuery(`INSERT INTO agenda_items`).
			WithArgs("ev-1", "10:00", "Open", 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("ag-2", at.Add(time.Millisecond)))
		mock.ExpectCommit()

		items, err := NewAgendaRepository(db).CreateItems(ctx, "ev-1", []domain.AgendaItemInput{
			{Time: "11:00", Title: "Talk", DisplayOrder: 1},
			{Time: "10:00", Title: "Open", DisplayOrder: 0},
		})
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Equal(t, "ag-1", items[0].ID)
		require.Equal(t, "ev-1", items[1].EventID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO agenda_items`).
			WillReturnError(&pq.Error{Code: "23503"})
		mock.ExpectRollback()

		_, err = NewAgendaRepository(db).CreateItems(ctx, "ev-gone", []domain.AgendaItemInput{{Time: "10:00", Title: "Open"}})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no items skips the store", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		items, err := NewAgendaRepository(db).CreateItems(ctx, "ev-1", nil)
		require.NoError(t, err)
		require.Empty(t, items)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAgendaRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ORDER BY display_order ASC, created_at ASC`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "time", "title", "display_order", "created_at"}).
			AddRow("ag-2", "ev-1", "10:00", "Open", 0, at).
			AddRow("ag-1", "ev-1", "11:00", "Talk", 1, at))

	items, err := NewAgendaRepository(db).ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Open", items[0].Title)
	require.Equal(t, 1, items[1].DisplayOrder)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAgendaRepository_DeleteByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM agenda_items WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, NewAgendaRepository(db).DeleteByEventID(ctx, "ev-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
