package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/studypulse/ranking-server/internal/repository"
	"github.com/studypulse/ranking-server/internal/repository/models"
)

func TestSessionRepository_QueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewSessionRepository(db)
	ctx := context.Background()
	dbErr := errors.New("database is locked")

	t.Run("ListStudents propagates driver error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, school_id, district_id").WillReturnError(dbErr)

		_, err := repo.ListStudents(ctx)
		require.Error(t, err)
		require.ErrorIs(t, err, dbErr)
	})

	t.Run("ListSessions propagates driver error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, student_id, created_at").WillReturnError(dbErr)

		_, err := repo.ListSessions(ctx)
		require.Error(t, err)
		require.ErrorIs(t, err, dbErr)
	})

	t.Run("ListSessions surfaces row iteration error", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "student_id", "created_at", "time_spent_minutes", "improvement_score"}).
			AddRow(1, "stu-1", time.Now(), 30, 70).
			RowError(0, dbErr)
		mock.ExpectQuery("SELECT id, student_id, created_at").WillReturnRows(rows)

		_, err := repo.ListSessions(ctx)
		require.Error(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewSnapshotRepository(db)
	dbErr := errors.New("connection reset")

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin().WillReturnError(dbErr)

	_, insertErr := repo.InsertSnapshot(context.Background(), snapshotRowFixture(), nil)
	require.Error(t, insertErr)
	require.ErrorIs(t, insertErr, dbErr)

	require.NoError(t, mock.ExpectationsWereMet())
}

func snapshotRowFixture() models.SnapshotRow {
	weekStart := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	return models.SnapshotRow{
		ID:        "snap-x",
		ScopeType: "school",
		ScopeID:   "sch-1",
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 7),
		CreatedAt: weekStart,
	}
}
