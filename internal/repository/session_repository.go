package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studypulse/ranking-server/internal/repository/models"
)

// SessionRepository reads the student directory and raw study sessions.
// The scoring engine never writes through it.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) ListStudents(ctx context.Context) ([]models.StudentRow, error) {
	const query = `
		SELECT id, name, school_id, district_id
		FROM students
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ListStudents: %w", err)
	}
	defer rows.Close()

	var results []models.StudentRow
	for rows.Next() {
		var s models.StudentRow
		if err := rows.Scan(&s.ID, &s.Name, &s.SchoolID, &s.DistrictID); err != nil {
			return nil, fmt.Errorf("scan ListStudents row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListStudents: %w", err)
	}
	return results, nil
}

func (r *SessionRepository) GetStudent(ctx context.Context, id string) (models.StudentRow, error) {
	const query = `
		SELECT id, name, school_id, district_id
		FROM students
		WHERE id = ?
	`

	var s models.StudentRow
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.SchoolID, &s.DistrictID)
	if err != nil {
		return models.StudentRow{}, fmt.Errorf("query GetStudent: %w", err)
	}
	return s, nil
}

// ListSessions returns every study session, newest first per student.
// A ranking run fetches the whole table once and computes in memory.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]models.SessionRow, error) {
	const query = `
		SELECT id, student_id, created_at, time_spent_minutes, improvement_score
		FROM study_sessions
		ORDER BY student_id, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ListSessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows, "ListSessions")
}

func (r *SessionRepository) ListSessionsByStudent(ctx context.Context, studentID string) ([]models.SessionRow, error) {
	const query = `
		SELECT id, student_id, created_at, time_spent_minutes, improvement_score
		FROM study_sessions
		WHERE student_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query ListSessionsByStudent: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows, "ListSessionsByStudent")
}

func scanSessions(rows *sql.Rows, op string) ([]models.SessionRow, error) {
	var results []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.StudentID, &s.CreatedAt, &s.TimeSpentMinutes, &s.ImprovementScore); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return results, nil
}
