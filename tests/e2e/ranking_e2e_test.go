//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	handler "github.com/studypulse/ranking-server/internal/http"
	"github.com/studypulse/ranking-server/internal/repository"
	"github.com/studypulse/ranking-server/internal/scoring"
	"github.com/studypulse/ranking-server/tests/e2e/mocks"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.EnsureSchema(context.Background(), db))

	_, err = db.Exec(`
	INSERT INTO students (id, name, school_id, district_id) VALUES
		('stu-1', 'Aiko Tanaka', 'sch-1', 'dst-1'),
		('stu-2', 'Ben Okafor', 'sch-1', 'dst-1'),
		('stu-3', 'Carla Reyes', 'sch-2', 'dst-1'),
		('stu-4', 'Dev Sharma', NULL, 'dst-1');
	`)
	require.NoError(t, err)

	// Sessions within the last hour keep daily and weekly windows stable
	// regardless of when the test runs.
	now := time.Now()
	sessions := []struct {
		studentID   string
		offset      time.Duration
		minutes     int
		improvement any
	}{
		{"stu-1", -10 * time.Minute, 60, 90},
		{"stu-1", -30 * time.Minute, 45, 80},
		{"stu-2", -20 * time.Minute, 30, 40},
		{"stu-3", -15 * time.Minute, 90, nil},
	}
	for _, s := range sessions {
		_, err := db.Exec(`
			INSERT INTO study_sessions (student_id, created_at, time_spent_minutes, improvement_score)
			VALUES (?, ?, ?, ?);
		`, s.studentID, now.Add(s.offset), s.minutes, s.improvement)
		require.NoError(t, err)
	}

	return db
}

func setupRouter(t *testing.T, db *sql.DB) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	sessionRepo := repository.NewSessionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	svc := scoring.NewService(sessionRepo, snapshotRepo, scoring.DefaultPolicy, logger)

	handlers := handler.NewHandlers(svc, &mocks.InMemoryCache{}, logger, 5*time.Minute)
	return handler.NewRouter(handlers, logger, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, dest any) int {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if dest != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
	}
	return rec.Code
}

func TestE2E_SchoolRanking(t *testing.T) {
	router := setupRouter(t, setupTestDB(t))

	var resp handler.RankingResponse
	code := doJSON(t, router, http.MethodGet, "/v1/rankings/schools/sch-1", &resp)
	require.Equal(t, http.StatusOK, code)

	require.Equal(t, 2, resp.TotalStudents)
	require.Len(t, resp.Entries, 2)

	// stu-1 studied more with better improvement, so it leads.
	assert.Equal(t, "stu-1", resp.Entries[0].StudentID)
	assert.Equal(t, 1, resp.Entries[0].Rank)
	assert.Equal(t, "stu-2", resp.Entries[1].StudentID)
	assert.Equal(t, 2, resp.Entries[1].Rank)
	assert.Greater(t, resp.Entries[0].TotalScore, resp.Entries[1].TotalScore)

	t.Run("top-N view", func(t *testing.T) {
		var top handler.RankingResponse
		code := doJSON(t, router, http.MethodGet, "/v1/rankings/schools/sch-1?top=1", &top)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, top.TotalStudents)
		assert.Len(t, top.Entries, 1)
	})

	t.Run("unknown school is empty, not an error", func(t *testing.T) {
		var empty handler.RankingResponse
		code := doJSON(t, router, http.MethodGet, "/v1/rankings/schools/nowhere", &empty)
		require.Equal(t, http.StatusOK, code)
		assert.Zero(t, empty.TotalStudents)
	})
}

func TestE2E_DistrictRankingIncludesSchoollessStudent(t *testing.T) {
	router := setupRouter(t, setupTestDB(t))

	var resp handler.RankingResponse
	code := doJSON(t, router, http.MethodGet, "/v1/rankings/districts/dst-1", &resp)
	require.Equal(t, http.StatusOK, code)

	// stu-4 has no school but still ranks in its district.
	require.Equal(t, 4, resp.TotalStudents)
	ids := make([]string, 0, 4)
	for _, e := range resp.Entries {
		ids = append(ids, e.StudentID)
	}
	assert.Contains(t, ids, "stu-4")
}

func TestE2E_StudentRankLookup(t *testing.T) {
	router := setupRouter(t, setupTestDB(t))

	var entry handler.RankingEntry
	code := doJSON(t, router, http.MethodGet, "/v1/rankings/schools/sch-1/students/stu-2", &entry)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, entry.Rank)

	code = doJSON(t, router, http.MethodGet, "/v1/rankings/schools/sch-1/students/stu-3", nil)
	assert.Equal(t, http.StatusNotFound, code, "stu-3 belongs to another school")
}

func TestE2E_StudentMetrics(t *testing.T) {
	router := setupRouter(t, setupTestDB(t))

	var metrics scoring.StudentMetrics
	code := doJSON(t, router, http.MethodGet, "/v1/students/stu-1/metrics", &metrics)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "stu-1", metrics.StudentID)
	assert.Equal(t, 85, metrics.AvgImprovement)
	assert.Equal(t, 105, metrics.DailyStudyMinutes)
	assert.Equal(t, 1, metrics.WeeklyStudyDays)

	code = doJSON(t, router, http.MethodGet, "/v1/students/nobody/metrics", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestE2E_SnapshotLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(t, db)

	var first handler.SnapshotRunResponse
	code := doJSON(t, router, http.MethodPost, "/v1/snapshots", &first)
	require.Equal(t, http.StatusCreated, code)
	assert.False(t, first.AlreadyExists)
	// Two school scopes and one district scope hold students.
	require.Len(t, first.Snapshots, 3)

	var second handler.SnapshotRunResponse
	code = doJSON(t, router, http.MethodPost, "/v1/snapshots", &second)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, second.AlreadyExists)
	require.Len(t, second.Snapshots, 3)

	// The repeat run must return the first run's snapshots, not new ones.
	firstIDs := map[string]bool{}
	for _, s := range first.Snapshots {
		firstIDs[s.ID] = true
	}
	for _, s := range second.Snapshots {
		assert.True(t, firstIDs[s.ID], "snapshot %s was rewritten", s.ID)
	}

	t.Run("scope history", func(t *testing.T) {
		var history []handler.SnapshotResponse
		code := doJSON(t, router, http.MethodGet, "/v1/snapshots/school/sch-1", &history)
		require.Equal(t, http.StatusOK, code)
		require.Len(t, history, 1)
		assert.Len(t, history[0].Entries, 2)
		assert.Equal(t, 1, history[0].Entries[0].Rank)
	})

	t.Run("student history", func(t *testing.T) {
		var history []scoring.StudentWeekRecord
		code := doJSON(t, router, http.MethodGet, "/v1/students/stu-1/history", &history)
		require.Equal(t, http.StatusOK, code)
		require.Len(t, history, 1)
		assert.Equal(t, 1, history[0].SchoolRank)
		assert.NotZero(t, history[0].DistrictRank)
	})

	t.Run("invalid scope type", func(t *testing.T) {
		code := doJSON(t, router, http.MethodGet, "/v1/snapshots/classroom/c-1", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestE2E_CachingBehavior(t *testing.T) {
	db := setupTestDB(t)

	logger := zap.NewNop()
	sessionRepo := repository.NewSessionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	svc := scoring.NewService(sessionRepo, snapshotRepo, scoring.DefaultPolicy, logger)

	trackedCache := mocks.NewTrackingCache()
	handlers := handler.NewHandlers(svc, trackedCache, logger, time.Minute)
	router := handler.NewRouter(handlers, logger, nil)

	var resp1 handler.RankingResponse
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/v1/rankings/schools/sch-1", &resp1))
	require.Equal(t, 2, resp1.TotalStudents)

	// The first request stores its response from a goroutine; wait for the
	// write so the second request is guaranteed to hit.
	require.Eventually(t, func() bool {
		_, sets := trackedCache.Stats()
		return sets > 0
	}, 2*time.Second, 10*time.Millisecond, "first response was never stored")

	initialGets, _ := trackedCache.Stats()

	var resp2 handler.RankingResponse
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/v1/rankings/schools/sch-1", &resp2))

	// A hit must carry the stored payload, not a zero value.
	assert.Equal(t, resp1.TotalStudents, resp2.TotalStudents)
	require.Len(t, resp2.Entries, len(resp1.Entries))
	assert.Equal(t, resp1.Entries[0].StudentID, resp2.Entries[0].StudentID)
	assert.Equal(t, resp1.Entries[0].TotalScore, resp2.Entries[0].TotalScore)

	gets, sets := trackedCache.Stats()
	assert.Greater(t, gets, initialGets, "cache should be checked on the second call")

	t.Run("hit populates destination", func(t *testing.T) {
		cache := mocks.NewTrackingCache()
		ctx := context.Background()
		require.NoError(t, cache.Set(ctx, "k", handler.RankingResponse{TotalStudents: 2}, time.Minute))

		var dest handler.RankingResponse
		require.NoError(t, cache.Get(ctx, "k", &dest))
		assert.Equal(t, 2, dest.TotalStudents)
	})

	t.Logf("Cache stats - Gets: %d, Sets: %d", gets, sets)
}
