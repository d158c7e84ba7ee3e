package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studypulse/ranking-server/internal/repository/models"
	"github.com/studypulse/ranking-server/pkg/timeutil"
)

const dbTimeout = 3 * time.Second

var (
	ErrStorageFailure  = errors.New("storage failure")
	ErrStudentNotFound = errors.New("student not found")

	// ErrSnapshotExists signals that a snapshot for the (scope, week) key was
	// already written. It is recoverable: the existing snapshot is returned
	// alongside it and callers should treat the call as a success.
	ErrSnapshotExists = errors.New("snapshot already exists for this scope and week")
)

// Service is the engagement scoring and ranking engine. Every computation
// runs over a point-in-time snapshot of the session store fetched at the
// start of the call; nothing is cached between runs.
type Service struct {
	sessions   SessionRepository
	snapshots  SnapshotRepository
	aggregator Aggregator
	calculator Calculator
	policy     Policy
	logger     *zap.Logger
}

// NewService creates a new scoring Service instance.
func NewService(sessions SessionRepository, snapshots SnapshotRepository, policy Policy, logger *zap.Logger) *Service {
	if sessions == nil {
		panic("session repository must not be nil")
	}
	if snapshots == nil {
		panic("snapshot repository must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &Service{
		sessions:   sessions,
		snapshots:  snapshots,
		aggregator: NewAggregator(policy),
		calculator: NewCalculator(policy),
		policy:     policy,
		logger:     logger,
	}
}

// StudentMetrics recomputes one student's metrics from their full session
// history against the reference instant now.
func (s *Service) StudentMetrics(ctx context.Context, studentID string, now time.Time) (StudentMetrics, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.sessions.GetStudent(dbCtx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StudentMetrics{}, ErrStudentNotFound
		}
		return StudentMetrics{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	rows, err := s.sessions.ListSessionsByStudent(dbCtx, studentID)
	if err != nil {
		return StudentMetrics{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return s.aggregator.Metrics(studentID, sessionsFromRows(rows), now), nil
}

// ComputeRankings scores the whole population and ranks every scope.
// An empty population yields empty rankings, not an error; a store read
// failure is fatal to the run and surfaced unmodified.
func (s *Service) ComputeRankings(ctx context.Context, now time.Time) (*RankingRun, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	studentRows, err := s.sessions.ListStudents(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	sessionRows, err := s.sessions.ListSessions(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	byStudent := make(map[string][]StudySession, len(studentRows))
	for _, row := range sessionRows {
		sess := sessionFromRow(row)
		byStudent[sess.StudentID] = append(byStudent[sess.StudentID], sess)
	}

	population := make([]ScoredStudent, 0, len(studentRows))
	for _, row := range studentRows {
		student := studentFromRow(row)
		metrics := s.aggregator.Metrics(student.ID, byStudent[student.ID], now)
		population = append(population, ScoredStudent{
			Student:    student,
			Metrics:    metrics,
			TotalScore: s.calculator.Score(metrics),
		})
	}

	groups := GroupByScope(population)

	run := &RankingRun{
		ComputedAt: now,
		WeekStart:  timeutil.StartOfWeek(now, s.policy.WeekStartDay),
		WeekEnd:    timeutil.EndOfWeek(now, s.policy.WeekStartDay),
		BySchool:   RankGroups(groups.Schools),
		ByDistrict: RankGroups(groups.Districts),
		Exclusions: groups.Exclusions,
	}

	s.logger.Info("computed rankings",
		zap.Int("students", len(population)),
		zap.Int("schools", len(run.BySchool)),
		zap.Int("districts", len(run.ByDistrict)),
		zap.Int("exclusions", len(run.Exclusions)))

	return run, nil
}

// SchoolRanking returns one school's ordered ranking. An unknown school id
// yields an empty ranking.
func (s *Service) SchoolRanking(ctx context.Context, schoolID string, now time.Time) (*RankedList, error) {
	run, err := s.ComputeRankings(ctx, now)
	if err != nil {
		return nil, err
	}
	if list, ok := run.BySchool[schoolID]; ok {
		return list, nil
	}
	return Rank(nil), nil
}

// DistrictRanking returns one district's ordered ranking.
func (s *Service) DistrictRanking(ctx context.Context, districtID string, now time.Time) (*RankedList, error) {
	run, err := s.ComputeRankings(ctx, now)
	if err != nil {
		return nil, err
	}
	if list, ok := run.ByDistrict[districtID]; ok {
		return list, nil
	}
	return Rank(nil), nil
}

// SnapshotWeek archives one scope's ranking for the given week. The write is
// atomic and keyed by (scope, scope id, week start); re-invocation for an
// existing key returns the stored snapshot together with ErrSnapshotExists.
func (s *Service) SnapshotWeek(ctx context.Context, scope ScopeType, scopeID string, weekStart, weekEnd time.Time, ranked *RankedList) (RankingSnapshot, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	snap := RankingSnapshot{
		ID:        uuid.NewString(),
		Scope:     scope,
		ScopeID:   scopeID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		CreatedAt: time.Now().UTC(),
		Entries:   ranked.All(),
	}

	created, err := s.snapshots.InsertSnapshot(dbCtx, snapshotToRow(snap), entriesToRows(snap))
	if err != nil {
		return RankingSnapshot{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if created {
		s.logger.Info("snapshot written",
			zap.String("scope", string(scope)),
			zap.String("scope_id", scopeID),
			zap.Time("week_start", weekStart),
			zap.Int("entries", len(snap.Entries)))
		return snap, nil
	}

	existing, err := s.loadSnapshot(dbCtx, scope, scopeID, weekStart)
	if err != nil {
		return RankingSnapshot{}, err
	}
	return existing, ErrSnapshotExists
}

// SnapshotCurrentWeek computes the current rankings and archives every
// non-empty scope for the week containing now. Idempotent per scope: scopes
// already archived for the week are returned as-is.
func (s *Service) SnapshotCurrentWeek(ctx context.Context, now time.Time) (SnapshotWeekResult, error) {
	run, err := s.ComputeRankings(ctx, now)
	if err != nil {
		return SnapshotWeekResult{}, err
	}

	result := SnapshotWeekResult{
		WeekStart: run.WeekStart,
		WeekEnd:   run.WeekEnd,
	}

	createdAny := false
	for _, scoped := range []struct {
		scope ScopeType
		lists map[string]*RankedList
	}{
		{ScopeSchool, run.BySchool},
		{ScopeDistrict, run.ByDistrict},
	} {
		for _, scopeID := range sortedKeys(scoped.lists) {
			snap, err := s.SnapshotWeek(ctx, scoped.scope, scopeID, run.WeekStart, run.WeekEnd, scoped.lists[scopeID])
			switch {
			case err == nil:
				createdAny = true
			case errors.Is(err, ErrSnapshotExists):
				// Keep the stored record; first writer won.
			default:
				return SnapshotWeekResult{}, err
			}
			result.Snapshots = append(result.Snapshots, snap)
		}
	}

	result.AlreadyExists = len(result.Snapshots) > 0 && !createdAny
	return result, nil
}

// ScopeHistory lists a scope's archived snapshots ordered by week.
func (s *Service) ScopeHistory(ctx context.Context, scope ScopeType, scopeID string) ([]RankingSnapshot, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.snapshots.ListSnapshots(dbCtx, string(scope), scopeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	history := make([]RankingSnapshot, 0, len(rows))
	for _, row := range rows {
		entries, err := s.snapshots.ListSnapshotEntries(dbCtx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		history = append(history, snapshotFromRows(row, entries))
	}
	return history, nil
}

// StudentHistory folds a student's archived weeks into one record per week
// carrying both scope ranks and the composite score.
func (s *Service) StudentHistory(ctx context.Context, studentID string) ([]StudentWeekRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.snapshots.ListStudentWeeks(dbCtx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	byWeek := make(map[string]*StudentWeekRecord)
	order := make([]string, 0)
	for _, row := range rows {
		key := timeutil.DateKey(row.WeekStart)
		rec, ok := byWeek[key]
		if !ok {
			rec = &StudentWeekRecord{WeekStart: row.WeekStart, WeekEnd: row.WeekEnd}
			byWeek[key] = rec
			order = append(order, key)
		}
		switch ScopeType(row.ScopeType) {
		case ScopeSchool:
			rec.SchoolRank = row.Rank
		case ScopeDistrict:
			rec.DistrictRank = row.Rank
		}
		rec.TotalScore = row.TotalScore
	}

	sort.Strings(order)
	history := make([]StudentWeekRecord, 0, len(order))
	for _, key := range order {
		history = append(history, *byWeek[key])
	}
	return history, nil
}

func (s *Service) loadSnapshot(ctx context.Context, scope ScopeType, scopeID string, weekStart time.Time) (RankingSnapshot, error) {
	row, entries, err := s.snapshots.GetSnapshot(ctx, string(scope), scopeID, weekStart)
	if err != nil {
		return RankingSnapshot{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return snapshotFromRows(row, entries), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func studentFromRow(row models.StudentRow) Student {
	return Student{
		ID:         row.ID,
		Name:       row.Name,
		SchoolID:   row.SchoolID.String,
		DistrictID: row.DistrictID.String,
	}
}

func sessionFromRow(row models.SessionRow) StudySession {
	sess := StudySession{
		StudentID: row.StudentID,
		CreatedAt: row.CreatedAt,
	}
	if row.TimeSpentMinutes.Valid {
		sess.TimeSpentMinutes = int(row.TimeSpentMinutes.Int64)
	}
	if row.ImprovementScore.Valid {
		v := int(row.ImprovementScore.Int64)
		sess.ImprovementScore = &v
	}
	return sess
}

func sessionsFromRows(rows []models.SessionRow) []StudySession {
	sessions := make([]StudySession, len(rows))
	for i, row := range rows {
		sessions[i] = sessionFromRow(row)
	}
	return sessions
}

func snapshotToRow(snap RankingSnapshot) models.SnapshotRow {
	return models.SnapshotRow{
		ID:        snap.ID,
		ScopeType: string(snap.Scope),
		ScopeID:   snap.ScopeID,
		WeekStart: snap.WeekStart,
		WeekEnd:   snap.WeekEnd,
		CreatedAt: snap.CreatedAt,
	}
}

func entriesToRows(snap RankingSnapshot) []models.SnapshotEntryRow {
	rows := make([]models.SnapshotEntryRow, len(snap.Entries))
	for i, e := range snap.Entries {
		rows[i] = models.SnapshotEntryRow{
			SnapshotID:        snap.ID,
			Rank:              e.Rank,
			StudentID:         e.ID,
			StudentName:       e.Name,
			TotalScore:        e.TotalScore,
			AvgImprovement:    e.Metrics.AvgImprovement,
			DailyStudyMinutes: e.Metrics.DailyStudyMinutes,
			WeeklyStudyDays:   e.Metrics.WeeklyStudyDays,
		}
	}
	return rows
}

func snapshotFromRows(row models.SnapshotRow, entryRows []models.SnapshotEntryRow) RankingSnapshot {
	entries := make([]RankedStudent, len(entryRows))
	for i, e := range entryRows {
		entries[i] = RankedStudent{
			ScoredStudent: ScoredStudent{
				Student: Student{ID: e.StudentID, Name: e.StudentName},
				Metrics: StudentMetrics{
					StudentID:         e.StudentID,
					AvgImprovement:    e.AvgImprovement,
					DailyStudyMinutes: e.DailyStudyMinutes,
					WeeklyStudyDays:   e.WeeklyStudyDays,
				},
				TotalScore: e.TotalScore,
			},
			Rank: e.Rank,
		}
	}
	return RankingSnapshot{
		ID:        row.ID,
		Scope:     ScopeType(row.ScopeType),
		ScopeID:   row.ScopeID,
		WeekStart: row.WeekStart,
		WeekEnd:   row.WeekEnd,
		CreatedAt: row.CreatedAt,
		Entries:   entries,
	}
}
