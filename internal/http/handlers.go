package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/studypulse/ranking-server/internal/scoring"
)

const (
	defaultCacheDuration  = 10 * time.Minute
	defaultRequestTimeout = 10 * time.Second
)

type cacheKeyType string

const (
	cacheKeySchoolRanking   cacheKeyType = "http:rankings:school"
	cacheKeyDistrictRanking cacheKeyType = "http:rankings:district"

	// cacheKeyRankingPrefix covers both ranking key families for invalidation.
	cacheKeyRankingPrefix = "http:rankings:"
)

// Handlers serves the ranking API. Ordered rankings are cached read-through;
// everything else is computed or read per request.
type Handlers struct {
	scoring  RankingService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewHandlers initializes the HTTP handlers.
func NewHandlers(scoring RankingService, cache Cacher, logger *zap.Logger, ttl time.Duration) *Handlers {
	if scoring == nil {
		panic("nil RankingService provided to NewHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Handlers{
		scoring:  scoring,
		cache:    cache,
		logger:   logger.Named("http-handler"),
		cacheTTL: ttl,
	}
}

func scopeKey(prefix cacheKeyType, scopeID string) string {
	return fmt.Sprintf("%s:%s", prefix, scopeID)
}

// parseTop reads the optional top query parameter. Zero means the full list.
func parseTop(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return 0, nil
	}
	top, err := strconv.Atoi(raw)
	if err != nil || top <= 0 {
		return 0, errors.New("top must be a positive integer")
	}
	return top, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch r.Context().Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		writeError(w, http.StatusRequestTimeout, "request canceled")
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}

	switch {
	case errors.Is(err, scoring.ErrStudentNotFound):
		h.logger.Info("student not found", zap.String("op", op))
		writeError(w, http.StatusNotFound, "student not found")
	case errors.Is(err, scoring.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

func (h *Handlers) GetSchoolRanking(w http.ResponseWriter, r *http.Request) {
	schoolID := chi.URLParam(r, "schoolID")
	top, err := parseTop(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := scopeKey(cacheKeySchoolRanking, schoolID)
	resp, err := FindAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (RankingResponse, error) {
		list, err := h.scoring.SchoolRanking(fetchCtx, schoolID, time.Now())
		if err != nil {
			return RankingResponse{}, err
		}
		return RankingResponse{
			ScopeType:     string(scoring.ScopeSchool),
			ScopeID:       schoolID,
			TotalStudents: list.Len(),
			Entries:       toRankingEntries(list.All()),
		}, nil
	})
	if err != nil {
		h.handleError(w, r, "GetSchoolRanking", err)
		return
	}

	if top > 0 && top < len(resp.Entries) {
		resp.Entries = resp.Entries[:top]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetDistrictRanking(w http.ResponseWriter, r *http.Request) {
	districtID := chi.URLParam(r, "districtID")
	top, err := parseTop(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := scopeKey(cacheKeyDistrictRanking, districtID)
	resp, err := FindAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (RankingResponse, error) {
		list, err := h.scoring.DistrictRanking(fetchCtx, districtID, time.Now())
		if err != nil {
			return RankingResponse{}, err
		}
		return RankingResponse{
			ScopeType:     string(scoring.ScopeDistrict),
			ScopeID:       districtID,
			TotalStudents: list.Len(),
			Entries:       toRankingEntries(list.All()),
		}, nil
	})
	if err != nil {
		h.handleError(w, r, "GetDistrictRanking", err)
		return
	}

	if top > 0 && top < len(resp.Entries) {
		resp.Entries = resp.Entries[:top]
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStudentSchoolRank serves a single student's position within their
// school ranking. Bypasses the cache so the constant-time lookup runs
// against the freshest computation.
func (h *Handlers) GetStudentSchoolRank(w http.ResponseWriter, r *http.Request) {
	schoolID := chi.URLParam(r, "schoolID")
	studentID := chi.URLParam(r, "studentID")

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	list, err := h.scoring.SchoolRanking(ctx, schoolID, time.Now())
	if err != nil {
		h.handleError(w, r, "GetStudentSchoolRank", err)
		return
	}

	entry, ok := list.Lookup(studentID)
	if !ok {
		writeError(w, http.StatusNotFound, "student not ranked in this school")
		return
	}
	writeJSON(w, http.StatusOK, toRankingEntry(entry))
}

func (h *Handlers) GetStudentMetrics(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	metrics, err := h.scoring.StudentMetrics(ctx, studentID, time.Now())
	if err != nil {
		h.handleError(w, r, "GetStudentMetrics", err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// CreateSnapshots archives the current week's rankings for every non-empty
// scope. Re-invocation within the same week returns the stored snapshots
// with 200 instead of 201.
func (h *Handlers) CreateSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := h.scoring.SnapshotCurrentWeek(ctx, time.Now())
	if err != nil {
		h.handleError(w, r, "CreateSnapshots", err)
		return
	}

	if !result.AlreadyExists && h.cache != nil {
		go func() {
			delCtx, cancelDel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancelDel()
			if err := h.cache.DeleteByPrefix(delCtx, cacheKeyRankingPrefix); err != nil {
				h.logger.Warn("failed to invalidate ranking cache", zap.Error(err))
			}
		}()
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	writeJSON(w, status, toSnapshotRunResponse(result))
}

func (h *Handlers) GetScopeHistory(w http.ResponseWriter, r *http.Request) {
	scope, ok := scoring.ParseScopeType(chi.URLParam(r, "scopeType"))
	if !ok {
		writeError(w, http.StatusBadRequest, "scope type must be school or district")
		return
	}
	scopeID := chi.URLParam(r, "scopeID")

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	history, err := h.scoring.ScopeHistory(ctx, scope, scopeID)
	if err != nil {
		h.handleError(w, r, "GetScopeHistory", err)
		return
	}

	out := make([]SnapshotResponse, len(history))
	for i, snap := range history {
		out[i] = toSnapshotResponse(snap)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetStudentHistory(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	history, err := h.scoring.StudentHistory(ctx, studentID)
	if err != nil {
		h.handleError(w, r, "GetStudentHistory", err)
		return
	}
	if history == nil {
		history = []scoring.StudentWeekRecord{}
	}
	writeJSON(w, http.StatusOK, history)
}
