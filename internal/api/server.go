// Package api serves a read-only JSON view of the stored progress, the
// recent reward feed and Prometheus metrics.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/metrics"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/notifier"
	"github.com/julianstephens/habitquest/internal/utils"
)

// SnapshotSource is the part of the storage provider the server reads
type SnapshotSource interface {
	LoadSnapshot() (models.Snapshot, error)
}

// Server is the HTTP API. It never mutates the stored state; CLI commands
// push the events they produce to POST /api/events.
type Server struct {
	source   SnapshotSource
	recorder *metrics.Recorder
	feed     *Feed
	secret   string
	now      func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithMetrics mounts /metrics and feeds posted events to the recorder
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithSecret requires the secret header on POST /api/events
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = secret }
}

// WithClock overrides the receive timestamp of feed entries
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a server reading from source
func NewServer(source SnapshotSource, opts ...Option) *Server {
	s := &Server{
		source: source,
		feed:   NewFeed(constants.RecentEventsLimit),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Secret returns the secret clients must send with events
func (s *Server) Secret() string {
	return s.secret
}

// Handler returns the chi router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(constants.ServerReadTimeout))
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", s.handleProgress)
		r.Get("/habits", s.handleHabits)
		r.Get("/habits/{id}", s.handleHabit)
		r.Get("/xp", s.handleXP)
		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handlePostEvents)
	})

	if s.recorder != nil {
		r.Handle("/metrics", s.recorder.Handler())
	}

	return r
}

// ProgressResponse is the body of GET /api/progress
type ProgressResponse struct {
	Day          int                   `json:"day"`
	Date         string                `json:"date,omitempty"`
	XP           int                   `json:"xp"`
	Level        int                   `json:"level"`
	XPIntoLevel  int                   `json:"xp_into_level"`
	XPPerLevel   int                   `json:"xp_per_level"`
	GlobalStreak int                   `json:"global_streak"`
	Slots        models.SlotAllocation `json:"slots"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// HabitResponse is a habit together with its streak and badge state
type HabitResponse struct {
	models.Habit
	Active  bool                `json:"active"`
	Done    bool                `json:"done_today"`
	Streak  int                 `json:"streak"`
	Mastery models.MasteryState `json:"mastery"`
}

func (s *Server) load() (*engine.Engine, models.Snapshot, error) {
	snap, err := s.source.LoadSnapshot()
	if err != nil {
		return nil, snap, err
	}
	e, err := engine.FromSnapshot(snap)
	if err != nil {
		return nil, snap, err
	}
	return e, snap, nil
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	e, snap, err := s.load()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progressOf(e.Summary(), snap.UpdatedAt))
}

func progressOf(sum engine.Summary, updatedAt time.Time) ProgressResponse {
	p := ProgressResponse{
		Day:          sum.Day,
		XP:           sum.XPTotal,
		Level:        sum.Level,
		XPIntoLevel:  sum.XPTotal % constants.XPPerLevel,
		XPPerLevel:   constants.XPPerLevel,
		GlobalStreak: sum.GlobalStreak,
		Slots:        sum.Slots,
		UpdatedAt:    updatedAt,
	}
	if sum.DayStarted {
		p.Date = utils.DayDate(sum.Day)
	}
	return p
}

func habitOf(e *engine.Engine, h models.Habit) HabitResponse {
	return HabitResponse{
		Habit:   h,
		Active:  h.IsActive(),
		Done:    h.IsActive() && h.CompletedCount() == len(h.Tasks),
		Streak:  e.Streak(h.ID),
		Mastery: e.Mastery(h.ID),
	}
}

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	e, _, err := s.load()
	if err != nil {
		writeAppError(w, err)
		return
	}
	habits := e.Habits()
	out := make([]HabitResponse, 0, len(habits))
	for _, h := range habits {
		out = append(out, habitOf(e, h))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHabit(w http.ResponseWriter, r *http.Request) {
	e, _, err := s.load()
	if err != nil {
		writeAppError(w, err)
		return
	}
	h, err := e.Habit(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habitOf(e, h))
}

func (s *Server) handleXP(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, _, err := s.load()
	if err != nil {
		writeAppError(w, err)
		return
	}
	log := e.XPLog()
	if limit > 0 && limit < len(log) {
		log = log[len(log)-limit:]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"total": e.XPTotal(), "awards": log})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, constants.RecentEventsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.feed.Recent(limit))
}

func (s *Server) handlePostEvents(w http.ResponseWriter, r *http.Request) {
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(r.Header.Get(constants.ServerSecretHeader)), []byte(s.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload notifier.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	s.feed.Add(payload.Events, s.now())
	if s.recorder != nil {
		if e, _, err := s.load(); err == nil {
			s.recorder.Observe(payload.Events, e.Summary())
		} else {
			logger.Warn("Failed to refresh metrics", "error", err)
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(payload.Events)})
}

// SyncMetrics sets the gauges from the stored state
func (s *Server) SyncMetrics() error {
	if s.recorder == nil {
		return nil
	}
	e, _, err := s.load()
	if err != nil {
		return err
	}
	s.recorder.Sync(e.Summary())
	return nil
}

func limitParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return n, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
		},
	})
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
