package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habitquest/internal/models"
)

// SaveSnapshot replaces the stored engine state in one transaction. New XP
// awards and day markers are streamed with COPY.
func (s *Store) SaveSnapshot(snap models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO engine_state (id, day, day_started, updated_at) VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET day = EXCLUDED.day, day_started = EXCLUDED.day_started, updated_at = EXCLUDED.updated_at`,
		snap.Day, snap.DayStarted, snap.UpdatedAt.UTC()); err != nil {
		return fmt.Errorf("saving engine state: %w", err)
	}

	if _, err := tx.Exec("TRUNCATE habit_tasks, habits, streaks, mastery, day_markers"); err != nil {
		return fmt.Errorf("clearing engine state: %w", err)
	}

	for i, h := range snap.Habits {
		if _, err := tx.Exec(`
			INSERT INTO habits (id, name, icon, color, source, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			h.ID, h.Name, string(h.Icon), string(h.Color), string(h.Source), i, h.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("saving habit %s: %w", h.ID, err)
		}
		for j, t := range h.Tasks {
			if _, err := tx.Exec(`
				INSERT INTO habit_tasks (id, habit_id, position, text, xp_value, completed)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				t.ID, h.ID, j, t.Text, t.XPValue, t.Completed); err != nil {
				return fmt.Errorf("saving task %s: %w", t.ID, err)
			}
		}
	}

	for _, st := range snap.Streaks {
		if _, err := tx.Exec("INSERT INTO streaks (scope, count, last_advanced_day) VALUES ($1, $2, $3)",
			st.Scope, st.Count, nullInt(st.LastAdvancedDay)); err != nil {
			return fmt.Errorf("saving streak %s: %w", st.Scope, err)
		}
	}

	for _, m := range snap.Mastery {
		if _, err := tx.Exec(`
			INSERT INTO mastery (habit_id, tier, day_count, gold_completed_at, prestige_completed_at, last_advanced_day)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			m.HabitID, string(m.Tier), m.DayCount, nullTime(m.GoldCompletedAt), nullTime(m.PrestigeCompletedAt),
			nullInt(m.LastAdvancedDay)); err != nil {
			return fmt.Errorf("saving mastery %s: %w", m.HabitID, err)
		}
	}

	if err := copyRows(tx, "day_markers", []string{"kind", "habit_id", "task_id", "day"}, len(snap.Markers), func(i int) []any {
		mk := snap.Markers[i]
		return []any{string(mk.Kind), mk.HabitID, mk.TaskID, mk.Day}
	}); err != nil {
		return fmt.Errorf("saving day markers: %w", err)
	}

	if err := appendAwards(tx, snap.XPLog); err != nil {
		return err
	}

	return tx.Commit()
}

func appendAwards(tx *sql.Tx, log []models.XPAward) error {
	var stored int
	if err := tx.QueryRow("SELECT COUNT(*) FROM xp_awards").Scan(&stored); err != nil {
		return fmt.Errorf("counting xp awards: %w", err)
	}
	if stored > len(log) {
		if _, err := tx.Exec("DELETE FROM xp_awards"); err != nil {
			return fmt.Errorf("clearing xp awards: %w", err)
		}
		stored = 0
	}

	tail := log[stored:]
	err := copyRows(tx, "xp_awards", []string{"seq", "source", "amount", "habit_id", "day", "awarded_at"}, len(tail), func(i int) []any {
		a := tail[i]
		return []any{stored + i + 1, string(a.Source), a.Amount, a.HabitID, a.Day, a.Timestamp.UTC()}
	})
	if err != nil {
		return fmt.Errorf("saving xp awards: %w", err)
	}
	return nil
}

func copyRows(tx *sql.Tx, table string, columns []string, n int, row func(int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.Prepare(pq.CopyIn(table, columns...))
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(row(i)...); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return err
	}
	return stmt.Close()
}

// LoadSnapshot reads the stored engine state. A database that has never
// saved a snapshot yields an empty one.
func (s *Store) LoadSnapshot() (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.db.QueryRow("SELECT day, day_started, updated_at FROM engine_state WHERE id = 1").
		Scan(&snap.Day, &snap.DayStarted, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, nil
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("loading engine state: %w", err)
	}
	snap.UpdatedAt = snap.UpdatedAt.UTC()

	if snap.Habits, err = s.loadHabits(); err != nil {
		return models.Snapshot{}, err
	}
	if snap.XPLog, err = s.loadAwards(); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Streaks, err = s.loadStreaks(); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Mastery, err = s.loadMastery(); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Markers, err = s.loadMarkers(); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) loadHabits() ([]models.Habit, error) {
	rows, err := s.db.Query("SELECT id, name, icon, color, source, created_at FROM habits ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("loading habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	index := make(map[string]int)
	for rows.Next() {
		var h models.Habit
		var icon, color, source string
		if err := rows.Scan(&h.ID, &h.Name, &icon, &color, &source, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Icon, h.Color, h.Source = models.Icon(icon), models.Color(color), models.HabitSource(source)
		h.CreatedAt = h.CreatedAt.UTC()
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := s.db.Query("SELECT id, habit_id, text, xp_value, completed FROM habit_tasks ORDER BY habit_id, position")
	if err != nil {
		return nil, fmt.Errorf("loading habit tasks: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var t models.Task
		var habitID string
		if err := taskRows.Scan(&t.ID, &habitID, &t.Text, &t.XPValue, &t.Completed); err != nil {
			return nil, err
		}
		i, ok := index[habitID]
		if !ok {
			return nil, fmt.Errorf("task %s references unknown habit %s", t.ID, habitID)
		}
		habits[i].Tasks = append(habits[i].Tasks, t)
	}
	return habits, taskRows.Err()
}

func (s *Store) loadAwards() ([]models.XPAward, error) {
	rows, err := s.db.Query("SELECT source, amount, habit_id, day, awarded_at FROM xp_awards ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("loading xp awards: %w", err)
	}
	defer rows.Close()

	var awards []models.XPAward
	for rows.Next() {
		var a models.XPAward
		var source string
		if err := rows.Scan(&source, &a.Amount, &a.HabitID, &a.Day, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Source = models.XPSource(source)
		a.Timestamp = a.Timestamp.UTC()
		awards = append(awards, a)
	}
	return awards, rows.Err()
}

func (s *Store) loadStreaks() ([]models.StreakState, error) {
	rows, err := s.db.Query("SELECT scope, count, last_advanced_day FROM streaks ORDER BY scope")
	if err != nil {
		return nil, fmt.Errorf("loading streaks: %w", err)
	}
	defer rows.Close()

	streaks := []models.StreakState{}
	for rows.Next() {
		var st models.StreakState
		var last sql.NullInt64
		if err := rows.Scan(&st.Scope, &st.Count, &last); err != nil {
			return nil, err
		}
		st.LastAdvancedDay = intPtr(last)
		streaks = append(streaks, st)
	}
	return streaks, rows.Err()
}

func (s *Store) loadMastery() ([]models.MasteryState, error) {
	rows, err := s.db.Query(`
		SELECT habit_id, tier, day_count, gold_completed_at, prestige_completed_at, last_advanced_day
		FROM mastery ORDER BY habit_id`)
	if err != nil {
		return nil, fmt.Errorf("loading mastery: %w", err)
	}
	defer rows.Close()

	states := []models.MasteryState{}
	for rows.Next() {
		var m models.MasteryState
		var tier string
		var gold, prestige sql.NullTime
		var last sql.NullInt64
		if err := rows.Scan(&m.HabitID, &tier, &m.DayCount, &gold, &prestige, &last); err != nil {
			return nil, err
		}
		m.Tier = models.MasteryTier(tier)
		m.GoldCompletedAt = timePtr(gold)
		m.PrestigeCompletedAt = timePtr(prestige)
		m.LastAdvancedDay = intPtr(last)
		states = append(states, m)
	}
	return states, rows.Err()
}

func (s *Store) loadMarkers() ([]models.DayMarker, error) {
	rows, err := s.db.Query("SELECT kind, habit_id, task_id, day FROM day_markers ORDER BY day, kind, habit_id, task_id")
	if err != nil {
		return nil, fmt.Errorf("loading day markers: %w", err)
	}
	defer rows.Close()

	markers := []models.DayMarker{}
	for rows.Next() {
		var m models.DayMarker
		var kind string
		if err := rows.Scan(&kind, &m.HabitID, &m.TaskID, &m.Day); err != nil {
			return nil, err
		}
		m.Kind = models.MarkerKind(kind)
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
