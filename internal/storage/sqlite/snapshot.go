package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitquest/internal/models"
)

// SaveSnapshot replaces the stored engine state in one transaction. The XP
// log is append-only, so only awards that are not stored yet are inserted.
func (s *Store) SaveSnapshot(snap models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO engine_state (id, day, day_started, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET day = excluded.day, day_started = excluded.day_started, updated_at = excluded.updated_at`,
		snap.Day, snap.DayStarted, formatTime(snap.UpdatedAt)); err != nil {
		return fmt.Errorf("saving engine state: %w", err)
	}

	for _, table := range []string{"habit_tasks", "habits", "streaks", "mastery", "day_markers"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, h := range snap.Habits {
		if _, err := tx.Exec(`
			INSERT INTO habits (id, name, icon, color, source, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Name, string(h.Icon), string(h.Color), string(h.Source), i, formatTime(h.CreatedAt)); err != nil {
			return fmt.Errorf("saving habit %s: %w", h.ID, err)
		}
		for j, t := range h.Tasks {
			if _, err := tx.Exec(`
				INSERT INTO habit_tasks (id, habit_id, position, text, xp_value, completed)
				VALUES (?, ?, ?, ?, ?, ?)`,
				t.ID, h.ID, j, t.Text, t.XPValue, t.Completed); err != nil {
				return fmt.Errorf("saving task %s: %w", t.ID, err)
			}
		}
	}

	for _, st := range snap.Streaks {
		if _, err := tx.Exec("INSERT INTO streaks (scope, count, last_advanced_day) VALUES (?, ?, ?)",
			st.Scope, st.Count, nullInt(st.LastAdvancedDay)); err != nil {
			return fmt.Errorf("saving streak %s: %w", st.Scope, err)
		}
	}

	for _, m := range snap.Mastery {
		if _, err := tx.Exec(`
			INSERT INTO mastery (habit_id, tier, day_count, gold_completed_at, prestige_completed_at, last_advanced_day)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.HabitID, string(m.Tier), m.DayCount, nullTime(m.GoldCompletedAt), nullTime(m.PrestigeCompletedAt),
			nullInt(m.LastAdvancedDay)); err != nil {
			return fmt.Errorf("saving mastery %s: %w", m.HabitID, err)
		}
	}

	for _, mk := range snap.Markers {
		if _, err := tx.Exec("INSERT INTO day_markers (kind, habit_id, task_id, day) VALUES (?, ?, ?, ?)",
			string(mk.Kind), mk.HabitID, mk.TaskID, mk.Day); err != nil {
			return fmt.Errorf("saving day marker: %w", err)
		}
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
		// the stored log is not a prefix of ours, e.g. after a restore
		if _, err := tx.Exec("DELETE FROM xp_awards"); err != nil {
			return fmt.Errorf("clearing xp awards: %w", err)
		}
		stored = 0
	}

	stmt, err := tx.Prepare(`
		INSERT INTO xp_awards (seq, source, amount, habit_id, day, awarded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := stored; i < len(log); i++ {
		a := log[i]
		if _, err := stmt.Exec(i+1, string(a.Source), a.Amount, a.HabitID, a.Day, formatTime(a.Timestamp)); err != nil {
			return fmt.Errorf("saving xp award %d: %w", i+1, err)
		}
	}
	return nil
}

// LoadSnapshot reads the stored engine state. A database that has never
// saved a snapshot yields an empty one.
func (s *Store) LoadSnapshot() (models.Snapshot, error) {
	var snap models.Snapshot
	var updatedAt string
	err := s.db.QueryRow("SELECT day, day_started, updated_at FROM engine_state WHERE id = 1").
		Scan(&snap.Day, &snap.DayStarted, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, nil
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("loading engine state: %w", err)
	}
	if snap.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Snapshot{}, err
	}

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
		var icon, color, source, createdAt string
		if err := rows.Scan(&h.ID, &h.Name, &icon, &color, &source, &createdAt); err != nil {
			return nil, err
		}
		h.Icon, h.Color, h.Source = models.Icon(icon), models.Color(color), models.HabitSource(source)
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

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
		var source, awardedAt string
		if err := rows.Scan(&source, &a.Amount, &a.HabitID, &a.Day, &awardedAt); err != nil {
			return nil, err
		}
		a.Source = models.XPSource(source)
		if a.Timestamp, err = parseTime(awardedAt); err != nil {
			return nil, err
		}
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
		var gold, prestige sql.NullString
		var last sql.NullInt64
		if err := rows.Scan(&m.HabitID, &tier, &m.DayCount, &gold, &prestige, &last); err != nil {
			return nil, err
		}
		m.Tier = models.MasteryTier(tier)
		if m.GoldCompletedAt, err = timePtr(gold); err != nil {
			return nil, err
		}
		if m.PrestigeCompletedAt, err = timePtr(prestige); err != nil {
			return nil, err
		}
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

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
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

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func timePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
