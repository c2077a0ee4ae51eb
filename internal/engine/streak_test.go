package engine

import "testing"

func TestStreakTracker_RecordDayOutcome(t *testing.T) {
	type step struct {
		completed bool
		day       int
		want      int
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{"first success", []step{{true, 4, 1}}},
		{"consecutive days", []step{{true, 1, 1}, {true, 2, 2}, {true, 3, 3}}},
		{"same day twice", []step{{true, 1, 1}, {true, 1, 1}}},
		{"out of order day ignored", []step{{true, 5, 1}, {true, 6, 2}, {true, 4, 2}}},
		{"gap restarts at one", []step{{true, 1, 1}, {true, 2, 2}, {true, 5, 1}}},
		{"failure resets", []step{{true, 1, 1}, {true, 2, 2}, {false, 3, 0}, {true, 4, 1}}},
		{"failure on counted day resets", []step{{true, 5, 1}, {false, 5, 0}}},
		{"failure before counted day resets", []step{{true, 1, 1}, {true, 2, 2}, {false, 1, 0}, {true, 3, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStreakTracker()
			for i, st := range tt.steps {
				if got := s.RecordDayOutcome("habit", st.completed, st.day); got != st.want {
					t.Fatalf("step %d: RecordDayOutcome(%v, %d) = %d, want %d", i, st.completed, st.day, got, st.want)
				}
			}
		})
	}
}

func TestStreakTracker_ScopesAreIndependent(t *testing.T) {
	s := NewStreakTracker()
	s.RecordDayOutcome("a", true, 1)
	s.RecordDayOutcome("a", true, 2)
	s.RecordDayOutcome("b", true, 2)

	if s.Current("a") != 2 || s.Current("b") != 1 {
		t.Fatalf("unexpected counts a=%d b=%d", s.Current("a"), s.Current("b"))
	}
	if s.Current("unknown") != 0 {
		t.Error("unknown scope should report 0")
	}

	s.Reset("a")
	if s.Current("a") != 0 || s.State("a").LastAdvancedDay != nil {
		t.Error("Reset should zero the scope and clear its last day")
	}
	s.Remove("b")
	if len(s.States()) != 1 {
		t.Errorf("expected 1 scope after Remove, got %d", len(s.States()))
	}
}

func TestStreakTracker_StateIsCopy(t *testing.T) {
	s := NewStreakTracker()
	s.RecordDayOutcome("a", true, 1)
	st := s.State("a")
	*st.LastAdvancedDay = 99
	if !s.AdvancedOn("a", 1) {
		t.Error("mutating a returned state must not affect the tracker")
	}
}
