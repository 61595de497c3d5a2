package core

import (
	"testing"
	"time"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/dataset"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(max int) (*SessionStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	st := NewSessionStore(max, analysis.DefaultResponder)
	st.now = clock.now
	return st, clock
}

// ---- Session Tests ----

func TestSession_InstallNewestWins(t *testing.T) {
	s := &session{}
	older := &dataset.Dataset{ID: "older"}
	newer := &dataset.Dataset{ID: "newer"}

	if !s.install(newer, 2) {
		t.Fatal("first install rejected")
	}
	if s.install(older, 1) {
		t.Error("install with a lower sequence must be rejected")
	}
	if got := s.current().ID; got != "newer" {
		t.Errorf("current = %q, want newer", got)
	}
}

// ---- SessionStore Tests ----

func TestSessionStore_GetOrCreate(t *testing.T) {
	st, _ := newTestStore(10)

	if _, ok := st.get("a"); ok {
		t.Fatal("get created a session")
	}

	a1 := st.getOrCreate("a")
	a2 := st.getOrCreate("a")
	if a1 != a2 {
		t.Error("getOrCreate returned different sessions for the same ID")
	}
	if a1.conv.Len() != 1 {
		t.Errorf("new session conversation length = %d, want 1", a1.conv.Len())
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}

func TestSessionStore_EvictsLeastRecent(t *testing.T) {
	st, clock := newTestStore(2)

	st.getOrCreate("a")
	clock.advance(time.Second)
	st.getOrCreate("b")
	clock.advance(time.Second)
	st.get("a") // a is now more recent than b
	clock.advance(time.Second)
	st.getOrCreate("c")

	if st.Len() != 2 {
		t.Fatalf("Len = %d, want 2", st.Len())
	}
	if _, ok := st.get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, id := range []string{"a", "c"} {
		if _, ok := st.get(id); !ok {
			t.Errorf("expected %s to survive", id)
		}
	}
}

func TestSessionStore_Sweep(t *testing.T) {
	st, clock := newTestStore(10)

	st.getOrCreate("idle")
	clock.advance(20 * time.Minute)
	st.getOrCreate("active")
	clock.advance(15 * time.Minute)

	if removed := st.Sweep(30 * time.Minute); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if _, ok := st.get("idle"); ok {
		t.Error("idle session survived the sweep")
	}
	if _, ok := st.get("active"); !ok {
		t.Error("active session was swept")
	}
}

func TestSessionStore_Delete(t *testing.T) {
	st, _ := newTestStore(10)
	st.getOrCreate("a")

	if !st.Delete("a") {
		t.Error("Delete returned false for an existing session")
	}
	if st.Delete("a") {
		t.Error("Delete returned true for a missing session")
	}
}

// ---- Janitor Tests ----

func TestJanitorConfig_Defaults(t *testing.T) {
	cfg := JanitorConfig{}.withDefaults()
	if cfg.TTL != 30*time.Minute || cfg.Interval != time.Minute {
		t.Errorf("defaults = %+v", cfg)
	}

	cfg = JanitorConfig{TTL: time.Hour, Interval: 5 * time.Second}.withDefaults()
	if cfg.TTL != time.Hour || cfg.Interval != 5*time.Second {
		t.Errorf("explicit values overridden: %+v", cfg)
	}
}

func TestService_RunSweep(t *testing.T) {
	svc := NewService(Options{})
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc.sessions.now = clock.now

	if err := svc.ClearConversation("s1"); err != nil {
		t.Fatalf("ClearConversation: %v", err)
	}
	clock.advance(time.Hour)
	svc.runSweep(30 * time.Minute)

	if n := svc.SessionCount(); n != 0 {
		t.Errorf("SessionCount = %d after sweep, want 0", n)
	}
}
