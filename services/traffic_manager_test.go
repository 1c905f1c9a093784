package services

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"cyber-battleship/database"
	"cyber-battleship/models"
)

type captureBroadcaster struct {
	mu       sync.Mutex
	events   []string
	payloads []interface{}
}

func (c *captureBroadcaster) ToTeam(teamID, event string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, teamID+":"+event)
	c.payloads = append(c.payloads, data)
}

func (c *captureBroadcaster) ToAll(event string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, "*:"+event)
}

func (c *captureBroadcaster) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *captureBroadcaster) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return ""
	}
	return c.events[len(c.events)-1]
}

func newTestTrafficManager(t *testing.T, clock clockwork.Clock) (*TrafficManager, *GameManager, *captureBroadcaster) {
	t.Helper()
	gm := NewGameManager(database.NewMemory(), DefaultConfig, clock)
	if _, err := gm.CreateTeam("ALPHA", "Alpha"); err != nil {
		t.Fatal(err)
	}
	capture := &captureBroadcaster{}
	tm, err := NewTrafficManager(gm, NewDifficultyScaler(clock), capture, DefaultTrafficSettings(), clock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tm.Shutdown() })
	return tm, gm, capture
}

func TestTrafficTickPublishesToTeam(t *testing.T) {
	tm, _, capture := newTestTrafficManager(t, clockwork.NewFakeClock())

	if err := tm.StartTrafficForTeam("ALPHA"); err != nil {
		t.Fatal(err)
	}

	tm.trafficTick("ALPHA", 0)
	if capture.count() != 1 {
		t.Fatalf("events = %d, want 1", capture.count())
	}
	if capture.last() != "ALPHA:traffic_message" {
		t.Fatalf("event = %q, want ALPHA:traffic_message", capture.last())
	}
}

func TestStartTrafficUnknownTeam(t *testing.T) {
	tm, _, _ := newTestTrafficManager(t, clockwork.NewFakeClock())
	if err := tm.StartTrafficForTeam("GHOST"); err == nil {
		t.Fatal("expected error for unknown team")
	}
}

func TestStoppedFeedIgnoresQueuedTicks(t *testing.T) {
	tm, _, capture := newTestTrafficManager(t, clockwork.NewFakeClock())

	if err := tm.StartTrafficForTeam("ALPHA"); err != nil {
		t.Fatal(err)
	}
	tm.StopTrafficForTeam("ALPHA")

	// A tick scheduled before the stop carries the old generation.
	tm.trafficTick("ALPHA", 0)
	if capture.count() != 0 {
		t.Fatalf("stale tick published %d events", capture.count())
	}
}

func TestRestartInvalidatesOldGeneration(t *testing.T) {
	tm, _, capture := newTestTrafficManager(t, clockwork.NewFakeClock())

	if err := tm.StartTrafficForTeam("ALPHA"); err != nil {
		t.Fatal(err)
	}
	if err := tm.StartTrafficForTeam("ALPHA"); err != nil {
		t.Fatal(err)
	}

	tm.trafficTick("ALPHA", 0) // first incarnation, now stale
	if capture.count() != 0 {
		t.Fatalf("stale tick published %d events", capture.count())
	}
	tm.trafficTick("ALPHA", 1)
	if capture.count() != 1 {
		t.Fatalf("live tick events = %d, want 1", capture.count())
	}
}

func TestDifficultyTickRaisesActiveShips(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tm, gm, capture := newTestTrafficManager(t, clock)

	if err := tm.StartTrafficForTeam("ALPHA"); err != nil {
		t.Fatal(err)
	}
	tm.SetCompetitionStart(clock.Now())
	clock.Advance(31 * time.Minute)

	tm.difficultyTick("ALPHA", 0)

	gs, err := gm.GetGame("ALPHA")
	if err != nil {
		t.Fatal(err)
	}
	wantShips := PhaseForElapsed(31).ActiveShips
	if gs.ActiveShipCount() != wantShips {
		t.Fatalf("active ships = %d, want %d", gs.ActiveShipCount(), wantShips)
	}
	if capture.last() != "ALPHA:ships_activated" {
		t.Fatalf("event = %q, want ALPHA:ships_activated", capture.last())
	}

	tm.mu.Lock()
	hintPhase := tm.teams["ALPHA"].generator.hintPhase
	tm.mu.Unlock()
	if hintPhase != HintPhaseForElapsed(31) {
		t.Errorf("generator hint phase = %d, want %d", hintPhase, HintPhaseForElapsed(31))
	}
}

func TestTrafficTicksRandomizeCipherInEarlyPhases(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gm := NewGameManager(database.NewMemory(), DefaultConfig, clock)
	if _, err := gm.CreateTeam("ALPHA", "Alpha"); err != nil {
		t.Fatal(err)
	}
	capture := &captureBroadcaster{}
	settings := DefaultTrafficSettings()
	settings.LeakProbability = 1.0
	tm, err := NewTrafficManager(gm, NewDifficultyScaler(clock), capture, settings, clock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tm.Shutdown() })

	if err := tm.StartTrafficForTeam("ALPHA"); err != nil {
		t.Fatal(err)
	}
	tm.SetCompetitionStart(clock.Now()) // elapsed 0, first phase

	for i := 0; i < 200; i++ {
		tm.trafficTick("ALPHA", 0)
	}

	seen := make(map[string]bool)
	capture.mu.Lock()
	for _, payload := range capture.payloads {
		if msg, ok := payload.(models.TrafficMessage); ok && msg.ContainsClue {
			seen[msg.EncodingType] = true
		}
	}
	capture.mu.Unlock()
	if len(seen) < 2 {
		t.Fatalf("early-phase leaks used only %v, want ciphers to vary", seen)
	}
}

func TestStopAllStopsEveryFeed(t *testing.T) {
	tm, gm, capture := newTestTrafficManager(t, clockwork.NewFakeClock())
	if _, err := gm.CreateTeam("BRAVO", "Bravo"); err != nil {
		t.Fatal(err)
	}
	if err := tm.StartTrafficForTeam("ALPHA"); err != nil {
		t.Fatal(err)
	}
	if err := tm.StartTrafficForTeam("BRAVO"); err != nil {
		t.Fatal(err)
	}

	tm.StopAll()
	tm.trafficTick("ALPHA", 0)
	tm.trafficTick("BRAVO", 0)
	if capture.count() != 0 {
		t.Fatalf("ticks after StopAll published %d events", capture.count())
	}
}
