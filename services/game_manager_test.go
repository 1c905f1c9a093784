package services

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"cyber-battleship/database"
	"cyber-battleship/models"
)

// waitFor polls cond with a real-time deadline so tests pass whether timer
// callbacks fire synchronously or on their own goroutine.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func singleShipConfig() GameConfig {
	config := DefaultConfig
	config.NumShips = 1
	return config
}

func TestCreateTeamRejectsDuplicates(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), singleShipConfig(), clockwork.NewFakeClock())

	if _, err := gm.CreateTeam("ALPHA", "Alpha"); err != nil {
		t.Fatal(err)
	}
	var conflict *ConflictError
	if _, err := gm.CreateTeam("ALPHA", "Alpha Again"); !errors.As(err, &conflict) {
		t.Fatalf("duplicate create error = %v, want ConflictError", err)
	}
}

func TestSubmitScoresRegardlessOfLifecycle(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), singleShipConfig(), clockwork.NewFakeClock())
	alpha, err := gm.CreateTeam("ALPHA", "Alpha")
	if err != nil {
		t.Fatal(err)
	}

	// Scoring is never gated on the competition clock; only traffic is.
	target := alpha.ships[0]
	result, err := gm.SubmitCoordinate("ALPHA", models.Coordinate{Row: target.Row, Column: target.Column}, target.AttackType)
	if err != nil {
		t.Fatal(err)
	}
	if result.Result != models.ResultHit {
		t.Fatalf("result before start = %s, want hit", result.Result)
	}
	if alpha.Score() == 0 {
		t.Error("submission before start did not score")
	}
}

func TestFirstGlobalSinkBonusAwardedOnce(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), singleShipConfig(), clockwork.NewFakeClock())

	alpha, err := gm.CreateTeam("ALPHA", "Alpha")
	if err != nil {
		t.Fatal(err)
	}
	bravo, err := gm.CreateTeam("BRAVO", "Bravo")
	if err != nil {
		t.Fatal(err)
	}

	// Grids are placed independently, so line Bravo's ship up with Alpha's to
	// force a shared global key.
	target := alpha.ships[0]
	bravo.ships[0].Row = target.Row
	bravo.ships[0].Column = target.Column
	bravo.ships[0].AttackType = target.AttackType

	if _, err := gm.StartCompetition(); err != nil {
		t.Fatal(err)
	}

	coord := models.Coordinate{Row: target.Row, Column: target.Column}
	first, err := gm.SubmitCoordinate("ALPHA", coord, target.AttackType)
	if err != nil {
		t.Fatal(err)
	}
	if first.Result != models.ResultHit || !first.FirstGlobalSink {
		t.Fatalf("first sink = %+v, want hit with global bonus", first)
	}
	if first.BonusPoints != DefaultConfig.PointsFirstGlobal {
		t.Errorf("bonus = %d, want %d", first.BonusPoints, DefaultConfig.PointsFirstGlobal)
	}
	wantScore := DefaultConfig.PointsSink + DefaultConfig.PointsFirstGlobal
	if alpha.Score() != wantScore {
		t.Errorf("alpha score = %d, want %d", alpha.Score(), wantScore)
	}

	second, err := gm.SubmitCoordinate("BRAVO", coord, target.AttackType)
	if err != nil {
		t.Fatal(err)
	}
	if second.Result != models.ResultHit {
		t.Fatalf("second sink result = %s, want hit", second.Result)
	}
	if second.FirstGlobalSink || second.BonusPoints != 0 {
		t.Errorf("second sink claimed the bonus: %+v", second)
	}
	if bravo.Score() != DefaultConfig.PointsSink {
		t.Errorf("bravo score = %d, want %d", bravo.Score(), DefaultConfig.PointsSink)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), DefaultConfig, clockwork.NewFakeClock())

	add := func(teamID string, score, sunk, misses int) {
		gs := &GameState{teamID: teamID, teamName: teamID, config: DefaultConfig, store: gm.store, score: score, shipsSunk: sunk}
		for i := 0; i < misses; i++ {
			gs.submissions = append(gs.submissions, models.Submission{Result: models.ResultMiss})
		}
		gm.games[teamID] = gs
		gm.order = append(gm.order, teamID)
	}
	add("LOW", 5, 1, 2)
	add("TIED-WORSE", 10, 2, 3)
	add("TIED-BETTER", 10, 3, 1)
	add("TIEBREAK-MISS", 10, 3, 0)

	board := gm.Leaderboard()
	want := []string{"TIEBREAK-MISS", "TIED-BETTER", "TIED-WORSE", "LOW"}
	for i, teamID := range want {
		if board[i].TeamID != teamID {
			t.Fatalf("rank %d = %s, want %s (board %+v)", i, board[i].TeamID, teamID, board)
		}
	}
}

func TestDurationValidationAndGating(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), singleShipConfig(), clockwork.NewFakeClock())

	var validation *ValidationError
	if err := gm.SetCompetitionDuration(0); !errors.As(err, &validation) {
		t.Errorf("duration 0 error = %v, want ValidationError", err)
	}
	if err := gm.SetCompetitionDuration(181); !errors.As(err, &validation) {
		t.Errorf("duration 181 error = %v, want ValidationError", err)
	}
	if err := gm.SetCompetitionDuration(45); err != nil {
		t.Fatal(err)
	}
	if gm.DurationMinutes() != 45 {
		t.Fatalf("duration = %d, want 45", gm.DurationMinutes())
	}

	if _, err := gm.StartCompetition(); err != nil {
		t.Fatal(err)
	}
	var conflict *ConflictError
	if err := gm.SetCompetitionDuration(60); !errors.As(err, &conflict) {
		t.Errorf("mid-competition duration change error = %v, want ConflictError", err)
	}
}

func TestDoubleStartConflicts(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), singleShipConfig(), clockwork.NewFakeClock())

	if _, err := gm.StartCompetition(); err != nil {
		t.Fatal(err)
	}
	var conflict *ConflictError
	if _, err := gm.StartCompetition(); !errors.As(err, &conflict) {
		t.Fatalf("second start error = %v, want ConflictError", err)
	}
}

func TestCompetitionAutoEndsAtDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := database.NewMemory()
	gm := NewGameManager(store, singleShipConfig(), clock)

	ended := make(chan struct{})
	gm.SetOnCompetitionEnd(func() { close(ended) })

	if err := gm.SetCompetitionDuration(1); err != nil {
		t.Fatal(err)
	}
	if _, err := gm.StartCompetition(); err != nil {
		t.Fatal(err)
	}

	clock.Advance(61 * time.Second)
	waitFor(t, func() bool { return !gm.IsCompetitionActive() }, "competition did not auto-end")

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("end hook never fired")
	}

	state, err := store.GetCompetitionState()
	if err != nil {
		t.Fatal(err)
	}
	if state.IsActive || state.EndTime == nil {
		t.Errorf("persisted state after auto-end: %+v", state)
	}
}

func TestEndCompetitionIsIdempotent(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), singleShipConfig(), clockwork.NewFakeClock())

	hookCalls := 0
	gm.SetOnCompetitionEnd(func() { hookCalls++ })

	if err := gm.EndCompetition(); err != nil {
		t.Fatal(err)
	}
	if hookCalls != 0 {
		t.Fatal("hook fired for a competition that never started")
	}

	if _, err := gm.StartCompetition(); err != nil {
		t.Fatal(err)
	}
	if err := gm.EndCompetition(); err != nil {
		t.Fatal(err)
	}
	if err := gm.EndCompetition(); err != nil {
		t.Fatal(err)
	}
	if hookCalls != 1 {
		t.Fatalf("hook calls = %d, want 1", hookCalls)
	}
}

func TestInitializeResumesLiveCompetition(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := database.NewMemory()

	first := NewGameManager(store, singleShipConfig(), clock)
	if _, err := first.CreateTeam("ALPHA", "Alpha"); err != nil {
		t.Fatal(err)
	}
	if err := first.SetCompetitionDuration(1); err != nil {
		t.Fatal(err)
	}
	if _, err := first.StartCompetition(); err != nil {
		t.Fatal(err)
	}

	// Simulate a restart partway through.
	clock.Advance(30 * time.Second)
	restarted := NewGameManager(store, singleShipConfig(), clock)
	if err := restarted.Initialize(); err != nil {
		t.Fatal(err)
	}
	if !restarted.IsCompetitionActive() {
		t.Fatal("restarted manager should resume the live competition")
	}
	if _, err := restarted.GetGame("ALPHA"); err != nil {
		t.Fatalf("restarted manager lost the team: %v", err)
	}

	// The re-armed timer covers only the remaining time.
	clock.Advance(31 * time.Second)
	waitFor(t, func() bool { return !restarted.IsCompetitionActive() }, "resumed competition did not end at original deadline")
}

func TestInitializeEndsCompetitionExpiredOffline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := database.NewMemory()
	if err := store.SetCompetitionDuration(1); err != nil {
		t.Fatal(err)
	}
	if err := store.SetCompetitionActive(clock.Now()); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Minute)

	gm := NewGameManager(store, singleShipConfig(), clock)
	hookFired := false
	gm.SetOnCompetitionEnd(func() { hookFired = true })
	if err := gm.Initialize(); err != nil {
		t.Fatal(err)
	}
	if gm.IsCompetitionActive() {
		t.Fatal("expired competition should end during initialization")
	}
	if !hookFired {
		t.Error("end hook should fire for a competition that expired offline")
	}
	state, err := store.GetCompetitionState()
	if err != nil {
		t.Fatal(err)
	}
	if state.IsActive || state.EndTime == nil {
		t.Errorf("persisted state after expired-offline init: %+v", state)
	}
}

func TestTeamManagementGatedWhileActive(t *testing.T) {
	gm := NewGameManager(database.NewMemory(), singleShipConfig(), clockwork.NewFakeClock())
	if _, err := gm.CreateTeam("ALPHA", "Alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := gm.StartCompetition(); err != nil {
		t.Fatal(err)
	}

	var conflict *ConflictError
	if err := gm.DeleteGame("ALPHA"); !errors.As(err, &conflict) {
		t.Errorf("delete while active = %v, want ConflictError", err)
	}
	if err := gm.ClearAllGames(); !errors.As(err, &conflict) {
		t.Errorf("clear while active = %v, want ConflictError", err)
	}
	if err := gm.FullReset(); !errors.As(err, &conflict) {
		t.Errorf("reset while active = %v, want ConflictError", err)
	}

	if err := gm.EndCompetition(); err != nil {
		t.Fatal(err)
	}
	if err := gm.DeleteGame("ALPHA"); err != nil {
		t.Fatalf("delete after end: %v", err)
	}
}
