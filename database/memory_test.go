package database

import (
	"testing"
	"time"

	"cyber-battleship/models"
)

func TestMemoryFirstSinkInsertIfAbsent(t *testing.T) {
	m := NewMemory()

	inserted, err := m.SaveFirstSink("A5_sql_injection", "ALPHA")
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("first insert should succeed")
	}

	inserted, err = m.SaveFirstSink("A5_sql_injection", "BRAVO")
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Fatal("second insert for the same key must report false")
	}

	sinks, err := m.GetAllFirstSinks()
	if err != nil {
		t.Fatal(err)
	}
	if len(sinks) != 1 || sinks[0].TeamID != "ALPHA" {
		t.Fatalf("ledger = %+v, want single ALPHA entry", sinks)
	}
}

func TestMemoryCopiesOnReadAndWrite(t *testing.T) {
	m := NewMemory()
	team := &models.Team{TeamID: "ALPHA", TeamName: "Alpha"}
	if err := m.SaveTeam(team); err != nil {
		t.Fatal(err)
	}

	team.TeamName = "Mutated"
	got, err := m.GetTeam("ALPHA")
	if err != nil {
		t.Fatal(err)
	}
	if got.TeamName != "Alpha" {
		t.Errorf("store captured caller mutation: %q", got.TeamName)
	}

	got.Score = 999
	again, err := m.GetTeam("ALPHA")
	if err != nil {
		t.Fatal(err)
	}
	if again.Score != 0 {
		t.Errorf("returned copy mutated stored state: %d", again.Score)
	}
}

func TestMemoryClearKeepsCompetitionRow(t *testing.T) {
	m := NewMemory()
	if err := m.SaveTeam(&models.Team{TeamID: "ALPHA", TeamName: "Alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetCompetitionDuration(45); err != nil {
		t.Fatal(err)
	}
	if err := m.ClearAllTeams(); err != nil {
		t.Fatal(err)
	}

	teams, err := m.GetAllTeams()
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 0 {
		t.Fatalf("teams after clear = %d", len(teams))
	}
	state, err := m.GetCompetitionState()
	if err != nil {
		t.Fatal(err)
	}
	if state.DurationMinutes != 45 {
		t.Errorf("clear reset the competition row: %+v", state)
	}
}

func TestMemoryFullResetRestoresDefaults(t *testing.T) {
	m := NewMemory()
	start := time.Now()
	if err := m.SetCompetitionActive(start); err != nil {
		t.Fatal(err)
	}
	if err := m.SetCompetitionDuration(30); err != nil {
		t.Fatal(err)
	}
	if err := m.FullReset(); err != nil {
		t.Fatal(err)
	}

	state, err := m.GetCompetitionState()
	if err != nil {
		t.Fatal(err)
	}
	if state.IsActive || state.StartTime != nil || state.DurationMinutes != 90 {
		t.Errorf("state after reset = %+v", state)
	}
}
