package database

import (
	"time"

	"cyber-battleship/models"
)

// Store is the repository boundary for all persisted game state. Implementations
// must provide insert-or-replace semantics for team and ship upserts and
// insert-if-absent semantics for first-sink entries; callers rely on both.
type Store interface {
	// Teams.
	SaveTeam(team *models.Team) error
	GetTeam(teamID string) (*models.Team, error) // (nil, nil) when absent
	GetAllTeams() ([]models.Team, error)
	UpdateTeamScore(teamID string, score, shipsSunk int) error
	DeleteTeam(teamID string) error
	// ClearAllTeams removes teams, ships, submissions and first sinks but keeps
	// the competition row.
	ClearAllTeams() error

	// Ships.
	SaveShip(ship *models.Ship) error
	SaveShips(ships []*models.Ship) error
	GetShips(teamID string) ([]*models.Ship, error)

	// Submissions (append-only).
	SaveSubmission(sub *models.Submission) error
	GetSubmissions(teamID string) ([]models.Submission, error)

	// Competition singleton.
	GetCompetitionState() (*models.CompetitionState, error)
	SetCompetitionActive(start time.Time) error
	EndCompetition(end time.Time) error
	SetCompetitionDuration(minutes int) error

	// First-sink ledger. SaveFirstSink reports whether the entry was inserted;
	// false means another team already holds the key.
	SaveFirstSink(shipKey, teamID string) (bool, error)
	GetAllFirstSinks() ([]models.FirstSink, error)

	// FullReset clears everything including the competition epoch.
	FullReset() error

	GetStats() (Stats, error)
}

// Stats summarizes table sizes for the admin panel.
type Stats struct {
	TotalTeams       int64 `json:"total_teams"`
	TotalShips       int64 `json:"total_ships"`
	TotalSubmissions int64 `json:"total_submissions"`
}
