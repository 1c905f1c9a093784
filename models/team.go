package models

import "time"

// Team is the persisted summary row for one team. The full game state (ships,
// submissions) lives in its own tables keyed by TeamID.
type Team struct {
	TeamID    string    `json:"team_id" gorm:"primaryKey"`
	TeamName  string    `json:"team_name" gorm:"not null"`
	Score     int       `json:"score" gorm:"default:0"`
	ShipsSunk int       `json:"ships_sunk" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// CompetitionState is a singleton row (ID always 1) tracking the current
// competition epoch. StartTime/EndTime pair off: an active competition has a
// start and no end.
type CompetitionState struct {
	ID              int        `json:"id" gorm:"primaryKey"`
	IsActive        bool       `json:"is_active" gorm:"default:false"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes" gorm:"default:90"`
}

// FirstSink records which team first fully neutralized a given
// position+attack-type combination across all teams. Entries are write-once.
type FirstSink struct {
	ShipKey   string    `json:"ship_key" gorm:"primaryKey"`
	TeamID    string    `json:"team_id" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

// LeaderboardEntry is a computed ranking row; it is not stored.
type LeaderboardEntry struct {
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	Score          int    `json:"score"`
	ShipsSunk      int    `json:"ships_sunk"`
	IncorrectCount int    `json:"incorrect_count"`
}
