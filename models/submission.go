package models

import "time"

// SubmissionResult labels the outcome of one coordinate guess.
type SubmissionResult string

const (
	ResultHit           SubmissionResult = "hit"
	ResultPartialRow    SubmissionResult = "partial_row"
	ResultPartialColumn SubmissionResult = "partial_column"
	ResultMiss          SubmissionResult = "miss"
	ResultCorrectType   SubmissionResult = "correct_type"
	ResultWrongType     SubmissionResult = "wrong_type"
	ResultDuplicate     SubmissionResult = "duplicate"
)

// Submission is the immutable record of one guess. Rows are append-only; no
// code path updates or deletes them.
type Submission struct {
	ID                uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	TeamID            string           `json:"team_id" gorm:"not null;index"`
	Row               string           `json:"row,omitempty"`
	Column            int              `json:"column,omitempty"`
	AttackType        AttackType       `json:"attack_type,omitempty"`
	Result            SubmissionResult `json:"result"`
	ShipID            string           `json:"ship_id,omitempty"`
	PointsAwarded     int              `json:"points_awarded"`
	CorrectAttackType bool             `json:"correct_attack_type" gorm:"default:false"`
	Timestamp         time.Time        `json:"timestamp" gorm:"index"`
}

// SubmissionRequest is the inbound guess payload (HTTP or websocket).
type SubmissionRequest struct {
	TeamID     string     `json:"team_id"`
	Row        string     `json:"row,omitempty"`
	Column     int        `json:"column,omitempty"`
	AttackType AttackType `json:"attack_type,omitempty"`
}

// SubmissionResponse is the per-player feedback sent after scoring.
type SubmissionResponse struct {
	Success       bool             `json:"success"`
	Result        SubmissionResult `json:"result"`
	PointsAwarded int              `json:"points_awarded"`
	Message       string           `json:"message"`
	ShipSunk      bool             `json:"ship_sunk"`
	ShipID        string           `json:"ship_id,omitempty"`
}
