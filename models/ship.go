package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ShipStatus advances monotonically: hidden -> partial_* -> sunk. It never
// regresses once advanced.
type ShipStatus string

const (
	ShipHidden        ShipStatus = "hidden"
	ShipPartialRow    ShipStatus = "partial_row"
	ShipPartialColumn ShipStatus = "partial_column"
	ShipSunk          ShipStatus = "sunk"
)

// GridRows are the valid row labels of the 10x10 grid.
var GridRows = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

const (
	GridMinColumn = 1
	GridMaxColumn = 10
)

// Coordinate is a possibly-partial grid reference. An empty Row or zero Column
// means that component was not submitted.
type Coordinate struct {
	Row    string `json:"row,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (c Coordinate) HasRow() bool    { return c.Row != "" }
func (c Coordinate) HasColumn() bool { return c.Column != 0 }

// String renders "A5"-style references; partial coordinates render just the
// submitted component.
func (c Coordinate) String() string {
	switch {
	case c.HasRow() && c.HasColumn():
		return fmt.Sprintf("%s%d", c.Row, c.Column)
	case c.HasRow():
		return c.Row
	case c.HasColumn():
		return strconv.Itoa(c.Column)
	default:
		return ""
	}
}

func IsValidRow(row string) bool {
	for _, r := range GridRows {
		if r == row {
			return true
		}
	}
	return false
}

func IsValidColumn(column int) bool {
	return column >= GridMinColumn && column <= GridMaxColumn
}

var coordPattern = regexp.MustCompile(`^([A-J])(\d{1,2})$`)

// ParseCoordinate parses full references like "A5" or "J10".
func ParseCoordinate(s string) (Coordinate, bool) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, false
	}
	column, err := strconv.Atoi(m[2])
	if err != nil || !IsValidColumn(column) {
		return Coordinate{}, false
	}
	return Coordinate{Row: m[1], Column: column}, true
}

// Ship is one hidden attack signature on a team's grid.
type Ship struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	TeamID         string     `json:"team_id" gorm:"not null;index"`
	Row            string     `json:"row"`
	Column         int        `json:"column"`
	AttackType     AttackType `json:"attack_type"`
	Status         ShipStatus `json:"status" gorm:"default:'hidden'"`
	IsActive       bool       `json:"is_active" gorm:"default:false"`
	RevealedRow    bool       `json:"revealed_row" gorm:"default:false"`
	RevealedColumn bool       `json:"revealed_column" gorm:"default:false"`
	SunkAt         *time.Time `json:"sunk_at,omitempty"`
}

// GlobalKey is the cross-team identity of a ship: position plus attack type.
// Ship IDs differ per team because every grid is randomized independently, so
// the first-sink ledger is keyed by this instead.
func (s *Ship) GlobalKey() string {
	return fmt.Sprintf("%s%d_%s", s.Row, s.Column, s.AttackType)
}

// VisibleShip is the client projection of a ship. Row and Column are omitted
// until their reveal flags are set; unrevealed axes must never leak through
// this type.
type VisibleShip struct {
	ID         string     `json:"id"`
	Status     ShipStatus `json:"status"`
	Row        string     `json:"row,omitempty"`
	Column     int        `json:"column,omitempty"`
	AttackType AttackType `json:"attack_type"`
	IsActive   bool       `json:"is_active"`
}

// Visible builds the redacted projection of the ship.
func (s *Ship) Visible() VisibleShip {
	v := VisibleShip{
		ID:         s.ID,
		Status:     s.Status,
		AttackType: s.AttackType,
		IsActive:   s.IsActive,
	}
	if s.RevealedRow {
		v.Row = s.Row
	}
	if s.RevealedColumn {
		v.Column = s.Column
	}
	return v
}
