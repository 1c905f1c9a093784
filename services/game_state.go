package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"cyber-battleship/database"
	"cyber-battleship/models"
)

// GameConfig carries the scoring constants and ship count for one game.
type GameConfig struct {
	NumShips          int
	PointsAttackType  int
	PointsPartial     int
	PointsSink        int
	PointsFirstGlobal int
	PointsIncorrect   int
}

// DefaultConfig matches the standard 90-minute competition: 80 ships, 8 per
// attack type.
var DefaultConfig = GameConfig{
	NumShips:          80,
	PointsAttackType:  5,
	PointsPartial:     5,
	PointsSink:        15,
	PointsFirstGlobal: 5,
	PointsIncorrect:   -2,
}

// SubmitOutcome is the per-team scoring result of one guess, before the
// manager layers on global bonuses.
type SubmitOutcome struct {
	Result            models.SubmissionResult `json:"result"`
	Points            int                     `json:"points"`
	ShipID            string                  `json:"ship_id,omitempty"`
	CorrectAttackType bool                    `json:"correct_attack_type"`
	CorrectLocation   bool                    `json:"correct_location"`
}

// GameState owns one team's grid, score and submission ledger. All mutating
// and reading methods take the state mutex, so a submission scores as an
// atomic unit with respect to other submissions for the same team; different
// teams' states are independent.
type GameState struct {
	mu          sync.Mutex
	teamID      string
	teamName    string
	ships       []*models.Ship
	score       int
	shipsSunk   int
	submissions []models.Submission
	config      GameConfig
	store       database.Store
}

// NewGameState creates a fresh team: places ships, activates the starter set
// and persists everything.
func NewGameState(store database.Store, teamID, teamName string, config GameConfig) (*GameState, error) {
	gs := &GameState{
		teamID:   teamID,
		teamName: teamName,
		config:   config,
		store:    store,
	}
	gs.initializeShips()

	if err := store.SaveTeam(&models.Team{TeamID: teamID, TeamName: teamName}); err != nil {
		return nil, err
	}
	if err := store.SaveShips(gs.ships); err != nil {
		return nil, err
	}
	return gs, nil
}

// LoadGameState rebuilds a team from the store after a restart. It never
// re-places ships: initialization from persisted state is distinct from
// first-time creation.
func LoadGameState(store database.Store, teamID string, config GameConfig) (*GameState, error) {
	team, err := store.GetTeam(teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, NewNotFoundError("team %s not found", teamID)
	}
	ships, err := store.GetShips(teamID)
	if err != nil {
		return nil, err
	}
	submissions, err := store.GetSubmissions(teamID)
	if err != nil {
		return nil, err
	}
	return &GameState{
		teamID:      teamID,
		teamName:    team.TeamName,
		ships:       ships,
		score:       team.Score,
		shipsSunk:   team.ShipsSunk,
		submissions: submissions,
		config:      config,
		store:       store,
	}, nil
}

// initializeShips places config.NumShips ships on distinct cells via rejection
// sampling, assigns attack types cyclically so each type appears equally
// often, then activates a starter set drawn one-per-type so every attack
// category is reachable from the first phase.
func (gs *GameState) initializeShips() {
	placed := make(map[string]bool, gs.config.NumShips)

	for i := 0; i < gs.config.NumShips; i++ {
		var row string
		var column int
		for {
			row = models.GridRows[rand.Intn(len(models.GridRows))]
			column = models.GridMinColumn + rand.Intn(models.GridMaxColumn)
			key := models.Coordinate{Row: row, Column: column}.String()
			if !placed[key] {
				placed[key] = true
				break
			}
		}

		gs.ships = append(gs.ships, &models.Ship{
			ID:         uuid.NewString(),
			TeamID:     gs.teamID,
			Row:        row,
			Column:     column,
			AttackType: models.AllAttackTypes[i%len(models.AllAttackTypes)],
			Status:     models.ShipHidden,
		})
	}

	// One ship of each attack type forms the activation pool, so the first
	// active ships cover diverse categories regardless of placement order.
	pool := make([]*models.Ship, 0, len(models.AllAttackTypes))
	for _, attackType := range models.AllAttackTypes {
		for _, ship := range gs.ships {
			if ship.AttackType == attackType {
				pool = append(pool, ship)
				break
			}
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	initial := DifficultyPhases[0].ActiveShips
	for i := 0; i < initial && i < len(pool); i++ {
		pool[i].IsActive = true
	}
}

// SubmitCoordinate scores one guess. Exact resubmissions (matched per
// axis-shape: full pair vs full pair, row-only vs row-only, column-only vs
// column-only) are recorded as zero-point duplicates without touching ship
// state. A full correct neutralization overrides the submission's points to
// the flat sink value instead of stacking the partial and attack-type awards.
func (gs *GameState) SubmitCoordinate(coord models.Coordinate, attackType models.AttackType) (SubmitOutcome, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	now := time.Now()

	if gs.alreadySubmitted(coord) {
		sub := models.Submission{
			TeamID:     gs.teamID,
			Row:        coord.Row,
			Column:     coord.Column,
			AttackType: attackType,
			Result:     models.ResultDuplicate,
			Timestamp:  now,
		}
		gs.submissions = append(gs.submissions, sub)
		if err := gs.store.SaveSubmission(&sub); err != nil {
			return SubmitOutcome{}, err
		}
		return SubmitOutcome{Result: models.ResultDuplicate}, nil
	}

	var matched *models.Ship
	points := 0
	correctAttackType := false

	for _, ship := range gs.ships {
		if ship.Status == models.ShipSunk {
			continue
		}

		rowMatch := coord.HasRow() && ship.Row == coord.Row
		columnMatch := coord.HasColumn() && ship.Column == coord.Column
		if !rowMatch && !columnMatch {
			continue
		}
		matched = ship

		isNewRow := rowMatch && !ship.RevealedRow
		isNewColumn := columnMatch && !ship.RevealedColumn

		// Partial points reward new information only; resubmitting an
		// already-revealed axis earns nothing.
		if isNewRow || isNewColumn {
			points += gs.config.PointsPartial
		}

		if isNewRow {
			ship.RevealedRow = true
			if ship.Status == models.ShipHidden {
				ship.Status = models.ShipPartialRow
			}
		}
		if isNewColumn {
			ship.RevealedColumn = true
			if ship.Status == models.ShipHidden || ship.Status == models.ShipPartialRow {
				ship.Status = models.ShipPartialColumn
			}
		}

		if attackType != "" && attackType == ship.AttackType {
			correctAttackType = true
			points += gs.config.PointsAttackType

			if rowMatch && columnMatch {
				ship.Status = models.ShipSunk
				ship.RevealedRow = true
				ship.RevealedColumn = true
				ship.SunkAt = &now
				gs.shipsSunk++
				// Flat sink value replaces whatever partial and type awards
				// accumulated in this submission.
				points = gs.config.PointsSink
			}
		}
		break
	}

	if matched == nil {
		points = gs.config.PointsIncorrect
		gs.score += points

		sub := models.Submission{
			TeamID:        gs.teamID,
			Row:           coord.Row,
			Column:        coord.Column,
			AttackType:    attackType,
			Result:        models.ResultMiss,
			PointsAwarded: points,
			Timestamp:     now,
		}
		gs.submissions = append(gs.submissions, sub)
		if err := gs.store.SaveSubmission(&sub); err != nil {
			return SubmitOutcome{}, err
		}
		if err := gs.store.UpdateTeamScore(gs.teamID, gs.score, gs.shipsSunk); err != nil {
			return SubmitOutcome{}, err
		}
		return SubmitOutcome{Result: models.ResultMiss, Points: points}, nil
	}

	var result models.SubmissionResult
	switch {
	case matched.Status == models.ShipSunk:
		result = models.ResultHit
	case points == 0:
		// Location matched a ship but revealed nothing new and the type guess
		// (if any) was wrong: treated as a duplicate, no penalty.
		result = models.ResultDuplicate
	case correctAttackType:
		result = models.ResultCorrectType
	case coord.HasRow() && matched.Row == coord.Row:
		result = models.ResultPartialRow
	default:
		result = models.ResultPartialColumn
	}

	gs.score += points

	sub := models.Submission{
		TeamID:            gs.teamID,
		Row:               coord.Row,
		Column:            coord.Column,
		AttackType:        attackType,
		Result:            result,
		ShipID:            matched.ID,
		PointsAwarded:     points,
		CorrectAttackType: correctAttackType,
		Timestamp:         now,
	}
	gs.submissions = append(gs.submissions, sub)

	if err := gs.store.SaveSubmission(&sub); err != nil {
		return SubmitOutcome{}, err
	}
	if err := gs.store.UpdateTeamScore(gs.teamID, gs.score, gs.shipsSunk); err != nil {
		return SubmitOutcome{}, err
	}
	if err := gs.store.SaveShip(matched); err != nil {
		return SubmitOutcome{}, err
	}

	return SubmitOutcome{
		Result:            result,
		Points:            points,
		ShipID:            matched.ID,
		CorrectAttackType: correctAttackType,
		CorrectLocation:   true,
	}, nil
}

// alreadySubmitted reports whether this exact coordinate shape was submitted
// before. Row-only and column-only probes are checked per axis in isolation,
// so "A" followed by "5" is never flagged even if both point at one ship.
func (gs *GameState) alreadySubmitted(coord models.Coordinate) bool {
	for _, sub := range gs.submissions {
		sameRow := coord.HasRow() && sub.Row == coord.Row
		sameColumn := coord.HasColumn() && sub.Column == coord.Column

		switch {
		case coord.HasRow() && coord.HasColumn():
			if sameRow && sameColumn {
				return true
			}
		case coord.HasRow():
			if sameRow {
				return true
			}
		case coord.HasColumn():
			if sameColumn {
				return true
			}
		}
	}
	return false
}

// VisibleShips projects active ships with unrevealed axes redacted. This is
// the exact view broadcast to clients.
func (gs *GameState) VisibleShips() []models.VisibleShip {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	visible := make([]models.VisibleShip, 0)
	for _, ship := range gs.ships {
		if ship.IsActive {
			visible = append(visible, ship.Visible())
		}
	}
	return visible
}

// LeakCandidates returns copies of ships eligible to leak: active and not yet
// sunk.
func (gs *GameState) LeakCandidates() []models.Ship {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	candidates := make([]models.Ship, 0)
	for _, ship := range gs.ships {
		if ship.IsActive && ship.Status != models.ShipSunk {
			candidates = append(candidates, *ship)
		}
	}
	return candidates
}

// ActivateShips brings the active count up to target by shuffling the
// inactive pool and taking from the front. It never deactivates; a target at
// or below the current count is a no-op. Returns copies of the newly
// activated ships.
func (gs *GameState) ActivateShips(target int) ([]models.Ship, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	active := 0
	inactive := make([]*models.Ship, 0)
	for _, ship := range gs.ships {
		if ship.IsActive {
			active++
		} else {
			inactive = append(inactive, ship)
		}
	}
	if active >= target || len(inactive) == 0 {
		return nil, nil
	}

	rand.Shuffle(len(inactive), func(i, j int) { inactive[i], inactive[j] = inactive[j], inactive[i] })

	toActivate := target - active
	if toActivate > len(inactive) {
		toActivate = len(inactive)
	}

	activated := make([]*models.Ship, 0, toActivate)
	copies := make([]models.Ship, 0, toActivate)
	for i := 0; i < toActivate; i++ {
		inactive[i].IsActive = true
		activated = append(activated, inactive[i])
		copies = append(copies, *inactive[i])
	}

	if err := gs.store.SaveShips(activated); err != nil {
		return nil, err
	}
	return copies, nil
}

// ShouldActivateNewShip is the backstop that keeps a team from staring at an
// empty board: true when every active ship is sunk and inactive ships remain.
func (gs *GameState) ShouldActivateNewShip() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	active, activeSunk := 0, 0
	for _, ship := range gs.ships {
		if ship.IsActive {
			active++
			if ship.Status == models.ShipSunk {
				activeSunk++
			}
		}
	}
	return activeSunk == active && active < len(gs.ships)
}

func (gs *GameState) ActiveShipCount() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	count := 0
	for _, ship := range gs.ships {
		if ship.IsActive {
			count++
		}
	}
	return count
}

// ShipByID returns a copy of the ship, if present.
func (gs *GameState) ShipByID(id string) (models.Ship, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	for _, ship := range gs.ships {
		if ship.ID == id {
			return *ship, true
		}
	}
	return models.Ship{}, false
}

// AddScoreBonus credits points outside the normal submission path (global
// first-sink bonus) and persists the new total.
func (gs *GameState) AddScoreBonus(points int) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.score += points
	return gs.store.UpdateTeamScore(gs.teamID, gs.score, gs.shipsSunk)
}

func (gs *GameState) TeamID() string { return gs.teamID }

func (gs *GameState) TeamName() string { return gs.teamName }

func (gs *GameState) Score() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.score
}

func (gs *GameState) ShipsSunk() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.shipsSunk
}

func (gs *GameState) ShipCount() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.ships)
}

// SubmissionStats returns the miss count and total submissions, the inputs to
// per-team difficulty adjustment.
func (gs *GameState) SubmissionStats() (missCount, total int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	for _, sub := range gs.submissions {
		if sub.Result == models.ResultMiss {
			missCount++
		}
	}
	return missCount, len(gs.submissions)
}
