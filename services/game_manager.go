package services

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"cyber-battleship/database"
	"cyber-battleship/models"
)

// SubmitResult is a team's scoring outcome plus the cross-team effects the
// manager layers on top: the global first-sink bonus and any ship activation
// triggered by the sink.
type SubmitResult struct {
	SubmitOutcome
	FirstGlobalSink  bool `json:"first_global_sink"`
	BonusPoints      int  `json:"bonus_points"`
	NewShipActivated bool `json:"new_ship_activated"`
}

// CompetitionStatus is the lifecycle readout served to clients.
type CompetitionStatus struct {
	IsActive         bool       `json:"is_active"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	DurationMinutes  int        `json:"duration_minutes"`
	ElapsedMinutes   int        `json:"elapsed_minutes"`
	RemainingMinutes int        `json:"remaining_minutes"`
	TeamCount        int        `json:"team_count"`
}

// GameManager coordinates all teams: registry, the global first-sink ledger,
// and the competition clock. The manager mutex covers cross-team invariants
// (first-sink exclusivity, lifecycle transitions); per-team scoring stays
// inside each GameState's own lock.
type GameManager struct {
	mu               sync.Mutex
	games            map[string]*GameState
	order            []string
	firstSinks       map[string]string // ship key -> team id
	config           GameConfig
	store            database.Store
	clock            clockwork.Clock
	competitionStart *time.Time
	competitionEnd   *time.Time
	durationMinutes  int
	active           bool
	isStarting       bool
	autoEndTimer     clockwork.Timer
	epoch            uint64
	onEnd            func()
}

func NewGameManager(store database.Store, config GameConfig, clock clockwork.Clock) *GameManager {
	return &GameManager{
		games:           make(map[string]*GameState),
		firstSinks:      make(map[string]string),
		config:          config,
		store:           store,
		clock:           clock,
		durationMinutes: 90,
	}
}

// SetOnCompetitionEnd registers the hook fired after any end transition
// (manual, timed or expiry detected at boot). It runs outside the manager
// lock.
func (gm *GameManager) SetOnCompetitionEnd(fn func()) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.onEnd = fn
}

// Initialize rebuilds the manager from persisted state after a restart:
// reload every team, the first-sink ledger and the competition row. A
// competition that expired while the process was down ends immediately; a
// live one gets its auto-end timer re-armed with the remaining time.
func (gm *GameManager) Initialize() error {
	teams, err := gm.store.GetAllTeams()
	if err != nil {
		return err
	}
	for _, team := range teams {
		gs, err := LoadGameState(gm.store, team.TeamID, gm.config)
		if err != nil {
			return err
		}
		gm.games[team.TeamID] = gs
		gm.order = append(gm.order, team.TeamID)
	}

	sinks, err := gm.store.GetAllFirstSinks()
	if err != nil {
		return err
	}
	for _, sink := range sinks {
		gm.firstSinks[sink.ShipKey] = sink.TeamID
	}

	state, err := gm.store.GetCompetitionState()
	if err != nil {
		return err
	}
	if state.DurationMinutes > 0 {
		gm.durationMinutes = state.DurationMinutes
	}
	gm.competitionStart = state.StartTime
	gm.competitionEnd = state.EndTime

	if state.IsActive && state.StartTime != nil {
		deadline := state.StartTime.Add(time.Duration(gm.durationMinutes) * time.Minute)
		remaining := deadline.Sub(gm.clock.Now())
		if remaining <= 0 {
			log.Printf("Competition expired while offline, ending now")
			// Mark active first or EndCompetition's no-op guard would skip
			// persisting the end and firing the hook.
			gm.active = true
			return gm.EndCompetition()
		}
		gm.active = true
		gm.armAutoEnd(remaining)
		log.Printf("Resumed active competition, %s remaining", remaining.Round(time.Second))
	}
	log.Printf("Game manager initialized: %d teams, %d first sinks", len(gm.games), len(gm.firstSinks))
	return nil
}

// CreateTeam registers a new team with a freshly placed grid. The team id
// must be unique.
func (gm *GameManager) CreateTeam(teamID, teamName string) (*GameState, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, ok := gm.games[teamID]; ok {
		return nil, NewConflictError("team %s already exists", teamID)
	}
	gs, err := NewGameState(gm.store, teamID, teamName, gm.config)
	if err != nil {
		return nil, err
	}
	gm.games[teamID] = gs
	gm.order = append(gm.order, teamID)
	return gs, nil
}

// GetGame returns the live state for a team.
func (gm *GameManager) GetGame(teamID string) (*GameState, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gs, ok := gm.games[teamID]
	if !ok {
		return nil, NewNotFoundError("team %s not found", teamID)
	}
	return gs, nil
}

// AllGames snapshots the registry in creation order.
func (gm *GameManager) AllGames() []*GameState {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	out := make([]*GameState, 0, len(gm.order))
	for _, id := range gm.order {
		out = append(out, gm.games[id])
	}
	return out
}

// SubmitCoordinate scores a guess for one team, then applies the global
// layer: on a sink, the first team across all teams to neutralize that
// position+attack-type combination earns a bonus, and the sinking team gets a
// replacement ship activated to keep its board pressure constant.
func (gm *GameManager) SubmitCoordinate(teamID string, coord models.Coordinate, attackType models.AttackType) (SubmitResult, error) {
	gm.mu.Lock()
	gs, ok := gm.games[teamID]
	if !ok {
		gm.mu.Unlock()
		return SubmitResult{}, NewNotFoundError("team %s not found", teamID)
	}
	gm.mu.Unlock()

	outcome, err := gs.SubmitCoordinate(coord, attackType)
	if err != nil {
		return SubmitResult{}, err
	}
	result := SubmitResult{SubmitOutcome: outcome}
	if outcome.Result != models.ResultHit {
		return result, nil
	}

	ship, ok := gs.ShipByID(outcome.ShipID)
	if ok {
		first, err := gm.claimFirstSink(ship.GlobalKey(), teamID)
		if err != nil {
			return result, err
		}
		if first {
			result.FirstGlobalSink = true
			result.BonusPoints = gm.config.PointsFirstGlobal
			if err := gs.AddScoreBonus(gm.config.PointsFirstGlobal); err != nil {
				return result, err
			}
		}
	}

	if gs.ShouldActivateNewShip() {
		activated, err := gs.ActivateShips(gs.ActiveShipCount() + 1)
		if err != nil {
			return result, err
		}
		result.NewShipActivated = len(activated) > 0
	}
	return result, nil
}

// claimFirstSink is the check-then-act for the global ledger; the store's
// insert-if-absent makes it safe even with several processes sharing a
// database.
func (gm *GameManager) claimFirstSink(shipKey, teamID string) (bool, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, taken := gm.firstSinks[shipKey]; taken {
		return false, nil
	}
	inserted, err := gm.store.SaveFirstSink(shipKey, teamID)
	if err != nil {
		return false, err
	}
	if inserted {
		gm.firstSinks[shipKey] = teamID
	}
	return inserted, nil
}

// Leaderboard ranks teams by score, then ships sunk, then fewest misses.
func (gm *GameManager) Leaderboard() []models.LeaderboardEntry {
	games := gm.AllGames()

	entries := make([]models.LeaderboardEntry, 0, len(games))
	for _, gs := range games {
		missCount, _ := gs.SubmissionStats()
		entries = append(entries, models.LeaderboardEntry{
			TeamID:         gs.TeamID(),
			TeamName:       gs.TeamName(),
			Score:          gs.Score(),
			ShipsSunk:      gs.ShipsSunk(),
			IncorrectCount: missCount,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].ShipsSunk != entries[j].ShipsSunk {
			return entries[i].ShipsSunk > entries[j].ShipsSunk
		}
		return entries[i].IncorrectCount < entries[j].IncorrectCount
	})
	return entries
}

// StartCompetition flips the lifecycle to active, stamps the start time and
// arms the auto-end timer. Starting twice, or while a start is already in
// flight, is a conflict.
func (gm *GameManager) StartCompetition() (time.Time, error) {
	gm.mu.Lock()
	if gm.isStarting {
		gm.mu.Unlock()
		return time.Time{}, NewConflictError("competition start already in progress")
	}
	if gm.active {
		gm.mu.Unlock()
		return time.Time{}, NewConflictError("competition is already active")
	}
	gm.isStarting = true
	gm.mu.Unlock()

	start := gm.clock.Now()
	err := gm.store.SetCompetitionActive(start)

	gm.mu.Lock()
	gm.isStarting = false
	if err != nil {
		gm.mu.Unlock()
		return time.Time{}, err
	}
	gm.active = true
	gm.competitionStart = &start
	gm.competitionEnd = nil
	gm.armAutoEnd(time.Duration(gm.durationMinutes) * time.Minute)
	duration := gm.durationMinutes
	gm.mu.Unlock()

	log.Printf("Competition started: %d minutes", duration)
	return start, nil
}

// armAutoEnd must run with gm.mu held. Bumping the epoch invalidates any
// timer already in flight.
func (gm *GameManager) armAutoEnd(d time.Duration) {
	gm.epoch++
	epoch := gm.epoch
	if gm.autoEndTimer != nil {
		gm.autoEndTimer.Stop()
	}
	gm.autoEndTimer = gm.clock.AfterFunc(d, func() {
		gm.endFromTimer(epoch)
	})
}

func (gm *GameManager) endFromTimer(epoch uint64) {
	gm.mu.Lock()
	if epoch != gm.epoch || !gm.active {
		gm.mu.Unlock()
		return
	}
	gm.mu.Unlock()
	log.Printf("Competition time elapsed, ending")
	if err := gm.EndCompetition(); err != nil {
		log.Printf("Auto-end failed: %v", err)
	}
}

// EndCompetition stops the clock and fires the end hook. Ending an inactive
// competition is a no-op so the manual route and the timer cannot race into a
// double end.
func (gm *GameManager) EndCompetition() error {
	gm.mu.Lock()
	if !gm.active {
		gm.mu.Unlock()
		return nil
	}
	end := gm.clock.Now()
	if err := gm.store.EndCompetition(end); err != nil {
		gm.mu.Unlock()
		return err
	}
	gm.active = false
	gm.competitionEnd = &end
	gm.epoch++
	if gm.autoEndTimer != nil {
		gm.autoEndTimer.Stop()
		gm.autoEndTimer = nil
	}
	hook := gm.onEnd
	gm.mu.Unlock()

	log.Printf("Competition ended at %s", end.Format(time.RFC3339))
	if hook != nil {
		hook()
	}
	return nil
}

// SetCompetitionDuration changes the scheduled length. Only allowed between
// competitions; the range guards against zero-length or runaway events.
func (gm *GameManager) SetCompetitionDuration(minutes int) error {
	if minutes < 1 || minutes > 180 {
		return NewValidationError("duration must be between 1 and 180 minutes, got %d", minutes)
	}
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.active {
		return NewConflictError("cannot change duration while competition is active")
	}
	if err := gm.store.SetCompetitionDuration(minutes); err != nil {
		return err
	}
	gm.durationMinutes = minutes
	return nil
}

func (gm *GameManager) IsCompetitionActive() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.active
}

func (gm *GameManager) CompetitionStartTime() *time.Time {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.competitionStart
}

func (gm *GameManager) DurationMinutes() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.durationMinutes
}

// Status reports the lifecycle snapshot.
func (gm *GameManager) Status() CompetitionStatus {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	status := CompetitionStatus{
		IsActive:        gm.active,
		StartTime:       gm.competitionStart,
		EndTime:         gm.competitionEnd,
		DurationMinutes: gm.durationMinutes,
		TeamCount:       len(gm.games),
	}
	if gm.active && gm.competitionStart != nil {
		elapsed := int(gm.clock.Since(*gm.competitionStart).Minutes())
		status.ElapsedMinutes = elapsed
		remaining := gm.durationMinutes - elapsed
		if remaining < 0 {
			remaining = 0
		}
		status.RemainingMinutes = remaining
	}
	return status
}

// CheckExpired is the watchdog backstop: if the auto-end timer was ever lost
// (process pause, clock skew), an expired competition still gets closed out.
func (gm *GameManager) CheckExpired() {
	gm.mu.Lock()
	if !gm.active || gm.competitionStart == nil {
		gm.mu.Unlock()
		return
	}
	deadline := gm.competitionStart.Add(time.Duration(gm.durationMinutes) * time.Minute)
	expired := !gm.clock.Now().Before(deadline)
	gm.mu.Unlock()

	if expired {
		log.Printf("Watchdog: competition past deadline, ending")
		if err := gm.EndCompetition(); err != nil {
			log.Printf("Watchdog end failed: %v", err)
		}
	}
}

// DeleteGame removes one team. Blocked mid-competition so scores cannot be
// manipulated by dropping and recreating teams.
func (gm *GameManager) DeleteGame(teamID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.active {
		return NewConflictError("cannot delete teams while competition is active")
	}
	if _, ok := gm.games[teamID]; !ok {
		return NewNotFoundError("team %s not found", teamID)
	}
	if err := gm.store.DeleteTeam(teamID); err != nil {
		return err
	}
	delete(gm.games, teamID)
	for i, id := range gm.order {
		if id == teamID {
			gm.order = append(gm.order[:i], gm.order[i+1:]...)
			break
		}
	}
	return nil
}

// ClearAllGames wipes every team and the first-sink ledger. Blocked while a
// competition is running.
func (gm *GameManager) ClearAllGames() error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.active {
		return NewConflictError("cannot clear teams while competition is active")
	}
	if err := gm.store.ClearAllTeams(); err != nil {
		return err
	}
	gm.games = make(map[string]*GameState)
	gm.order = nil
	gm.firstSinks = make(map[string]string)
	return nil
}

// FullReset returns the system to factory state: no teams, no ledger, no
// competition history. Requires the competition to be stopped first.
func (gm *GameManager) FullReset() error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.active {
		return NewConflictError("stop the competition before resetting")
	}
	if err := gm.store.FullReset(); err != nil {
		return err
	}
	gm.games = make(map[string]*GameState)
	gm.order = nil
	gm.firstSinks = make(map[string]string)
	gm.competitionStart = nil
	gm.competitionEnd = nil
	gm.durationMinutes = 90
	gm.epoch++
	if gm.autoEndTimer != nil {
		gm.autoEndTimer.Stop()
		gm.autoEndTimer = nil
	}
	return nil
}
