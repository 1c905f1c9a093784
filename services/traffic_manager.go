package services

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Broadcaster delivers generated traffic to connected clients. The websocket
// hub implements it; tests substitute a capture.
type Broadcaster interface {
	ToTeam(teamID, event string, data interface{})
	ToAll(event string, data interface{})
}

// TrafficSettings tunes the per-team feeds.
type TrafficSettings struct {
	MessageInterval    time.Duration
	DifficultyInterval time.Duration
	LeakProbability    float64
}

func DefaultTrafficSettings() TrafficSettings {
	return TrafficSettings{
		MessageInterval:    2 * time.Second,
		DifficultyInterval: 60 * time.Second,
		LeakProbability:    0.3,
	}
}

type teamTraffic struct {
	generation uint64
	jobs       []uuid.UUID
	generator  *TrafficGenerator
}

// TrafficManager schedules each team's message feed and the periodic
// difficulty re-evaluation on a shared gocron scheduler. Each team carries a
// generation counter; stopping a feed bumps it so ticks already queued by the
// scheduler become no-ops instead of publishing stale traffic.
type TrafficManager struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
	teams     map[string]*teamTraffic
	settings  TrafficSettings
	scaler    *DifficultyScaler
	games     *GameManager
	broadcast Broadcaster
}

func NewTrafficManager(games *GameManager, scaler *DifficultyScaler, broadcast Broadcaster, settings TrafficSettings, clock clockwork.Clock) (*TrafficManager, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	return &TrafficManager{
		scheduler: scheduler,
		teams:     make(map[string]*teamTraffic),
		settings:  settings,
		scaler:    scaler,
		games:     games,
		broadcast: broadcast,
	}, nil
}

// SetCompetitionStart anchors difficulty scaling to the competition clock.
func (tm *TrafficManager) SetCompetitionStart(start time.Time) {
	tm.scaler.SetCompetitionStart(start)
}

// StartTrafficForTeam begins (or restarts) a team's feed. Restarting bumps
// the generation first so any tick from the previous incarnation is ignored.
func (tm *TrafficManager) StartTrafficForTeam(teamID string) error {
	gs, err := tm.games.GetGame(teamID)
	if err != nil {
		return err
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	team, ok := tm.teams[teamID]
	if ok {
		team.generation++
		tm.removeJobs(team)
	} else {
		team = &teamTraffic{generator: NewTrafficGenerator(gs)}
		tm.teams[teamID] = team
	}
	team.generator.SetHintPhase(tm.scaler.HintPhase())
	generation := team.generation

	trafficJob, err := tm.scheduler.NewJob(
		gocron.DurationJob(tm.settings.MessageInterval),
		gocron.NewTask(func() { tm.trafficTick(teamID, generation) }),
	)
	if err != nil {
		return err
	}
	difficultyJob, err := tm.scheduler.NewJob(
		gocron.DurationJob(tm.settings.DifficultyInterval),
		gocron.NewTask(func() { tm.difficultyTick(teamID, generation) }),
	)
	if err != nil {
		tm.scheduler.RemoveJob(trafficJob.ID())
		return err
	}
	team.jobs = []uuid.UUID{trafficJob.ID(), difficultyJob.ID()}
	log.Printf("Traffic started for team %s", teamID)
	return nil
}

// trafficTick emits one message into the team's feed. Sunk progress softens
// the leak rate so teams that are ahead get less free signal.
func (tm *TrafficManager) trafficTick(teamID string, generation uint64) {
	tm.mu.Lock()
	team, ok := tm.teams[teamID]
	if !ok || team.generation != generation {
		tm.mu.Unlock()
		return
	}
	generator := team.generator
	leakProbability := tm.settings.LeakProbability
	tm.mu.Unlock()

	gs, err := tm.games.GetGame(teamID)
	if err != nil {
		return
	}
	if gs.ShipsSunk() > 2 {
		leakProbability *= 0.7
	}

	// No forced cipher: every phase randomizes across all encodings so teams
	// meet each one while hints still name it.
	msg := generator.GenerateMessage(leakProbability, "")
	tm.broadcast.ToTeam(teamID, "traffic_message", msg)
}

// difficultyTick re-reads the phase table, raises the team's active ship
// count to the phase target and pushes the new hint tier into the generator.
func (tm *TrafficManager) difficultyTick(teamID string, generation uint64) {
	tm.mu.Lock()
	team, ok := tm.teams[teamID]
	if !ok || team.generation != generation {
		tm.mu.Unlock()
		return
	}
	generator := team.generator
	tm.mu.Unlock()

	gs, err := tm.games.GetGame(teamID)
	if err != nil {
		return
	}

	phase := tm.scaler.CurrentPhase()
	activated, err := gs.ActivateShips(phase.ActiveShips)
	if err != nil {
		log.Printf("Activation failed for team %s: %v", teamID, err)
		return
	}
	generator.SetHintPhase(tm.scaler.HintPhase())

	if len(activated) > 0 {
		tm.broadcast.ToTeam(teamID, "ships_activated", map[string]interface{}{
			"count": len(activated),
			"phase": phase.Name,
			"ships": gs.VisibleShips(),
		})
	}
}

func (tm *TrafficManager) removeJobs(team *teamTraffic) {
	for _, id := range team.jobs {
		if err := tm.scheduler.RemoveJob(id); err != nil {
			log.Printf("Remove job %s: %v", id, err)
		}
	}
	team.jobs = nil
}

// StopTrafficForTeam halts a team's feed. Safe to call for unknown teams.
func (tm *TrafficManager) StopTrafficForTeam(teamID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	team, ok := tm.teams[teamID]
	if !ok {
		return
	}
	team.generation++
	tm.removeJobs(team)
	log.Printf("Traffic stopped for team %s", teamID)
}

// StopAll halts every feed, keeping the scheduler alive for a later restart.
func (tm *TrafficManager) StopAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for _, team := range tm.teams {
		team.generation++
		tm.removeJobs(team)
	}
}

// Shutdown tears the scheduler down for process exit.
func (tm *TrafficManager) Shutdown() error {
	tm.StopAll()
	return tm.scheduler.Shutdown()
}
