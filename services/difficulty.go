package services

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DifficultyPhase is one time window of the competition with a fixed traffic
// profile.
type DifficultyPhase struct {
	Name         string        `json:"name"`
	StartMinute  int           `json:"start_minute"`
	EndMinute    int           `json:"end_minute"`
	ActiveShips  int           `json:"active_ships"`
	LeakInterval time.Duration `json:"-"`
	NoiseRatio   int           `json:"noise_ratio"`
}

// DifficultyPhases is the fixed, contiguous phase table for a 90-minute
// competition. Elapsed time past the last window clamps to the last phase.
var DifficultyPhases = []DifficultyPhase{
	{
		Name:         "Phase 1: Learning",
		StartMinute:  0,
		EndMinute:    15,
		ActiveShips:  2,
		LeakInterval: 8 * time.Second,
		NoiseRatio:   3,
	},
	{
		Name:         "Phase 2: Recognition",
		StartMinute:  15,
		EndMinute:    30,
		ActiveShips:  6,
		LeakInterval: 12 * time.Second,
		NoiseRatio:   5,
	},
	{
		Name:         "Phase 3: Multitasking",
		StartMinute:  30,
		EndMinute:    50,
		ActiveShips:  15,
		LeakInterval: 15 * time.Second,
		NoiseRatio:   8,
	},
	{
		Name:         "Phase 4: Chaos",
		StartMinute:  50,
		EndMinute:    70,
		ActiveShips:  30,
		LeakInterval: 18 * time.Second,
		NoiseRatio:   12,
	},
	{
		Name:         "Phase 5: The Race",
		StartMinute:  70,
		EndMinute:    90,
		ActiveShips:  50,
		LeakInterval: 25 * time.Second,
		NoiseRatio:   20,
	},
}

// TrafficProfile is the cadence handed to the traffic manager: how often to
// emit a message, how often leaks should surface, and how much noise per leak.
type TrafficProfile struct {
	NoiseInterval time.Duration
	LeakInterval  time.Duration
	NoiseRatio    int
}

const (
	minLeakInterval = 5 * time.Second
	maxLeakInterval = 40 * time.Second
	minNoiseRatio   = 2
	maxNoiseRatio   = 25
)

// DifficultyScaler maps elapsed competition time to a phase. It holds no
// per-team state beyond the shared competition start; the performance
// adjustment is advisory and recomputed from the ledger every call.
type DifficultyScaler struct {
	mu    sync.Mutex
	start time.Time
	clock clockwork.Clock
}

func NewDifficultyScaler(clock clockwork.Clock) *DifficultyScaler {
	return &DifficultyScaler{clock: clock}
}

func (d *DifficultyScaler) SetCompetitionStart(start time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start = start
}

// ElapsedMinutes since competition start; zero when no competition is running.
func (d *DifficultyScaler) ElapsedMinutes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.start.IsZero() {
		return 0
	}
	return int(d.clock.Since(d.start).Minutes())
}

// CurrentPhase looks up the window containing the elapsed time, clamping to
// the final phase once the table runs out.
func (d *DifficultyScaler) CurrentPhase() DifficultyPhase {
	return PhaseForElapsed(d.ElapsedMinutes())
}

// PhaseForElapsed is the pure window lookup.
func PhaseForElapsed(elapsedMinutes int) DifficultyPhase {
	for _, phase := range DifficultyPhases {
		if elapsedMinutes >= phase.StartMinute && elapsedMinutes < phase.EndMinute {
			return phase
		}
	}
	return DifficultyPhases[len(DifficultyPhases)-1]
}

// BaseProfile is the unadjusted cadence for the current phase. Noise cadence
// stays steady; only leak spacing and noise ratio scale with the phase.
func (d *DifficultyScaler) BaseProfile() TrafficProfile {
	phase := d.CurrentPhase()
	return TrafficProfile{
		NoiseInterval: 2 * time.Second,
		LeakInterval:  phase.LeakInterval,
		NoiseRatio:    phase.NoiseRatio,
	}
}

// AdjustForTeamPerformance eases the feed for struggling teams and tightens
// it for teams cruising, clamped to fixed floors and ceilings. It kicks in
// only once the team has at least five submissions on the ledger.
func (d *DifficultyScaler) AdjustForTeamPerformance(gs *GameState, base TrafficProfile) TrafficProfile {
	profile := base

	missCount, total := gs.SubmissionStats()
	if total < 5 {
		return profile
	}

	errorRate := float64(missCount) / float64(total)
	switch {
	case errorRate > 0.6:
		profile.LeakInterval = time.Duration(float64(profile.LeakInterval) * 0.7)
		if profile.LeakInterval < minLeakInterval {
			profile.LeakInterval = minLeakInterval
		}
		profile.NoiseRatio = int(float64(profile.NoiseRatio) * 0.8)
		if profile.NoiseRatio < minNoiseRatio {
			profile.NoiseRatio = minNoiseRatio
		}
	case errorRate < 0.2 && gs.ShipsSunk() > 2:
		profile.LeakInterval = time.Duration(float64(profile.LeakInterval) * 1.2)
		if profile.LeakInterval > maxLeakInterval {
			profile.LeakInterval = maxLeakInterval
		}
		profile.NoiseRatio = int(float64(profile.NoiseRatio) * 1.2)
		if profile.NoiseRatio > maxNoiseRatio {
			profile.NoiseRatio = maxNoiseRatio
		}
	}
	return profile
}

// HintPhase maps elapsed time to the generator's hint tier: 1 names the
// cipher explicitly, 2 attaches only a vague "(encoded)" marker, 3 strips all
// markers and metadata fields.
func (d *DifficultyScaler) HintPhase() int {
	return HintPhaseForElapsed(d.ElapsedMinutes())
}

func HintPhaseForElapsed(elapsedMinutes int) int {
	switch {
	case elapsedMinutes < 30:
		return 1
	case elapsedMinutes < 50:
		return 2
	default:
		return 3
	}
}

// ProgressSummary is the coarse difficulty readout for the admin panel.
type ProgressSummary struct {
	Phase            string `json:"phase"`
	ElapsedMinutes   int    `json:"elapsed_minutes"`
	RemainingMinutes int    `json:"remaining_minutes"`
	DifficultyLevel  string `json:"difficulty_level"`
}

func (d *DifficultyScaler) ProgressSummary(durationMinutes int) ProgressSummary {
	elapsed := d.ElapsedMinutes()
	remaining := durationMinutes - elapsed
	if remaining < 0 {
		remaining = 0
	}

	level := "Easy"
	switch {
	case elapsed > 80:
		level = "Extreme"
	case elapsed > 50:
		level = "Hard"
	case elapsed > 20:
		level = "Medium"
	}

	return ProgressSummary{
		Phase:            PhaseForElapsed(elapsed).Name,
		ElapsedMinutes:   elapsed,
		RemainingMinutes: remaining,
		DifficultyLevel:  level,
	}
}
