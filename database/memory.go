package database

import (
	"sync"
	"time"

	"cyber-battleship/models"
)

// Memory is an in-process Store used by tests and DB-less local runs. It
// copies values on the way in and out so callers cannot mutate stored state
// behind its back, mirroring how rows behave with a real database.
type Memory struct {
	mu          sync.Mutex
	teams       map[string]models.Team
	teamOrder   []string
	ships       map[string][]models.Ship // team_id -> insertion order
	submissions map[string][]models.Submission
	firstSinks  map[string]models.FirstSink
	competition models.CompetitionState
	nextSubID   uint
}

func NewMemory() *Memory {
	return &Memory{
		teams:       make(map[string]models.Team),
		ships:       make(map[string][]models.Ship),
		submissions: make(map[string][]models.Submission),
		firstSinks:  make(map[string]models.FirstSink),
		competition: models.CompetitionState{ID: 1, DurationMinutes: 90},
		nextSubID:   1,
	}
}

func (m *Memory) SaveTeam(team *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[team.TeamID]; !ok {
		m.teamOrder = append(m.teamOrder, team.TeamID)
	}
	m.teams[team.TeamID] = *team
	return nil
}

func (m *Memory) GetTeam(teamID string) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.teams[teamID]
	if !ok {
		return nil, nil
	}
	return &team, nil
}

func (m *Memory) GetAllTeams() ([]models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	teams := make([]models.Team, 0, len(m.teamOrder))
	for _, id := range m.teamOrder {
		if team, ok := m.teams[id]; ok {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func (m *Memory) UpdateTeamScore(teamID string, score, shipsSunk int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if team, ok := m.teams[teamID]; ok {
		team.Score = score
		team.ShipsSunk = shipsSunk
		m.teams[teamID] = team
	}
	return nil
}

func (m *Memory) DeleteTeam(teamID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.teams, teamID)
	delete(m.ships, teamID)
	delete(m.submissions, teamID)
	for i, id := range m.teamOrder {
		if id == teamID {
			m.teamOrder = append(m.teamOrder[:i], m.teamOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ClearAllTeams() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams = make(map[string]models.Team)
	m.teamOrder = nil
	m.ships = make(map[string][]models.Ship)
	m.submissions = make(map[string][]models.Submission)
	m.firstSinks = make(map[string]models.FirstSink)
	return nil
}

func (m *Memory) SaveShip(ship *models.Ship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertShip(*ship)
	return nil
}

func (m *Memory) SaveShips(ships []*models.Ship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ship := range ships {
		m.upsertShip(*ship)
	}
	return nil
}

func (m *Memory) upsertShip(ship models.Ship) {
	list := m.ships[ship.TeamID]
	for i := range list {
		if list[i].ID == ship.ID {
			list[i] = ship
			return
		}
	}
	m.ships[ship.TeamID] = append(list, ship)
}

func (m *Memory) GetShips(teamID string) ([]*models.Ship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.ships[teamID]
	out := make([]*models.Ship, len(list))
	for i := range list {
		ship := list[i]
		out[i] = &ship
	}
	return out, nil
}

func (m *Memory) SaveSubmission(sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *sub
	stored.ID = m.nextSubID
	m.nextSubID++
	m.submissions[sub.TeamID] = append(m.submissions[sub.TeamID], stored)
	return nil
}

func (m *Memory) GetSubmissions(teamID string) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Submission(nil), m.submissions[teamID]...), nil
}

func (m *Memory) GetCompetitionState() (*models.CompetitionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.competition
	return &state, nil
}

func (m *Memory) SetCompetitionActive(start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.competition.IsActive = true
	m.competition.StartTime = &start
	m.competition.EndTime = nil
	return nil
}

func (m *Memory) EndCompetition(end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.competition.IsActive = false
	m.competition.EndTime = &end
	return nil
}

func (m *Memory) SetCompetitionDuration(minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.competition.DurationMinutes = minutes
	return nil
}

func (m *Memory) SaveFirstSink(shipKey, teamID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.firstSinks[shipKey]; ok {
		return false, nil
	}
	m.firstSinks[shipKey] = models.FirstSink{
		ShipKey:   shipKey,
		TeamID:    teamID,
		Timestamp: time.Now(),
	}
	return true, nil
}

func (m *Memory) GetAllFirstSinks() ([]models.FirstSink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sinks := make([]models.FirstSink, 0, len(m.firstSinks))
	for _, sink := range m.firstSinks {
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

func (m *Memory) GetStats() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := Stats{TotalTeams: int64(len(m.teams))}
	for _, ships := range m.ships {
		stats.TotalShips += int64(len(ships))
	}
	for _, subs := range m.submissions {
		stats.TotalSubmissions += int64(len(subs))
	}
	return stats, nil
}

func (m *Memory) FullReset() error {
	if err := m.ClearAllTeams(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.competition = models.CompetitionState{ID: 1, DurationMinutes: 90}
	return nil
}
