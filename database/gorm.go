package database

import (
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cyber-battleship/models"
)

// GameDB is the gorm-backed Store.
type GameDB struct {
	DB *gorm.DB
}

// Connect opens the database, migrates the schema and guarantees the singleton
// competition row exists.
func Connect(dsn string) (*GameDB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Team{},
		&models.Ship{},
		&models.Submission{},
		&models.CompetitionState{},
		&models.FirstSink{},
	); err != nil {
		return nil, err
	}

	state := models.CompetitionState{ID: 1, DurationMinutes: 90}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error; err != nil {
		return nil, err
	}

	return &GameDB{DB: db}, nil
}

func (g *GameDB) SaveTeam(team *models.Team) error {
	return g.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(team).Error
}

func (g *GameDB) GetTeam(teamID string) (*models.Team, error) {
	var team models.Team
	err := g.DB.First(&team, "team_id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (g *GameDB) GetAllTeams() ([]models.Team, error) {
	var teams []models.Team
	err := g.DB.Order("created_at").Find(&teams).Error
	return teams, err
}

func (g *GameDB) UpdateTeamScore(teamID string, score, shipsSunk int) error {
	return g.DB.Model(&models.Team{}).
		Where("team_id = ?", teamID).
		Updates(map[string]interface{}{"score": score, "ships_sunk": shipsSunk}).Error
}

func (g *GameDB) DeleteTeam(teamID string) error {
	return g.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Ship{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		return tx.Where("team_id = ?", teamID).Delete(&models.Team{}).Error
	})
}

func (g *GameDB) ClearAllTeams() error {
	return g.DB.Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{
			&models.Ship{}, &models.Submission{}, &models.FirstSink{}, &models.Team{},
		} {
			if err := global.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *GameDB) SaveShip(ship *models.Ship) error {
	return g.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(ship).Error
}

func (g *GameDB) SaveShips(ships []*models.Ship) error {
	if len(ships) == 0 {
		return nil
	}
	return g.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(ships, 100).Error
	})
}

func (g *GameDB) GetShips(teamID string) ([]*models.Ship, error) {
	var ships []*models.Ship
	err := g.DB.Where("team_id = ?", teamID).Order("id").Find(&ships).Error
	return ships, err
}

func (g *GameDB) SaveSubmission(sub *models.Submission) error {
	return g.DB.Create(sub).Error
}

func (g *GameDB) GetSubmissions(teamID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := g.DB.Where("team_id = ?", teamID).Order("id").Find(&subs).Error
	return subs, err
}

func (g *GameDB) GetCompetitionState() (*models.CompetitionState, error) {
	var state models.CompetitionState
	err := g.DB.First(&state, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = models.CompetitionState{ID: 1, DurationMinutes: 90}
		if err := g.DB.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (g *GameDB) SetCompetitionActive(start time.Time) error {
	return g.DB.Model(&models.CompetitionState{}).
		Where("id = ?", 1).
		Updates(map[string]interface{}{
			"is_active":  true,
			"start_time": start,
			"end_time":   nil,
		}).Error
}

func (g *GameDB) EndCompetition(end time.Time) error {
	return g.DB.Model(&models.CompetitionState{}).
		Where("id = ?", 1).
		Updates(map[string]interface{}{
			"is_active": false,
			"end_time":  end,
		}).Error
}

func (g *GameDB) SetCompetitionDuration(minutes int) error {
	return g.DB.Model(&models.CompetitionState{}).
		Where("id = ?", 1).
		Update("duration_minutes", minutes).Error
}

func (g *GameDB) SaveFirstSink(shipKey, teamID string) (bool, error) {
	sink := models.FirstSink{ShipKey: shipKey, TeamID: teamID, Timestamp: time.Now()}
	res := g.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&sink)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (g *GameDB) GetAllFirstSinks() ([]models.FirstSink, error) {
	var sinks []models.FirstSink
	err := g.DB.Find(&sinks).Error
	return sinks, err
}

func (g *GameDB) FullReset() error {
	if err := g.ClearAllTeams(); err != nil {
		return err
	}
	return g.DB.Model(&models.CompetitionState{}).
		Where("id = ?", 1).
		Updates(map[string]interface{}{
			"is_active":        false,
			"start_time":       nil,
			"end_time":         nil,
			"duration_minutes": 90,
		}).Error
}

// GetStats counts rows for the admin panel.
func (g *GameDB) GetStats() (Stats, error) {
	var s Stats
	if err := g.DB.Model(&models.Team{}).Count(&s.TotalTeams).Error; err != nil {
		return s, err
	}
	if err := g.DB.Model(&models.Ship{}).Count(&s.TotalShips).Error; err != nil {
		return s, err
	}
	if err := g.DB.Model(&models.Submission{}).Count(&s.TotalSubmissions).Error; err != nil {
		return s, err
	}
	return s, nil
}
