package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"cyber-battleship/services"
	"cyber-battleship/utils"
)

const maxPlayersPerTeam = 4

type TeamHandler struct {
	games   *services.GameManager
	traffic *services.TrafficManager
	hub     *services.Hub
}

func NewTeamHandler(games *services.GameManager, traffic *services.TrafficManager, hub *services.Hub) *TeamHandler {
	return &TeamHandler{games: games, traffic: traffic, hub: hub}
}

func SetupTeamRoutes(app *fiber.App, h *TeamHandler, admin fiber.Handler) {
	app.Post("/api/teams", h.CreateTeam)
	app.Post("/api/teams/claim", h.ClaimTeam)
	app.Get("/api/teams", h.ListTeams)
	app.Get("/api/teams/:team_id/status", h.TeamStatus)

	app.Post("/api/teams/bulk", admin, h.BulkCreateTeams)
	app.Delete("/api/teams/:team_id", admin, h.DeleteTeam)
	app.Delete("/api/teams", admin, h.ClearTeams)
}

type createTeamRequest struct {
	TeamName string `json:"team_name"`
}

// CreateTeam registers one team. A supplied name becomes the team id via
// slugging; without one the team gets a generated phonetic code.
func (h *TeamHandler) CreateTeam(c *fiber.Ctx) error {
	var req createTeamRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	teamID, teamName := h.resolveTeamIdentity(req.TeamName)
	gs, err := h.games.CreateTeam(teamID, teamName)
	if err != nil {
		return respondError(c, err)
	}
	h.startTrafficIfActive(teamID)

	log.Printf("Team created: %s (%s)", teamName, teamID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"team_id":    gs.TeamID(),
		"team_name":  gs.TeamName(),
		"ship_count": gs.ShipCount(),
	})
}

type bulkCreateRequest struct {
	Count int `json:"count"`
}

// BulkCreateTeams pre-provisions teams with generated codes for classroom
// setups.
func (h *TeamHandler) BulkCreateTeams(c *fiber.Ctx) error {
	var req bulkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Count < 1 || req.Count > 50 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "count must be between 1 and 50"})
	}

	created := make([]fiber.Map, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		teamID, teamName := h.resolveTeamIdentity("")
		gs, err := h.games.CreateTeam(teamID, teamName)
		if err != nil {
			return respondError(c, err)
		}
		h.startTrafficIfActive(teamID)
		created = append(created, fiber.Map{
			"team_id":   gs.TeamID(),
			"team_name": gs.TeamName(),
		})
	}
	log.Printf("Bulk created %d teams", len(created))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"teams": created})
}

// ClaimTeam hands out a team nobody is connected to yet, so pre-provisioned
// teams can be distributed without coordination.
func (h *TeamHandler) ClaimTeam(c *fiber.Ctx) error {
	for _, gs := range h.games.AllGames() {
		if h.hub.TeamConnections(gs.TeamID()) == 0 {
			return c.JSON(fiber.Map{
				"team_id":   gs.TeamID(),
				"team_name": gs.TeamName(),
			})
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no unclaimed teams available"})
}

func (h *TeamHandler) ListTeams(c *fiber.Ctx) error {
	games := h.games.AllGames()
	teams := make([]fiber.Map, 0, len(games))
	for _, gs := range games {
		teams = append(teams, fiber.Map{
			"team_id":    gs.TeamID(),
			"team_name":  gs.TeamName(),
			"score":      gs.Score(),
			"ships_sunk": gs.ShipsSunk(),
			"players":    h.hub.TeamConnections(gs.TeamID()),
		})
	}
	return c.JSON(fiber.Map{"teams": teams})
}

// TeamStatus returns one team's redacted board plus score summary.
func (h *TeamHandler) TeamStatus(c *fiber.Ctx) error {
	teamID := c.Params("team_id")
	gs, err := h.games.GetGame(teamID)
	if err != nil {
		return respondError(c, err)
	}
	missCount, total := gs.SubmissionStats()
	return c.JSON(fiber.Map{
		"team_id":      gs.TeamID(),
		"team_name":    gs.TeamName(),
		"score":        gs.Score(),
		"ships_sunk":   gs.ShipsSunk(),
		"submissions":  total,
		"miss_count":   missCount,
		"active_ships": gs.ActiveShipCount(),
		"ships":        gs.VisibleShips(),
	})
}

func (h *TeamHandler) DeleteTeam(c *fiber.Ctx) error {
	teamID := c.Params("team_id")
	if err := h.games.DeleteGame(teamID); err != nil {
		return respondError(c, err)
	}
	h.traffic.StopTrafficForTeam(teamID)
	log.Printf("Team deleted: %s", teamID)
	return c.JSON(fiber.Map{"message": fmt.Sprintf("team %s deleted", teamID)})
}

func (h *TeamHandler) ClearTeams(c *fiber.Ctx) error {
	h.traffic.StopAll()
	if err := h.games.ClearAllGames(); err != nil {
		return respondError(c, err)
	}
	log.Printf("All teams cleared")
	return c.JSON(fiber.Map{"message": "all teams cleared"})
}

func (h *TeamHandler) resolveTeamIdentity(name string) (teamID, teamName string) {
	if name != "" {
		return utils.NormalizeTeamID(name), name
	}
	code := utils.GenerateTeamCode(func(candidate string) bool {
		_, err := h.games.GetGame(candidate)
		return err == nil
	})
	return code, code
}

// Teams created mid-competition join the feed immediately.
func (h *TeamHandler) startTrafficIfActive(teamID string) {
	if !h.games.IsCompetitionActive() {
		return
	}
	if err := h.traffic.StartTrafficForTeam(teamID); err != nil {
		log.Printf("Start traffic for %s: %v", teamID, err)
	}
}
