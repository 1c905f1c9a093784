package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"cyber-battleship/models"
	"cyber-battleship/services"
)

type GameHandler struct {
	games *services.GameManager
	hub   *services.Hub
}

func NewGameHandler(games *services.GameManager, hub *services.Hub) *GameHandler {
	return &GameHandler{games: games, hub: hub}
}

func SetupGameRoutes(app *fiber.App, h *GameHandler) {
	app.Post("/api/game/submit", h.Submit)
	app.Get("/api/game/leaderboard", h.Leaderboard)
	app.Get("/api/game/attack-types", h.AttackTypes)
}

// Submit scores one coordinate guess and fans the result out: the submitting
// team gets a state update, and a sink refreshes everyone's leaderboard.
func (h *GameHandler) Submit(c *fiber.Ctx) error {
	var req models.SubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	coord, attackType, err := validateSubmission(req)
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.games.SubmitCoordinate(req.TeamID, coord, attackType)
	if err != nil {
		return respondError(c, err)
	}

	response := buildSubmissionResponse(result)
	broadcastSubmitEffects(h.games, h.hub, req.TeamID, result)
	return c.JSON(response)
}

func (h *GameHandler) Leaderboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"leaderboard": h.games.Leaderboard()})
}

// AttackTypes lists the catalog so clients can render pickers without
// hardcoding the taxonomy.
func (h *GameHandler) AttackTypes(c *fiber.Ctx) error {
	types := make([]fiber.Map, 0, len(models.AllAttackTypes))
	for _, attackType := range models.AllAttackTypes {
		info := models.AttackCatalog[attackType]
		types = append(types, fiber.Map{
			"id":         attackType,
			"name":       info.Name,
			"difficulty": info.Difficulty,
		})
	}
	return c.JSON(fiber.Map{"attack_types": types})
}

// validateSubmission checks shape only; game rules live in the services.
// Partial guesses (row only or column only) are legitimate probes, but an
// attack type alone references no cell and is rejected.
func validateSubmission(req models.SubmissionRequest) (models.Coordinate, models.AttackType, error) {
	if req.TeamID == "" {
		return models.Coordinate{}, "", services.NewValidationError("team_id is required")
	}
	if req.Row == "" && req.Column == 0 {
		return models.Coordinate{}, "", services.NewValidationError("at least one coordinate (row or column) is required")
	}
	if req.Row != "" && !models.IsValidRow(req.Row) {
		return models.Coordinate{}, "", services.NewValidationError("row must be A through J, got %q", req.Row)
	}
	if req.Column != 0 && !models.IsValidColumn(req.Column) {
		return models.Coordinate{}, "", services.NewValidationError("column must be 1 through 10, got %d", req.Column)
	}
	if req.AttackType != "" && !models.IsValidAttackType(req.AttackType) {
		return models.Coordinate{}, "", services.NewValidationError("unknown attack type %q", req.AttackType)
	}
	return models.Coordinate{Row: req.Row, Column: req.Column}, req.AttackType, nil
}

func buildSubmissionResponse(result services.SubmitResult) models.SubmissionResponse {
	points := result.Points + result.BonusPoints
	response := models.SubmissionResponse{
		Success:       true,
		Result:        result.Result,
		PointsAwarded: points,
		ShipSunk:      result.Result == models.ResultHit,
		ShipID:        result.ShipID,
		Message:       feedbackMessage(result),
	}
	return response
}

// feedbackMessage gives players a human-readable line matching the result.
func feedbackMessage(result services.SubmitResult) string {
	switch result.Result {
	case models.ResultHit:
		msg := fmt.Sprintf("Direct hit! Threat neutralized for %d points.", result.Points)
		if result.FirstGlobalSink {
			msg += fmt.Sprintf(" First across all teams: +%d bonus!", result.BonusPoints)
		}
		return msg
	case models.ResultPartialRow:
		return "Partial contact: the row checks out. Keep triangulating."
	case models.ResultPartialColumn:
		return "Partial contact: the column checks out. Keep triangulating."
	case models.ResultCorrectType:
		return "Attack type identified, but the location is off."
	case models.ResultDuplicate:
		return "Already analyzed. No new intelligence."
	default:
		return "No threat at those coordinates."
	}
}

// broadcastSubmitEffects pushes a submission's side effects to connected
// clients: team state always, leaderboard to everyone on a sink, and a new
// threat notice when a replacement ship activates.
func broadcastSubmitEffects(games *services.GameManager, hub *services.Hub, teamID string, result services.SubmitResult) {
	gs, err := games.GetGame(teamID)
	if err != nil {
		return
	}
	hub.ToTeam(teamID, "state_update", fiber.Map{
		"score":      gs.Score(),
		"ships_sunk": gs.ShipsSunk(),
		"ships":      gs.VisibleShips(),
	})
	if result.Result == models.ResultHit {
		hub.ToAll("leaderboard_update", fiber.Map{"leaderboard": games.Leaderboard()})
	}
	if result.NewShipActivated {
		hub.ToTeam(teamID, "new_threat_detected", fiber.Map{
			"message": "New hostile signature detected on the grid.",
		})
	}
}
