package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"cyber-battleship/database"
	"cyber-battleship/services"
)

type CompetitionHandler struct {
	games   *services.GameManager
	traffic *services.TrafficManager
	scaler  *services.DifficultyScaler
	hub     *services.Hub
	store   database.Store
}

func NewCompetitionHandler(games *services.GameManager, traffic *services.TrafficManager, scaler *services.DifficultyScaler, hub *services.Hub, store database.Store) *CompetitionHandler {
	return &CompetitionHandler{games: games, traffic: traffic, scaler: scaler, hub: hub, store: store}
}

func SetupCompetitionRoutes(app *fiber.App, h *CompetitionHandler, admin fiber.Handler) {
	app.Get("/api/competition/status", h.Status)
	app.Get("/api/competition/progress", h.Progress)
	app.Get("/health", h.Health)

	app.Post("/api/competition/start", admin, h.Start)
	app.Post("/api/competition/end", admin, h.End)
	app.Put("/api/competition/duration", admin, h.SetDuration)
	app.Post("/api/admin/reset", admin, h.Reset)
	app.Get("/api/admin/stats", admin, h.AdminStats)
}

// Start kicks the competition off: stamps the clock, anchors difficulty
// scaling and spins up every team's traffic feed.
func (h *CompetitionHandler) Start(c *fiber.Ctx) error {
	start, err := h.games.StartCompetition()
	if err != nil {
		return respondError(c, err)
	}
	h.traffic.SetCompetitionStart(start)

	for _, gs := range h.games.AllGames() {
		if err := h.traffic.StartTrafficForTeam(gs.TeamID()); err != nil {
			log.Printf("Start traffic for %s: %v", gs.TeamID(), err)
		}
	}
	h.hub.ToAll("competition_started", fiber.Map{
		"start_time":       start,
		"duration_minutes": h.games.DurationMinutes(),
	})
	return c.JSON(fiber.Map{
		"message":          "competition started",
		"start_time":       start,
		"duration_minutes": h.games.DurationMinutes(),
	})
}

// End stops the competition early. Feed teardown and the broadcast run via
// the manager's end hook so the timed path behaves identically.
func (h *CompetitionHandler) End(c *fiber.Ctx) error {
	if err := h.games.EndCompetition(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "competition ended",
		"leaderboard": h.games.Leaderboard(),
	})
}

type durationRequest struct {
	DurationMinutes int `json:"duration_minutes"`
}

func (h *CompetitionHandler) SetDuration(c *fiber.Ctx) error {
	var req durationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.games.SetCompetitionDuration(req.DurationMinutes); err != nil {
		return respondError(c, err)
	}
	log.Printf("Competition duration set to %d minutes", req.DurationMinutes)
	return c.JSON(fiber.Map{"duration_minutes": req.DurationMinutes})
}

func (h *CompetitionHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.games.Status())
}

// Progress reports the difficulty readout for the projector view.
func (h *CompetitionHandler) Progress(c *fiber.Ctx) error {
	return c.JSON(h.scaler.ProgressSummary(h.games.DurationMinutes()))
}

// Reset wipes everything back to factory state.
func (h *CompetitionHandler) Reset(c *fiber.Ctx) error {
	h.traffic.StopAll()
	if err := h.games.FullReset(); err != nil {
		return respondError(c, err)
	}
	h.hub.ToAll("system_reset", fiber.Map{"message": "system reset by administrator"})
	log.Printf("Full system reset")
	return c.JSON(fiber.Map{"message": "system reset complete"})
}

func (h *CompetitionHandler) AdminStats(c *fiber.Ctx) error {
	stats, err := h.store.GetStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *CompetitionHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":             "ok",
		"competition_active": h.games.IsCompetitionActive(),
	})
}
