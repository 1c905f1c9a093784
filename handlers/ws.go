package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"cyber-battleship/models"
	"cyber-battleship/services"
)

type WSHandler struct {
	games *services.GameManager
	hub   *services.Hub
}

func NewWSHandler(games *services.GameManager, hub *services.Hub) *WSHandler {
	return &WSHandler{games: games, hub: hub}
}

func SetupWebSocketRoutes(app *fiber.App, h *WSHandler) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(h.Serve))
}

type wsMessage struct {
	Type string `json:"type"`
	Data struct {
		TeamID     string            `json:"team_id"`
		Row        string            `json:"row"`
		Column     int               `json:"column"`
		AttackType models.AttackType `json:"attack_type"`
	} `json:"data"`
}

// Serve runs one connection's read loop. A socket must join a team before
// submitting; after the join, outbound traffic goes through the hub so the
// connection shares the team room's feed.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	var client *services.Client
	defer func() {
		if client != nil {
			teamID := client.TeamID()
			h.hub.Unregister(client)
			h.hub.ToTeam(teamID, "player_left", fiber.Map{
				"players": h.hub.TeamConnections(teamID),
			})
		} else {
			conn.Close()
		}
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join_team":
			if client != nil {
				client.Send("error", fiber.Map{"error": "already joined a team"})
				continue
			}
			joined, errMsg := h.join(conn, msg.Data.TeamID)
			if errMsg != "" {
				// Not registered yet, so direct writes are still safe here.
				conn.WriteJSON(fiber.Map{"type": "error", "data": fiber.Map{"error": errMsg}})
				continue
			}
			client = joined

		case "submit_coordinate":
			if client == nil {
				conn.WriteJSON(fiber.Map{"type": "error", "data": fiber.Map{"error": "join a team first"}})
				continue
			}
			h.submit(client, msg)

		default:
			if client != nil {
				client.Send("error", fiber.Map{"error": "unknown message type"})
			}
		}
	}
}

func (h *WSHandler) join(conn *websocket.Conn, teamID string) (*services.Client, string) {
	gs, err := h.games.GetGame(teamID)
	if err != nil {
		return nil, "team not found"
	}
	if h.hub.TeamConnections(teamID) >= maxPlayersPerTeam {
		return nil, "team is full"
	}

	client := h.hub.Register(conn, teamID)
	log.Printf("Player joined team %s (%d connected)", teamID, h.hub.TeamConnections(teamID))
	h.hub.ToTeam(teamID, "player_joined", fiber.Map{
		"players": h.hub.TeamConnections(teamID),
	})

	client.Send("joined_team", fiber.Map{
		"team_id":    gs.TeamID(),
		"team_name":  gs.TeamName(),
		"score":      gs.Score(),
		"ships_sunk": gs.ShipsSunk(),
		"ships":      gs.VisibleShips(),
		"is_active":  h.games.IsCompetitionActive(),
	})
	return client, ""
}

func (h *WSHandler) submit(client *services.Client, msg wsMessage) {
	req := models.SubmissionRequest{
		TeamID:     client.TeamID(),
		Row:        msg.Data.Row,
		Column:     msg.Data.Column,
		AttackType: msg.Data.AttackType,
	}
	coord, attackType, err := validateSubmission(req)
	if err != nil {
		client.Send("submission_result", fiber.Map{"success": false, "error": err.Error()})
		return
	}

	result, err := h.games.SubmitCoordinate(req.TeamID, coord, attackType)
	if err != nil {
		client.Send("submission_result", fiber.Map{"success": false, "error": err.Error()})
		return
	}

	client.Send("submission_result", buildSubmissionResponse(result))
	broadcastSubmitEffects(h.games, h.hub, req.TeamID, result)
}
