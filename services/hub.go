package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Client is one websocket connection bound to a team room. Writes go through
// the send channel so the write pump is the only goroutine touching the
// connection.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	teamID string
	hub    *Hub
}

// Hub tracks connections grouped into per-team rooms and fans events out to
// them. It satisfies the Broadcaster interface the traffic manager publishes
// through.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Register binds a fresh connection to a team room and starts its write pump.
// The caller keeps running the read loop on its own goroutine.
func (h *Hub) Register(conn *websocket.Conn, teamID string) *Client {
	client := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		teamID: teamID,
		hub:    h,
	}
	h.mu.Lock()
	room, ok := h.rooms[teamID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[teamID] = room
	}
	room[client] = true
	h.mu.Unlock()

	go client.writePump()
	return client
}

// Unregister drops the client from its room and closes its send channel,
// which stops the write pump.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.teamID]
	if ok {
		if _, present := room[client]; present {
			delete(room, client)
			close(client.send)
		}
		if len(room) == 0 {
			delete(h.rooms, client.teamID)
		}
	}
	h.mu.Unlock()
}

// TeamConnections reports how many sockets are currently in a team's room.
func (h *Hub) TeamConnections(teamID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[teamID])
}

// ToTeam sends an event to every connection in one team's room. Slow clients
// with a full send buffer are dropped rather than allowed to stall the rest.
func (h *Hub) ToTeam(teamID, event string, data interface{}) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		log.Printf("Hub: marshal %s failed: %v", event, err)
		return
	}

	h.mu.Lock()
	var stalled []*Client
	for client := range h.rooms[teamID] {
		select {
		case client.send <- payload:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.Unlock()

	for _, client := range stalled {
		h.Unregister(client)
	}
}

// ToAll broadcasts an event to every room.
func (h *Hub) ToAll(event string, data interface{}) {
	h.mu.Lock()
	teamIDs := make([]string, 0, len(h.rooms))
	for teamID := range h.rooms {
		teamIDs = append(teamIDs, teamID)
	}
	h.mu.Unlock()

	for _, teamID := range teamIDs {
		h.ToTeam(teamID, event, data)
	}
}

func marshalEvent(event string, data interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type": event,
		"data": data,
	})
}

// Send queues a payload for this client only, for request-scoped replies on
// the socket.
func (c *Client) Send(event string, data interface{}) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		log.Printf("Hub: marshal %s failed: %v", event, err)
		return
	}
	select {
	case c.send <- payload:
	default:
		c.hub.Unregister(c)
	}
}

func (c *Client) TeamID() string { return c.teamID }

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
