package chat

import (
	"fmt"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Hub relays chat messages to live websocket clients. Rooms are keyed by
// customer id: the customer and any admins watching that conversation share
// a room. Persistence stays in the service; the hub only fans out.
type Hub struct {
	service *Service

	mu          sync.Mutex
	rooms       map[int]map[string]*client
	clientRooms map[string]int
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func NewHub(service *Service) *Hub {
	return &Hub{
		service:     service,
		rooms:       map[int]map[string]*client{},
		clientRooms: map[string]int{},
	}
}

type wsEnvelope struct {
	Event      string `json:"event"`
	Room       int    `json:"room,omitempty"`
	ReceiverID int    `json:"receiverId,omitempty"`
	Message    string `json:"message,omitempty"`
}

type wsOutbound struct {
	Event string  `json:"event"`
	Data  Message `json:"data"`
}

// RegisterRoutes mounts the websocket endpoint. The JWT middleware does not
// cover websocket upgrades, so the token travels as a query parameter.
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(h.handle))
}

func (h *Hub) handle(conn *websocket.Conn) {
	userID, isAdmin, err := authenticateToken(conn.Query("token"))
	if err != nil {
		conn.WriteJSON(fiber.Map{"event": "error", "message": "unauthorized"})
		conn.Close()
		return
	}

	cl := &client{conn: conn}
	clientID := uuid.NewString()

	// customers land in their own room immediately; admins pick one with
	// an explicit joinChat
	if !isAdmin {
		h.join(userID, clientID, cl)
	}
	defer h.leave(clientID)

	for {
		var env wsEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Event {
		case "joinChat":
			target := env.Room
			if !isAdmin {
				target = userID
			}
			h.leave(clientID)
			h.join(target, clientID, cl)
		case "sendMessage":
			if _, err := h.service.Send(userID, isAdmin, env.ReceiverID, env.Message); err != nil {
				cl.writeJSON(fiber.Map{"event": "error", "message": err.Error()})
			}
		}
	}
}

// Publish implements Publisher. A slow or dead client is dropped rather
// than allowed to block the conversation.
func (h *Hub) Publish(customerID int, m Message) {
	h.mu.Lock()
	members := make([]*client, 0, len(h.rooms[customerID]))
	for _, cl := range h.rooms[customerID] {
		members = append(members, cl)
	}
	h.mu.Unlock()

	out := wsOutbound{Event: "receiveMessage", Data: m}
	for _, cl := range members {
		if err := cl.writeJSON(out); err != nil {
			cl.conn.Close()
		}
	}
}

func (h *Hub) join(room int, clientID string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = map[string]*client{}
	}
	h.rooms[room][clientID] = cl
	h.clientRooms[clientID] = room
}

func (h *Hub) leave(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.clientRooms[clientID]
	if !ok {
		return
	}
	delete(h.rooms[room], clientID)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	delete(h.clientRooms, clientID)
}

func authenticateToken(tokenString string) (userID int, isAdmin bool, err error) {
	if tokenString == "" {
		return 0, false, fmt.Errorf("missing token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, false, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, fmt.Errorf("invalid claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false, fmt.Errorf("missing user_id claim")
	}
	admin, _ := claims["is_admin"].(bool)
	return int(id), admin, nil
}

func (cl *client) writeJSON(v any) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	return cl.conn.WriteJSON(v)
}
