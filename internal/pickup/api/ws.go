package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the envelope of every frame pushed to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type client struct {
	conn     *websocket.Conn
	identity models.Identity
	mu       sync.Mutex
}

func (c *client) write(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub keeps live pickup subscribers. Requesters are keyed by the user they
// act for, so employees share their owner's stream. Drivers are also keyed
// by driver profile id.
type Hub struct {
	mu      sync.RWMutex
	users   map[string]map[*client]struct{}
	drivers map[string]map[*client]struct{}
	parser  middleware.TokenParser
	logger  *util.Logger
}

func NewHub(parser middleware.TokenParser, logger *util.Logger) *Hub {
	return &Hub{
		users:   make(map[string]map[*client]struct{}),
		drivers: make(map[string]map[*client]struct{}),
		parser:  parser,
		logger:  logger,
	}
}

// ServeWS authenticates ?token=<access token> before upgrading.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	instance := "Hub.ServeWS"

	claims, err := h.parser.ParseAccess(r.URL.Query().Get("token"))
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(instance, "websocket upgrade failed", "error", err.Error())
		return
	}

	c := &client{conn: conn, identity: claims.Identity()}
	h.register(c)
	defer func() {
		h.unregister(c)
		conn.Close()
	}()

	h.logger.Info(instance, "subscriber connected", "user_id", c.identity.UserID, "role", string(c.identity.Role))
	if err := c.write(Message{Type: "auth_success"}); err != nil {
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			h.logger.Info(instance, "subscriber disconnected", "user_id", c.identity.UserID)
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				h.logger.Warn(instance, "ping failed", "user_id", c.identity.UserID, "error", err.Error())
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	add(h.users, c.identity.ActingUserID(), c)
	if c.identity.Role == models.RoleDriver && c.identity.ProfileID != "" {
		add(h.drivers, c.identity.ProfileID, c)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	remove(h.users, c.identity.ActingUserID(), c)
	if c.identity.Role == models.RoleDriver {
		remove(h.drivers, c.identity.ProfileID, c)
	}
}

func add(m map[string]map[*client]struct{}, key string, c *client) {
	if m[key] == nil {
		m[key] = make(map[*client]struct{})
	}
	m[key][c] = struct{}{}
}

func remove(m map[string]map[*client]struct{}, key string, c *client) {
	delete(m[key], c)
	if len(m[key]) == 0 {
		delete(m, key)
	}
}

func (h *Hub) snapshot(m map[string]map[*client]struct{}, key string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	list := make([]*client, 0, len(m[key]))
	for c := range m[key] {
		list = append(list, c)
	}
	return list
}

func (h *Hub) send(clients []*client, msg interface{}) {
	for _, c := range clients {
		if err := c.write(msg); err != nil {
			h.logger.Warn("Hub.send", "dropping subscriber", "user_id", c.identity.UserID, "error", err.Error())
			h.unregister(c)
			c.conn.Close()
		}
	}
}

// SendToUser pushes msg to every connection of a user. Offline users are
// skipped silently.
func (h *Hub) SendToUser(userID string, msg interface{}) {
	h.send(h.snapshot(h.users, userID), msg)
}

func (h *Hub) SendToDriver(driverID string, msg interface{}) {
	h.send(h.snapshot(h.drivers, driverID), msg)
}

// BroadcastToDrivers reaches every connected driver.
func (h *Hub) BroadcastToDrivers(msg interface{}) {
	h.mu.RLock()
	var list []*client
	for _, set := range h.drivers {
		for c := range set {
			list = append(list, c)
		}
	}
	h.mu.RUnlock()
	h.send(list, msg)
}

// Subscribers returns how many connections a user holds.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
