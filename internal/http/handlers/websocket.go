package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"tirefinder/internal/auth"
	"tirefinder/pkg/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketMessage represents a message sent through WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn *websocket.Conn
	send chan WebSocketMessage
	hub  *WebSocketHub
}

// WebSocketHub manages all WebSocket connections
type WebSocketHub struct {
	clients    map[*WebSocketClient]bool
	broadcast  chan WebSocketMessage
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	mu         sync.RWMutex
}

// WebSocketHandler pushes import job progress to connected admin clients
type WebSocketHandler struct {
	hub         *WebSocketHub
	authService *auth.Service
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(authService *auth.Service) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan WebSocketMessage),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
	}

	go hub.run()
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// Upgrader configures the websocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, check against allowed origins
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HandleWebSocket handles WebSocket connection upgrades.
// Browsers cannot set an Authorization header on the upgrade request,
// so the token is carried in a query parameter instead.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token: "+err.Error())
	}

	if claims.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := &WebSocketClient{
		conn: conn,
		send: make(chan WebSocketMessage, 256),
		hub:  h.hub,
	}

	h.hub.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}

// BroadcastImportProgress implements services.ImportProgressNotifier
func (h *WebSocketHandler) BroadcastImportProgress(progress models.HoursImportJobProgress) {
	h.hub.broadcast <- WebSocketMessage{
		Type:      "import_progress",
		Data:      progress,
		Timestamp: time.Now(),
	}
}

// run manages the WebSocket hub
func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.mu.Lock()
			hub.clients[client] = true
			hub.mu.Unlock()

			welcome := WebSocketMessage{
				Type:      "connection",
				Data:      map[string]string{"status": "connected"},
				Timestamp: time.Now(),
			}
			select {
			case client.send <- welcome:
			default:
				close(client.send)
				delete(hub.clients, client)
			}

		case client := <-hub.unregister:
			hub.mu.Lock()
			if _, ok := hub.clients[client]; ok {
				delete(hub.clients, client)
				close(client.send)
			}
			hub.mu.Unlock()

		case message := <-hub.broadcast:
			hub.mu.RLock()
			for client := range hub.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(hub.clients, client)
				}
			}
			hub.mu.RUnlock()
		}
	}
}

// readPump handles reading messages from the WebSocket
func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// 30s read timeout, pings go out every 20s
	c.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}

		var msg WebSocketMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			switch msg.Type {
			case "ping":
				pong := WebSocketMessage{
					Type:      "pong",
					Data:      map[string]string{"status": "ok"},
					Timestamp: time.Now(),
				}
				select {
				case c.send <- pong:
				default:
					return
				}
			}
		}
	}
}

// writePump handles writing messages to the WebSocket
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				log.Warn().Err(err).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
