// Package websocket delivers engine events to the one connected browser
// client. A new connection replaces the previous one; there is never more
// than one addressed client.
package websocket

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/anvil-ide/anvil/internal/crypto"
	"github.com/anvil-ide/anvil/internal/logger"
	"github.com/anvil-ide/anvil/internal/notify"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser client origin is enforced by CORS on the API.
	},
}

// Event is the wire envelope for every notification.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Server is a single-client WebSocket notifier.
type Server struct {
	jwtManager *crypto.JWTManager

	mu     sync.Mutex
	client *websocket.Conn
}

// NewServer creates a WebSocket server authenticating clients with jwtManager.
func NewServer(jwtManager *crypto.JWTManager) *Server {
	return &Server{jwtManager: jwtManager}
}

// HandleUpdates upgrades the connection and holds it until the client goes
// away. The token travels as a query parameter because browsers cannot set
// headers on WebSocket handshakes.
func (s *Server) HandleUpdates(c *gin.Context) {
	token := c.Query("token")
	if _, err := s.jwtManager.VerifyToken(token); err != nil {
		logger.Warnf("WebSocket auth rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("WebSocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	if s.client != nil {
		logger.Infof("WebSocket client replaced by a new connection")
		_ = s.client.Close()
	}
	s.client = conn
	s.mu.Unlock()

	logger.Infof("WebSocket client connected")

	// The client sends nothing meaningful; read until close to notice when
	// it disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warnf("WebSocket error: %v", err)
			}
			break
		}
	}

	s.mu.Lock()
	if s.client == conn {
		s.client = nil
	}
	s.mu.Unlock()
	_ = conn.Close()

	logger.Infof("WebSocket client disconnected")
}

// emit sends one event to the connected client, if any. Writes happen under
// the mutex so events are delivered in emit order. Delivery is
// fire-and-forget: failures are logged and dropped.
func (s *Server) emit(eventType string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return
	}
	if err := s.client.WriteJSON(Event{Type: eventType, Data: data}); err != nil {
		logger.Warnf("failed to send %s event: %v", eventType, err)
	}
}

// BuildLog implements notify.Notifier.
func (s *Server) BuildLog(line string) {
	s.emit(notify.TopicBuildLog, gin.H{"line": line})
}

// RunLog implements notify.Notifier.
func (s *Server) RunLog(lines []string) {
	s.emit(notify.TopicRunLog, gin.H{"lines": lines})
}

// RunState implements notify.Notifier.
func (s *Server) RunState(state notify.RunState) {
	s.emit(notify.TopicRunState, state)
}

// EnvironmentError implements notify.Notifier.
func (s *Server) EnvironmentError(envErr notify.EnvironmentError) {
	s.emit(notify.TopicEnvironmentError, envErr)
}

var _ notify.Notifier = (*Server)(nil)
