package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"checkpoint-backend/internal/api/handler/v1/response"
	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

// FeedStateProvider exposes the reconciler's current connection state.
type FeedStateProvider interface {
	State() checkin.ConnState
}

type realtimeClient struct {
	conn *websocket.Conn
	send chan []byte
}

// RealtimeHandler fans applied change events and feed state
// transitions out to every connected operator over websockets. It is
// the reconciler's event sink.
type RealtimeHandler struct {
	authSvc AuthService
	state   FeedStateProvider

	clients      map[*realtimeClient]struct{}
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *realtimeClient
	unregister   chan *realtimeClient
}

func NewRealtimeHandler(authSvc AuthService, state FeedStateProvider) *RealtimeHandler {
	return &RealtimeHandler{
		authSvc:    authSvc,
		state:      state,
		clients:    make(map[*realtimeClient]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *realtimeClient),
		unregister: make(chan *realtimeClient),
	}
}

func (h *RealtimeHandler) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client] = struct{}{}
			h.clientsMutex.Unlock()

		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMutex.Unlock()

		case message := <-h.broadcast:
			h.clientsMutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.clientsMutex.Unlock()

		case <-ctx.Done():
			h.clientsMutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.clientsMutex.Unlock()
			return
		}
	}
}

// PublishEvent implements checkin.EventSink. It never blocks; when the
// hub is saturated the event is dropped and clients resync on their
// next full load.
func (h *RealtimeHandler) PublishEvent(e domain.ChangeEvent) {
	h.publish(gin.H{"type": "change", "event": e})
}

// PublishState implements checkin.EventSink.
func (h *RealtimeHandler) PublishState(s checkin.ConnState) {
	h.publish(gin.H{"type": "feed_state", "state": s})
}

func (h *RealtimeHandler) publish(envelope gin.H) {
	message, err := json.Marshal(envelope)
	if err != nil {
		zap.L().Warn("realtime marshal failed", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message:
	default:
		zap.L().Warn("realtime broadcast dropped, hub saturated")
	}
}

// HandleWebSocket godoc
// @Summary      Subscribe to live check-in changes
// @Description  Streams change events and feed state transitions to the operator UI.
// @Tags         realtime
// @Success      101 {string} string "Switching Protocols to WebSocket"
// @Failure      401 {object} response.Err
// @Router       /ws [get]
// @Security     BearerAuth
func (h *RealtimeHandler) HandleWebSocket(c *gin.Context) {
	actor, respErr := getProfileFromContext(c, h.authSvc)
	if respErr != nil {
		response.RenderErr(c, respErr)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	zap.L().Info("operator subscribed", zap.String("email", actor.Email))

	client := &realtimeClient{
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	// Tell the new client where the feed stands right away.
	if greeting, err := json.Marshal(gin.H{"type": "feed_state", "state": h.state.State()}); err == nil {
		client.send <- greeting
	}

	go client.writePump()
	go client.readPump(h)
}

// HandleGetFeedState godoc
// @Summary      Get the change feed connection state
// @Tags         realtime
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /realtime/state [get]
// @Security     BearerAuth
func (h *RealtimeHandler) HandleGetFeedState(c *gin.Context) {
	state := h.state.State()
	c.JSON(http.StatusOK, gin.H{
		"state":    state,
		"degraded": state.Degraded(),
	})
}

func (c *realtimeClient) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains the connection. Clients send nothing meaningful;
// reads only surface disconnects.
func (c *realtimeClient) readPump(h *RealtimeHandler) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("websocket read error", zap.Error(err))
			}
			break
		}
	}
}
