// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/utils"
)

// WebSocketHandler streams print outcomes to order-flow frontends. Cashier
// screens subscribe to their cafe and learn immediately whether the KOT and
// receipt physically printed.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	eventBus    *EventBus
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(logger *zap.Logger) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// In production, implement proper origin checking
			return true
		},
	}

	handler := &WebSocketHandler{
		upgrader:    upgrader,
		connections: NewConnectionManager(),
		eventBus:    NewEventBus(logger),
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}

	// Start event bus
	go handler.eventBus.Start()

	return handler
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Firehose of every print event
	router.GET("/events", h.HandleEventConnection)

	// Cafe-scoped events
	router.GET("/cafes/:cafe_id", h.HandleCafeConnection)
}

// HandleEventConnection handles firehose WebSocket connections
func (h *WebSocketHandler) HandleEventConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		Type:        "events",
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("Event WebSocket client connected",
		zap.String("client_id", client.ID),
	)

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// HandleCafeConnection handles cafe-scoped WebSocket connections
func (h *WebSocketHandler) HandleCafeConnection(c *gin.Context) {
	cafeID := c.Param("cafe_id")
	if _, err := uuid.Parse(cafeID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cafe_id must be a valid UUID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		Type:        "cafe",
		CafeID:      &cafeID,
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("Cafe WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("cafe_id", cafeID),
	)

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// handleClientRead handles reading messages from WebSocket client
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
	}()

	client.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			break
		}

		var message WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.logger.Error("Failed to parse WebSocket message",
				zap.Error(err),
				zap.String("client_id", client.ID),
			)
			continue
		}

		h.handleClientMessage(client, &message)
	}
}

// handleClientWrite handles writing messages to WebSocket client
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Error("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleClientMessage handles incoming client messages. The stream is
// one-way apart from keepalives.
func (h *WebSocketHandler) handleClientMessage(client *Client, message *WebSocketMessage) {
	switch message.Type {
	case "ping":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
		})
	default:
		h.logger.Warn("Unknown message type",
			zap.String("type", message.Type),
			zap.String("client_id", client.ID),
		)
	}
}

// sendMessage sends a message to a client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	select {
	case client.Send <- messageBytes:
	default:
		h.logger.Warn("Client send channel full, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

// BroadcastPrintResult broadcasts a single-document print outcome
func (h *WebSocketHandler) BroadcastPrintResult(cafeID uuid.UUID, doc model.DocType, result model.PrintResult) {
	eventType := EventPrintCompleted
	if !result.Success {
		eventType = EventPrintFailed
	}

	h.broadcastEvent(cafeID.String(), &WebSocketMessage{
		Type: eventType,
		Data: map[string]interface{}{
			"cafe_id":  cafeID.String(),
			"doc_type": string(doc),
			"result":   result,
		},
		Timestamp: time.Now(),
	})

	h.eventBus.Publish(Event{
		Type:   eventType,
		Source: "dispatch",
		CafeID: cafeID.String(),
		Data: map[string]interface{}{
			"doc_type":  string(doc),
			"transport": result.Transport,
			"success":   result.Success,
		},
	})
}

// BroadcastProfileInvalidated announces a printer settings change
func (h *WebSocketHandler) BroadcastProfileInvalidated(cafeID uuid.UUID) {
	h.broadcastEvent(cafeID.String(), &WebSocketMessage{
		Type: EventProfileInvalidated,
		Data: map[string]interface{}{
			"cafe_id": cafeID.String(),
		},
		Timestamp: time.Now(),
	})

	h.eventBus.Publish(Event{
		Type:   EventProfileInvalidated,
		Source: "profile",
		CafeID: cafeID.String(),
		Data:   map[string]interface{}{},
	})
}

// broadcastEvent delivers a message to the cafe's clients and the firehose
func (h *WebSocketHandler) broadcastEvent(cafeID string, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	clients := append(h.connections.GetCafeClients(cafeID), h.connections.GetEventClients()...)
	for _, client := range clients {
		select {
		case client.Send <- messageBytes:
		default:
			h.logger.Warn("Client send channel full during broadcast",
				zap.String("client_id", client.ID),
			)
		}
	}
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}
