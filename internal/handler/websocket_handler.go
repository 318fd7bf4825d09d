// internal/handler/websocket_handler.go
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rotator-service/internal/model"
	"rotator-service/internal/service"
	"rotator-service/internal/utils"
	"rotator-service/pkg/rotator"
)

const commandTimeout = 30 * time.Second

// WebSocketHandler streams rotator events to WebSocket clients and accepts
// a small set of commands over the same socket
type WebSocketHandler struct {
	upgrader       websocket.Upgrader
	connections    *ConnectionManager
	rotatorService *service.RotatorService
	eventBus       *service.EventBus
	logger         *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler and starts forwarding
// events from the bus
func NewWebSocketHandler(
	rotatorService *service.RotatorService,
	eventBus *service.EventBus,
	allowedOrigins []string,
	logger *zap.Logger,
) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(allowedOrigins),
	}

	handler := &WebSocketHandler{
		upgrader:       upgrader,
		connections:    NewConnectionManager(),
		rotatorService: rotatorService,
		eventBus:       eventBus,
		logger:         utils.NewServiceLogger(logger, "websocket-handler"),
	}

	go handler.forwardEvents(eventBus.Subscribe(service.AllEvents))

	return handler
}

// checkOrigin allows any origin when none are configured
func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) == 0 || origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/events", h.HandleEventConnection)
}

// HandleEventConnection handles event stream WebSocket connections
// @Summary Rotator event stream
// @Description Upgrade to a WebSocket that streams rotator transaction and connection events
// @Tags WebSocket
// @Success 101 "Switching protocols"
// @Router /ws/events [get]
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
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("Event WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	h.sendMessage(client, &WebSocketMessage{
		Type:      "connection_status",
		Data:      h.rotatorService.Status(),
		Timestamp: time.Now(),
	})

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// forwardEvents broadcasts bus events until the subscription is closed
func (h *WebSocketHandler) forwardEvents(events <-chan model.RotatorEvent) {
	for event := range events {
		message, err := json.Marshal(&WebSocketMessage{
			Type:      "rotator_event",
			Data:      event,
			Timestamp: time.Now(),
		})
		if err != nil {
			h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
			continue
		}

		for _, clientID := range h.connections.Broadcast(string(event.EventType), message) {
			h.logger.Warn("Client send channel full during broadcast",
				zap.String("client_id", clientID),
			)
		}
	}
}

// handleClientRead handles reading messages from WebSocket client
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
	}()

	// Set read deadline and pong handler
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

// handleClientMessage handles incoming client messages
func (h *WebSocketHandler) handleClientMessage(client *Client, message *WebSocketMessage) {
	switch message.Type {
	case "subscribe":
		if topic, ok := topicOf(message); ok {
			client.Subscribe(topic)
			h.sendMessage(client, &WebSocketMessage{
				Type:      "subscription_confirmed",
				Data:      map[string]interface{}{"topic": topic},
				Timestamp: time.Now(),
				RequestID: message.RequestID,
			})
		}
	case "unsubscribe":
		if topic, ok := topicOf(message); ok {
			client.Unsubscribe(topic)
		}
	case "command":
		h.handleRotatorCommand(client, message)
	case "ping":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	default:
		h.logger.Warn("Unknown message type",
			zap.String("type", message.Type),
			zap.String("client_id", client.ID),
		)
		h.sendError(client, message.RequestID, fmt.Sprintf("unknown message type: %s", message.Type))
	}
}

func topicOf(message *WebSocketMessage) (string, bool) {
	data, ok := message.Data.(map[string]interface{})
	if !ok {
		return "", false
	}
	topic, ok := data["topic"].(string)
	return topic, ok && topic != ""
}

// handleRotatorCommand runs a read-only query, a move or a halt requested
// over the socket
func (h *WebSocketHandler) handleRotatorCommand(client *Client, message *WebSocketMessage) {
	data, ok := message.Data.(map[string]interface{})
	if !ok {
		h.sendError(client, message.RequestID, "invalid command data")
		return
	}

	command, ok := data["command"].(string)
	if !ok {
		h.sendError(client, message.RequestID, "command is required")
		return
	}

	go h.executeRotatorCommand(client, message.RequestID, command, data)
}

// executeRotatorCommand executes a rotator command and replies to the client
func (h *WebSocketHandler) executeRotatorCommand(client *Client, requestID, command string, data map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	var result interface{}

	switch command {
	case "position":
		result, err = h.rotatorService.GetPosition(ctx)
	case "calibrated":
		var calibrated bool
		calibrated, err = h.rotatorService.IsCalibrated(ctx)
		result = model.CalibratedResponse{Calibrated: calibrated}
	case "version":
		var version string
		version, err = h.rotatorService.GetVersion(ctx)
		result = model.VersionResponse{Version: version}
	case "halt":
		err = h.rotatorService.Halt(ctx)
	case "move":
		name, _ := data["direction"].(string)
		direction, parseErr := rotator.ParseDirection(name)
		if parseErr != nil {
			h.sendCommandResponse(client, requestID, command, nil, parseErr, &utils.APIError{Code: utils.CodeInvalidDirection})
			return
		}
		err = h.rotatorService.Move(ctx, direction)
	default:
		h.sendError(client, requestID, fmt.Sprintf("unknown command: %s", command))
		return
	}

	var apiError *utils.APIError
	if err != nil {
		_, apiError = classifyError(err)
	}
	h.sendCommandResponse(client, requestID, command, result, err, apiError)
}

// sendCommandResponse replies to a command; apiError classifies a failure
func (h *WebSocketHandler) sendCommandResponse(client *Client, requestID, command string, result interface{}, err error, apiError *utils.APIError) {
	response := map[string]interface{}{
		"command": command,
		"success": err == nil,
	}
	if result != nil && err == nil {
		response["result"] = result
	}
	if err != nil {
		response["error"] = err.Error()
		response["error_code"] = apiError.Code
		if apiError.DeviceMessage != "" {
			response["device_message"] = apiError.DeviceMessage
		}
	}

	h.sendMessage(client, &WebSocketMessage{
		Type:      "command_response",
		Data:      response,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

// sendMessage sends a message to a client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	if !h.connections.Send(client, messageBytes) {
		h.logger.Warn("Client send channel unavailable, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

// sendError sends an error message to a client
func (h *WebSocketHandler) sendError(client *Client, requestID, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type:      "error",
		Data:      map[string]interface{}{"error": errorMsg},
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}
