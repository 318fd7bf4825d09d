// internal/handler/websocket_handler_test.go
package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rotator-service/internal/config"
	"rotator-service/internal/model"
	"rotator-service/internal/service"
	"rotator-service/pkg/rotator"
	"rotator-service/pkg/rotator/rotatortest"
)

func newEventServer(t *testing.T, responder rotatortest.Responder) (*websocket.Conn, *service.RotatorService) {
	t.Helper()

	// Socket goroutines may still log after the test returns
	logger := zap.NewNop()
	bus := service.NewEventBus(logger)
	go bus.Start()

	svc := service.NewRotatorService(&deviceConnection{Device: rotatortest.NewDevice(responder)},
		&config.RotatorConfig{ConnectionType: "tcp", ReadTimeout: rotator.DefaultReadTimeout}, bus, logger)
	// Let the connection event pass before the handler subscribes
	opened := bus.Subscribe(model.EventConnectionOpened)
	require.NoError(t, svc.Connect(context.Background()))
	select {
	case <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("connection event not published")
	}

	router := gin.New()
	NewWebSocketHandler(svc, bus, nil, logger).RegisterRoutes(router.Group("/ws"))
	server := httptest.NewServer(router)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws/events", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		server.Close()
		svc.Close()
		bus.Stop()
	})
	return conn, svc
}

func readMessage(t *testing.T, conn *websocket.Conn) WebSocketMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var message WebSocketMessage
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestWebSocketHandler_StreamsEvents(t *testing.T) {
	conn, svc := newEventServer(t, rotatortest.Echo("OK"))

	status := readMessage(t, conn)
	assert.Equal(t, "connection_status", status.Type)
	assert.Equal(t, true, status.Data.(map[string]interface{})["connected"])

	require.NoError(t, svc.Halt(context.Background()))

	event := readMessage(t, conn)
	assert.Equal(t, "rotator_event", event.Type)
	data := event.Data.(map[string]interface{})
	assert.Equal(t, "TRANSACTION_COMPLETED", data["event_type"])
	assert.Equal(t, "halt", data["data"].(map[string]interface{})["transaction"].(map[string]interface{})["operation"])
}

func TestWebSocketHandler_Subscriptions(t *testing.T) {
	conn, svc := newEventServer(t, rotatortest.Echo("ERR jammed"))
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(WebSocketMessage{
		Type:      "subscribe",
		Data:      map[string]interface{}{"topic": "TRANSACTION_FAILED"},
		RequestID: "sub-1",
	}))
	confirmed := readMessage(t, conn)
	assert.Equal(t, "subscription_confirmed", confirmed.Type)
	assert.Equal(t, "sub-1", confirmed.RequestID)

	assert.Error(t, svc.Halt(context.Background()))

	event := readMessage(t, conn)
	assert.Equal(t, "TRANSACTION_FAILED", event.Data.(map[string]interface{})["event_type"])
}

func TestWebSocketHandler_Commands(t *testing.T) {
	conn, _ := newEventServer(t, rotatortest.Echo("OK fw-2.1"))
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(WebSocketMessage{
		Type:      "subscribe",
		Data:      map[string]interface{}{"topic": "CONNECTION_CLOSED"},
		RequestID: "quiet",
	}))
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(WebSocketMessage{
		Type:      "command",
		Data:      map[string]interface{}{"command": "version"},
		RequestID: "cmd-1",
	}))
	response := readMessage(t, conn)
	assert.Equal(t, "command_response", response.Type)
	assert.Equal(t, "cmd-1", response.RequestID)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "fw-2.1", data["result"].(map[string]interface{})["version"])

	require.NoError(t, conn.WriteJSON(WebSocketMessage{
		Type:      "command",
		Data:      map[string]interface{}{"command": "move", "direction": "sideways"},
		RequestID: "cmd-2",
	}))
	response = readMessage(t, conn)
	assert.Equal(t, false, response.Data.(map[string]interface{})["success"])
	assert.Equal(t, "INVALID_DIRECTION", response.Data.(map[string]interface{})["error_code"])

	require.NoError(t, conn.WriteJSON(WebSocketMessage{Type: "ping", RequestID: "p"}))
	assert.Equal(t, "pong", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(WebSocketMessage{Type: "dance"}))
	assert.Equal(t, "error", readMessage(t, conn).Type)
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	req.Header.Set("Origin", "http://console.local")

	assert.True(t, checkOrigin(nil)(req))
	assert.True(t, checkOrigin([]string{"http://console.local"})(req))
	assert.False(t, checkOrigin([]string{"http://other.local"})(req))
}
