// internal/service/rotator_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rotator-service/internal/config"
	"rotator-service/internal/model"
	"rotator-service/internal/protocol"
	"rotator-service/internal/utils"
	"rotator-service/pkg/rotator"
)

// ErrNotConnected is returned when an operation runs before Connect
var ErrNotConnected = errors.New("rotator not connected")

const eventSource = "rotator-service"

// ConnectionStatus describes the rotator connection
type ConnectionStatus struct {
	Connected      bool                   `json:"connected"`
	ConnectionType model.ConnectionType   `json:"connection_type"`
	Address        string                 `json:"address"`
	Framing        string                 `json:"framing"`
	ReadTimeout    string                 `json:"read_timeout"`
	Stats          protocol.ProtocolStats `json:"stats"`
}

// RotatorService owns the single rotator client and runs one transaction at
// a time on behalf of concurrent callers
type RotatorService struct {
	conn          protocol.Connection
	client        *rotator.Client
	config        *config.RotatorConfig
	eventBus      *EventBus
	logger        *utils.ServiceLogger
	rotatorLogger *utils.RotatorLogger
	mutex         sync.Mutex
}

// NewRotatorService creates a new rotator service. eventBus may be nil.
func NewRotatorService(conn protocol.Connection, cfg *config.RotatorConfig, eventBus *EventBus, logger *zap.Logger) *RotatorService {
	return &RotatorService{
		conn:          conn,
		config:        cfg,
		eventBus:      eventBus,
		logger:        utils.NewServiceLogger(logger, "rotator-service"),
		rotatorLogger: utils.NewRotatorLogger(logger, string(conn.GetConnectionType()), conn.GetAddress()),
	}
}

// Connect opens the connection and configures the rotator client
func (rs *RotatorService) Connect(ctx context.Context) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.client != nil {
		return nil
	}

	if err := rs.conn.Open(ctx); err != nil {
		rs.rotatorLogger.LogConnection("open", err)
		return fmt.Errorf("failed to open rotator connection: %w", err)
	}

	client, err := rotator.New(rs.conn,
		rotator.WithLogger(rs.rotatorLogger.Logger),
		rotator.WithReadTimeout(rs.config.ReadTimeout),
		rotator.WithFraming(rs.config.FramingPolicy()),
	)
	if err != nil {
		rs.rotatorLogger.LogConnection("configure", err)
		if closeErr := rs.conn.Close(); closeErr != nil {
			rs.rotatorLogger.LogConnection("close", closeErr)
		}
		return fmt.Errorf("failed to configure rotator client: %w", err)
	}

	rs.client = client
	rs.rotatorLogger.LogConnection("open", nil)
	rs.publish(model.EventConnectionOpened, "INFO", model.JSONObject{
		"connection_type": rs.conn.GetConnectionType(),
		"address":         rs.conn.GetAddress(),
	})
	return nil
}

// Close releases the connection
func (rs *RotatorService) Close() error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.client == nil {
		return nil
	}

	err := rs.client.Close()
	rs.client = nil
	rs.rotatorLogger.LogConnection("close", err)
	rs.publish(model.EventConnectionClosed, "INFO", model.JSONObject{
		"connection_type": rs.conn.GetConnectionType(),
		"address":         rs.conn.GetAddress(),
	})

	if err != nil {
		return fmt.Errorf("failed to close rotator connection: %w", err)
	}
	return nil
}

// Status reports the connection state and transport statistics
func (rs *RotatorService) Status() ConnectionStatus {
	return ConnectionStatus{
		Connected:      rs.conn.IsOpen(),
		ConnectionType: rs.conn.GetConnectionType(),
		Address:        rs.conn.GetAddress(),
		Framing:        rs.config.FramingPolicy().String(),
		ReadTimeout:    rs.config.ReadTimeout.String(),
		Stats:          rs.conn.GetStats(),
	}
}

// SetPositionVertical moves the vertical axis to an absolute position
func (rs *RotatorService) SetPositionVertical(ctx context.Context, degrees float64) error {
	return rs.transact(ctx, "set_position_vertical", func(client *rotator.Client) error {
		return client.SetPositionVertical(ctx, degrees)
	})
}

// SetPositionHorizontal moves the horizontal axis to an absolute position
func (rs *RotatorService) SetPositionHorizontal(ctx context.Context, degrees float64) error {
	return rs.transact(ctx, "set_position_horizontal", func(client *rotator.Client) error {
		return client.SetPositionHorizontal(ctx, degrees)
	})
}

// CalibrateVertical calibrates the vertical axis
func (rs *RotatorService) CalibrateVertical(ctx context.Context, set bool) error {
	return rs.transact(ctx, "calibrate_vertical", func(client *rotator.Client) error {
		return client.CalibrateVertical(ctx, set)
	})
}

// CalibrateHorizontal calibrates the horizontal axis
func (rs *RotatorService) CalibrateHorizontal(ctx context.Context) error {
	return rs.transact(ctx, "calibrate_horizontal", func(client *rotator.Client) error {
		return client.CalibrateHorizontal(ctx)
	})
}

// Move starts or stops continuous movement
func (rs *RotatorService) Move(ctx context.Context, direction rotator.Direction) error {
	return rs.transact(ctx, "move", func(client *rotator.Client) error {
		return client.Move(ctx, direction)
	})
}

// MoveVerticalSteps moves the vertical axis by a number of motor steps
func (rs *RotatorService) MoveVerticalSteps(ctx context.Context, steps int32) error {
	return rs.transact(ctx, "move_vertical_steps", func(client *rotator.Client) error {
		return client.MoveVerticalSteps(ctx, steps)
	})
}

// MoveHorizontalSteps moves the horizontal axis by a number of motor steps
func (rs *RotatorService) MoveHorizontalSteps(ctx context.Context, steps int32) error {
	return rs.transact(ctx, "move_horizontal_steps", func(client *rotator.Client) error {
		return client.MoveHorizontalSteps(ctx, steps)
	})
}

// GetPosition reads the position of both axes
func (rs *RotatorService) GetPosition(ctx context.Context) (rotator.Position, error) {
	var position rotator.Position
	err := rs.transact(ctx, "get_position", func(client *rotator.Client) error {
		var err error
		position, err = client.Position(ctx)
		return err
	})
	return position, err
}

// IsCalibrated reports whether both axes are calibrated
func (rs *RotatorService) IsCalibrated(ctx context.Context) (bool, error) {
	var calibrated bool
	err := rs.transact(ctx, "get_calibrated", func(client *rotator.Client) error {
		var err error
		calibrated, err = client.Calibrated(ctx)
		return err
	})
	return calibrated, err
}

// GetVersion reads the firmware version
func (rs *RotatorService) GetVersion(ctx context.Context) (string, error) {
	var version string
	err := rs.transact(ctx, "get_version", func(client *rotator.Client) error {
		var err error
		version, err = client.Version(ctx)
		return err
	})
	return version, err
}

// Halt locks both motors
func (rs *RotatorService) Halt(ctx context.Context) error {
	return rs.transact(ctx, "halt", func(client *rotator.Client) error {
		return client.Halt(ctx)
	})
}

// transact runs fn under the service lock, then logs and publishes the outcome
func (rs *RotatorService) transact(ctx context.Context, operation string, fn func(client *rotator.Client) error) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if rs.client == nil {
		return ErrNotConnected
	}

	// The wait for the lock may have used up the caller's deadline
	if err := ctx.Err(); err != nil {
		return err
	}

	transactionID := uuid.New()
	startTime := time.Now()
	err := fn(rs.client)
	duration := time.Since(startTime)

	rs.rotatorLogger.LogTransaction(operation, transactionID, duration, err)

	data := model.TransactionEventData{
		TransactionID: transactionID,
		Operation:     operation,
		Duration:      duration.Milliseconds(),
	}
	eventType, severity := model.EventTransactionCompleted, "INFO"
	if err != nil {
		message := err.Error()
		data.ErrorMessage = &message
		eventType, severity = model.EventTransactionFailed, "ERROR"
	}
	rs.publish(eventType, severity, model.JSONObject{"transaction": data})

	if err != nil {
		return fmt.Errorf("%s failed: %w", operation, err)
	}
	return nil
}

func (rs *RotatorService) publish(eventType model.EventType, severity string, data model.JSONObject) {
	if rs.eventBus == nil {
		return
	}
	rs.eventBus.Publish(model.RotatorEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Data:      data,
		Timestamp: time.Now(),
		Source:    eventSource,
		Severity:  severity,
	})
}
