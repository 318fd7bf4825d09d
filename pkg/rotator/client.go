// pkg/rotator/client.go
package rotator

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// BaudRate is the line speed the rotator firmware expects.
	BaudRate = 115200

	// DefaultReadTimeout is the idle period that ends a response.
	DefaultReadTimeout = 500 * time.Millisecond

	argSet = "SET"

	// maxExponent bounds the decimal exponent of a numeric value token.
	maxExponent = 400
)

// Position is the pointing direction of both axes, in degrees.
type Position struct {
	Vertical   float64 `json:"vertical"`
	Horizontal float64 `json:"horizontal"`
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for transaction tracing
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReadTimeout overrides DefaultReadTimeout
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.readTimeout = timeout
	}
}

// WithFraming selects how the end of a response is detected
func WithFraming(framing Framing) Option {
	return func(c *Client) {
		c.framing = framing
	}
}

// Client drives a two-axis rotator over a Transport. Every method is one
// blocking transaction; a Client must not be used from several goroutines
// at once.
type Client struct {
	transport   Transport
	logger      *zap.Logger
	readTimeout time.Duration
	framing     Framing
}

// New takes ownership of transport and configures its baud rate and read
// timeout.
func New(transport Transport, opts ...Option) (*Client, error) {
	c := &Client{
		transport:   transport,
		logger:      zap.NewNop(),
		readTimeout: DefaultReadTimeout,
		framing:     FramingIdle,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.readTimeout <= 0 {
		return nil, fmt.Errorf("read timeout must be positive, got %s", c.readTimeout)
	}

	if err := transport.SetBaudRate(BaudRate); err != nil {
		return nil, fmt.Errorf("failed to set baud rate: %w", err)
	}
	if err := transport.SetReadTimeout(c.readTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	c.logger.Debug("Rotator client ready",
		zap.Int("baud_rate", BaudRate),
		zap.Duration("read_timeout", c.readTimeout),
		zap.Stringer("framing", c.framing),
	)

	return c, nil
}

// Close releases the transport if it can be closed.
func (c *Client) Close() error {
	if closer, ok := c.transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SetPositionVertical moves the vertical axis to an absolute position.
func (c *Client) SetPositionVertical(ctx context.Context, degrees float64) error {
	arg, err := formatDegrees(degrees)
	if err != nil {
		return err
	}
	_, err = c.SendRaw(ctx, DegreesVertical, arg)
	return err
}

// SetPositionHorizontal moves the horizontal axis to an absolute position.
// The device counts the horizontal axis the other way round, so the value
// is negated on the wire.
func (c *Client) SetPositionHorizontal(ctx context.Context, degrees float64) error {
	arg, err := formatDegrees(-degrees)
	if err != nil {
		return err
	}
	_, err = c.SendRaw(ctx, DegreesHorizontal, arg)
	return err
}

// CalibrateVertical runs the vertical homing procedure. With set, the
// current position is stored as the reference instead.
func (c *Client) CalibrateVertical(ctx context.Context, set bool) error {
	var err error
	if set {
		_, err = c.SendRaw(ctx, CalibrateVertical, argSet)
	} else {
		_, err = c.SendRaw(ctx, CalibrateVertical)
	}
	return err
}

// CalibrateHorizontal runs the horizontal homing procedure.
func (c *Client) CalibrateHorizontal(ctx context.Context) error {
	_, err := c.SendRaw(ctx, CalibrateHorizontal)
	return err
}

// Move starts moving indefinitely in a direction, or stops an axis.
func (c *Client) Move(ctx context.Context, direction Direction) error {
	if !direction.Valid() {
		return fmt.Errorf("invalid direction %s", direction)
	}
	_, err := c.SendRaw(ctx, Movement, direction.String())
	return err
}

// MoveVerticalSteps moves the vertical axis by a number of motor steps.
func (c *Client) MoveVerticalSteps(ctx context.Context, steps int32) error {
	_, err := c.SendRaw(ctx, MoveVerticalSteps, strconv.FormatInt(int64(steps), 10))
	return err
}

// MoveHorizontalSteps moves the horizontal axis by a number of motor steps.
func (c *Client) MoveHorizontalSteps(ctx context.Context, steps int32) error {
	_, err := c.SendRaw(ctx, MoveHorizontalSteps, strconv.FormatInt(int64(steps), 10))
	return err
}

// Position returns the current position of both axes, horizontal in the
// same sign convention as SetPositionHorizontal.
func (c *Client) Position(ctx context.Context) (Position, error) {
	status, err := c.SendRaw(ctx, GetPosition)
	if err != nil {
		return Position{}, err
	}

	switch len(status.Values) {
	case 0:
		return Position{}, ErrExpectedValue
	case 2:
	default:
		return Position{}, invalidResponse("expected 2 position values, got %d", len(status.Values))
	}

	vertical, err := parseDegrees(status.Values[0])
	if err != nil {
		return Position{}, err
	}
	horizontal, err := parseDegrees(status.Values[1])
	if err != nil {
		return Position{}, err
	}

	return Position{Vertical: vertical, Horizontal: -horizontal}, nil
}

// Calibrated reports whether both axes are calibrated. Absolute positioning
// is refused by the device until this is true.
func (c *Client) Calibrated(ctx context.Context) (bool, error) {
	status, err := c.SendRaw(ctx, GetCalibrated)
	if err != nil {
		return false, err
	}

	switch len(status.Values) {
	case 0:
		return false, ErrExpectedValue
	case 1:
	default:
		return false, invalidResponse("expected 1 calibration value, got %d", len(status.Values))
	}

	return parseBool(status.Values[0])
}

// Version returns the firmware version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	status, err := c.SendRaw(ctx, GetVersion)
	if err != nil {
		return "", err
	}
	if len(status.Values) == 0 {
		return "", ErrExpectedValue
	}
	return status.Values[0], nil
}

// Halt locks both motors. It is an ordinary transaction, not an
// out-of-band interrupt.
func (c *Client) Halt(ctx context.Context) error {
	_, err := c.SendRaw(ctx, Halt)
	return err
}

// SendRaw performs one transaction for any command and returns the
// validated status.
func (c *Client) SendRaw(ctx context.Context, cmd Command, args ...string) (Status, error) {
	select {
	case <-ctx.Done():
		return Status{}, ctx.Err()
	default:
	}

	if !cmd.Valid() {
		return Status{}, fmt.Errorf("invalid command %s", cmd)
	}

	startTime := time.Now()
	request := BuildRequest(cmd, args...)

	n, err := c.transport.Write([]byte(request))
	if err != nil {
		return Status{}, fmt.Errorf("failed to write %s request: %w", cmd, err)
	}
	if n != len(request) {
		return Status{}, fmt.Errorf("incomplete write: wrote %d of %d bytes: %w", n, len(request), io.ErrShortWrite)
	}

	response, err := readResponse(c.transport, c.framing)
	if err != nil {
		c.logTransaction(cmd, request, response, startTime, err)
		return Status{}, err
	}

	status, err := validate(response, request)
	c.logTransaction(cmd, request, response, startTime, err)
	return status, err
}

func (c *Client) logTransaction(cmd Command, request, response string, startTime time.Time, err error) {
	if ce := c.logger.Check(zap.DebugLevel, "Rotator transaction"); ce != nil {
		ce.Write(
			zap.Stringer("command", cmd),
			zap.String("request", request),
			zap.String("response", response),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
	}
}

func formatDegrees(degrees float64) (string, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return "", fmt.Errorf("invalid position %v degrees", degrees)
	}
	s := strconv.FormatFloat(degrees, 'f', 3, 64)
	if s == "-0.000" {
		s = "0.000"
	}
	return s, nil
}

func parseDegrees(token string) (float64, error) {
	d, err := decimal.NewFromString(token)
	if err != nil {
		return 0, &ParseError{Value: token, Type: "number", Err: err}
	}
	// Conversion cost grows with the exponent, which the device controls
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return 0, &ParseError{Value: token, Type: "number", Err: fmt.Errorf("exponent %d out of range", exp)}
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, &ParseError{Value: token, Type: "number", Err: strconv.ErrRange}
	}
	return f, nil
}

func parseBool(token string) (bool, error) {
	switch token {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &ParseError{Value: token, Type: "boolean"}
	}
}
