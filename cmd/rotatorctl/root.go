// cmd/rotatorctl/root.go
package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rotator-service/internal/config"
	"rotator-service/internal/model"
	"rotator-service/internal/protocol"
	"rotator-service/internal/utils"
	"rotator-service/pkg/rotator"
)

// options are the persistent connection flags shared by every command
type options struct {
	configPath  string
	connType    string
	port        string
	address     string
	url         string
	timeout     time.Duration
	readTimeout time.Duration
	framing     string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "rotatorctl",
		Short: "Command line client for two-axis rotators",
		Long: `rotatorctl sends single commands to a rotator and prints the result.

Connection modes:
  Serial:    --port /dev/ttyUSB0
  TCP:       --type tcp --address host:4001
  WebSocket: --type websocket --url ws://host/path

Settings not given on the command line come from the service configuration
file (--config) and ROTATOR_SERVICE_* environment variables.

Negative values must follow "--", e.g. rotatorctl set-horizontal -- -45`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file")
	flags.StringVarP(&opts.connType, "type", "t", "", "Connection type: serial, tcp or websocket")
	flags.StringVarP(&opts.port, "port", "p", "", "Serial port device")
	flags.StringVarP(&opts.address, "address", "a", "", "TCP bridge address (host:port)")
	flags.StringVarP(&opts.url, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Overall command timeout")
	flags.DurationVar(&opts.readTimeout, "read-timeout", 0, "Idle period that ends a response")
	flags.StringVar(&opts.framing, "framing", "", "Response framing: idle or terminated")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every transaction to stderr")

	addCommands(rootCmd, opts)

	return rootCmd
}

// rotatorConfig merges the command line over the configuration file
func (o *options) rotatorConfig() (*config.RotatorConfig, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	rc := cfg.Rotator

	switch {
	case o.connType != "":
		rc.ConnectionType = o.connType
	case o.address != "":
		rc.ConnectionType = string(model.ConnectionTypeTCP)
	case o.url != "":
		rc.ConnectionType = string(model.ConnectionTypeWebSocket)
	case o.port != "":
		rc.ConnectionType = string(model.ConnectionTypeSerial)
	}

	if o.port != "" {
		rc.Serial.Port = o.port
	}
	if o.address != "" {
		host, portStr, err := net.SplitHostPort(o.address)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", o.address, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port in address %q", o.address)
		}
		rc.TCP.Host = host
		rc.TCP.Port = port
	}
	if o.url != "" {
		rc.WebSocket.URL = o.url
	}
	if o.readTimeout > 0 {
		rc.ReadTimeout = o.readTimeout
	}
	if o.framing != "" {
		rc.Framing = o.framing
	}

	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (o *options) logger() (*zap.Logger, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return utils.NewLogger(&config.LoggingConfig{
		Level:  level,
		Format: "console",
		Output: "stderr",
	})
}

// withClient opens the configured connection, runs fn against a client and
// closes the connection again
func (o *options) withClient(cmd *cobra.Command, fn func(ctx context.Context, client *rotator.Client) error) error {
	rc, err := o.rotatorConfig()
	if err != nil {
		return err
	}

	logger, err := o.logger()
	if err != nil {
		return err
	}
	defer utils.CloseLogger(logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	conn, err := protocol.CreateConnection(rc, logger)
	if err != nil {
		return err
	}

	client, err := openClient(ctx, conn, rc, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(ctx, client)
}

// openClient opens conn and hands it to a new client. conn is closed again
// if the client cannot be configured.
func openClient(ctx context.Context, conn protocol.Connection, rc *config.RotatorConfig, logger *zap.Logger) (*rotator.Client, error) {
	rotatorLogger := utils.NewRotatorLogger(logger, rc.ConnectionType, conn.GetAddress())

	if err := conn.Open(ctx); err != nil {
		rotatorLogger.LogConnection("open", err)
		return nil, fmt.Errorf("failed to connect to %s: %w", conn.GetAddress(), err)
	}

	client, err := rotator.New(conn,
		rotator.WithLogger(logger),
		rotator.WithReadTimeout(rc.ReadTimeout),
		rotator.WithFraming(rc.FramingPolicy()),
	)
	if err != nil {
		rotatorLogger.LogConnection("configure", err)
		if closeErr := conn.Close(); closeErr != nil {
			rotatorLogger.LogConnection("close", closeErr)
		}
		return nil, fmt.Errorf("failed to configure rotator client: %w", err)
	}

	return client, nil
}
