// cmd/rotatorctl/commands.go
package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rotator-service/pkg/rotator"
)

func addCommands(rootCmd *cobra.Command, opts *options) {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the firmware version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
					version, err := client.Version(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "position",
			Short: "Print the position of both axes in degrees",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
					position, err := client.Position(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "vertical:   %.3f\nhorizontal: %.3f\n", position.Vertical, position.Horizontal)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "calibrated",
			Short: "Print whether both axes are calibrated",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
					calibrated, err := client.Calibrated(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), calibrated)
					return nil
				})
			},
		},
		degreesCommand(opts, "set-vertical", "Move the vertical axis to an absolute position",
			func(ctx context.Context, client *rotator.Client, degrees float64) error {
				return client.SetPositionVertical(ctx, degrees)
			}),
		degreesCommand(opts, "set-horizontal", "Move the horizontal axis to an absolute position",
			func(ctx context.Context, client *rotator.Client, degrees float64) error {
				return client.SetPositionHorizontal(ctx, degrees)
			}),
		calibrateVerticalCommand(opts),
		&cobra.Command{
			Use:   "calibrate-horizontal",
			Short: "Home the horizontal axis",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
					return done(cmd, client.CalibrateHorizontal(ctx))
				})
			},
		},
		&cobra.Command{
			Use:   "move DIRECTION",
			Short: "Start or stop continuous movement",
			Long:  "DIRECTION is one of up, down, stop-vertical, left, right or stop-horizontal.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				direction, err := rotator.ParseDirection(args[0])
				if err != nil {
					return err
				}
				return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
					return done(cmd, client.Move(ctx, direction))
				})
			},
		},
		stepsCommand(opts, "steps-vertical", "Move the vertical axis by a signed number of steps",
			func(ctx context.Context, client *rotator.Client, steps int32) error {
				return client.MoveVerticalSteps(ctx, steps)
			}),
		stepsCommand(opts, "steps-horizontal", "Move the horizontal axis by a signed number of steps",
			func(ctx context.Context, client *rotator.Client, steps int32) error {
				return client.MoveHorizontalSteps(ctx, steps)
			}),
		&cobra.Command{
			Use:   "halt",
			Short: "Stop all movement",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
					return done(cmd, client.Halt(ctx))
				})
			},
		},
	)
}

func calibrateVerticalCommand(opts *options) *cobra.Command {
	var set bool

	cmd := &cobra.Command{
		Use:   "calibrate-vertical",
		Short: "Home the vertical axis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
				return done(cmd, client.CalibrateVertical(ctx, set))
			})
		},
	}
	cmd.Flags().BoolVar(&set, "set", false, "Store the current position as the reference instead of homing")

	return cmd
}

func degreesCommand(opts *options, use, short string, run func(context.Context, *rotator.Client, float64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " DEGREES",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			degrees, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid degrees %q", args[0])
			}
			return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
				return done(cmd, run(ctx, client, degrees))
			})
		},
	}
}

func stepsCommand(opts *options, use, short string, run func(context.Context, *rotator.Client, int32) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " STEPS",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid steps %q", args[0])
			}
			return opts.withClient(cmd, func(ctx context.Context, client *rotator.Client) error {
				return done(cmd, run(ctx, client, int32(steps)))
			})
		},
	}
}

// done prints OK for commands that return no value
func done(cmd *cobra.Command, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "OK")
	return nil
}
