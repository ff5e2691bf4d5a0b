package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/daveisadork/flexcore"
)

var tuneSliceID string

func init() {
	tuneCmd.Flags().StringVar(&tuneSliceID, "slice", "0", "Slice id to tune")
	rootCmd.AddCommand(tuneCmd)
}

var tuneCmd = &cobra.Command{
	Use:   "tune <serial> <mhz>",
	Short: "Connect to a radio and tune one slice to a frequency",
	Args:  cobra.ExactArgs(2),
	RunE:  runTune,
}

func runTune(cmd *cobra.Command, args []string) error {
	serial := args[0]
	var mhz float64
	if _, err := fmt.Sscanf(args[1], "%f", &mhz); err != nil {
		return fmt.Errorf("invalid frequency %q: %w", args[1], err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := flexcore.New(cfg.ClientOptions(nil, apiLog))
	go func() { _ = client.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 15*time.Second)
	defer waitCancel()
	d, err := waitForRadio(waitCtx, client, serial)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", serial, err)
	}

	h, err := client.Connect(ctx, d.Serial)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer h.Disconnect()

	tuneCtx, tuneCancel := context.WithTimeout(ctx, 5*time.Second)
	defer tuneCancel()
	if err := h.Slice(tuneSliceID).Tune(tuneCtx, mhz); err != nil {
		return fmt.Errorf("tune: %w", err)
	}

	sl, ok := h.Store.Slice(tuneSliceID)
	if !ok {
		fmt.Printf("tuned slice %s to %.6f MHz\n", tuneSliceID, mhz)
		return nil
	}
	fmt.Printf("slice %s now at %.6f MHz\n", tuneSliceID, sl.FrequencyMHz)
	return nil
}
