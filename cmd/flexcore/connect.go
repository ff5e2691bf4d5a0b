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
	"github.com/daveisadork/flexcore/discovery"
)

func init() {
	rootCmd.AddCommand(connectCmd)
}

var connectCmd = &cobra.Command{
	Use:   "connect <serial>",
	Short: "Discover radios until <serial> appears, connect, and print its state",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnect,
}

// waitForRadio blocks a discovering Client until serial appears or ctx
// is done.
func waitForRadio(ctx context.Context, client *flexcore.Client, serial string) (discovery.RadioDescriptor, error) {
	if d, ok := client.Radio(serial); ok {
		return d, nil
	}
	found := make(chan discovery.RadioDescriptor, 1)
	client.OnDiscoveryEvent(func(ev discovery.Event) {
		if ev.Kind == discovery.Online && ev.Descriptor.Serial == serial {
			select {
			case found <- ev.Descriptor:
			default:
			}
		}
	})
	select {
	case d := <-found:
		return d, nil
	case <-ctx.Done():
		return discovery.RadioDescriptor{}, ctx.Err()
	}
}

func runConnect(cmd *cobra.Command, args []string) error {
	serial := args[0]
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

	fmt.Printf("connected: handle=%s version=%s state=%s\n", h.HandleHex(), h.Version(), h.State())
	<-ctx.Done()
	return nil
}
