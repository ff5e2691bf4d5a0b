package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daveisadork/flexcore"
	"github.com/daveisadork/flexcore/discovery"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Listen for radios and print their descriptors as they're seen",
	RunE:  runDiscover,
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := flexcore.New(cfg.ClientOptions(nil, apiLog))
	client.OnDiscoveryEvent(func(ev discovery.Event) {
		switch ev.Kind {
		case discovery.Online:
			fmt.Printf("online  %s %s %s:%d\n", ev.Descriptor.Serial, ev.Descriptor.Model, ev.Descriptor.Endpoint.Host, ev.Descriptor.Endpoint.Port)
		case discovery.Offline:
			fmt.Printf("offline %s\n", ev.Descriptor.Serial)
		case discovery.Change:
			fmt.Printf("change  %s %v\n", ev.Descriptor.Serial, ev.Diff)
		}
	})

	return client.Run(ctx)
}
