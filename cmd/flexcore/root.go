// Command flexcore is the demo CLI: a github.com/spf13/cobra multi-command
// replacement for the teacher's single flag-based main, grounded on
// USA-RedDragon-DMRHub's cmd/root.go (NewCommand/RunE/PersistentFlags shape)
// and facebook-time/calnex/cmd's init()-registered subcommand style.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/daveisadork/flexcore/internal/apilog"
	"github.com/daveisadork/flexcore/internal/config"
	"github.com/daveisadork/flexcore/internal/logging"
)

var cfg config.Config

// apiLog is opened once per invocation in PersistentPreRunE and shared by
// every subcommand's flexcore.Client; PersistentPostRun closes it.
var apiLog *apilog.Logger

// rootCmd is the entry point; subcommands register themselves onto it
// via init() in their own files.
var rootCmd = &cobra.Command{
	Use:               "flexcore",
	Short:             "FlexRadio SmartSDR client CLI",
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logging.Setup(cfg.LogLevel)

		apiLog, err = apilog.New(cfg.APILogFile)
		if err != nil {
			return fmt.Errorf("open api log: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = apiLog.Close()
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("flexcore: command failed", "error", err)
		os.Exit(1)
	}
}
