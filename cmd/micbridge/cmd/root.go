package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/go-drift/micbridge/cmd/micbridge/internal/config"
	"github.com/go-drift/micbridge/cmd/micbridge/internal/logging"
	"github.com/go-drift/micbridge/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=v1.2.3".
var Version = ""

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "micbridge",
	Short: "Bridge microphone permission requests over a method channel",
	Long: `micbridge exposes the "microphone_permission" method channel. The
requestPermission method asks the operating system for microphone record
permission and replies with true or false. Every other method replies with
the not-implemented signal.

Run "micbridge serve" to host the channel, then "micbridge request" or
"micbridge call <method>" to talk to it.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./micbridge.yaml or $HOME/.micbridge/micbridge.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := rootCmd.PersistentFlags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
			loaded.Logger.Level = level
		}

		l, err := logging.New(loaded.Logger)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = l
		errors.SetHandler(errors.NewLogHandler(logger))
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}
}

func buildVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the micbridge version",
	Args:  cobra.NoArgs,
	// Skips config loading.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "micbridge %s\n", rootCmd.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
