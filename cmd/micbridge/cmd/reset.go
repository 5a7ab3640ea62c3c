package cmd

import (
	"fmt"

	"github.com/go-drift/micbridge/pkg/microphone/simsession"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the simulated microphone permission",
	Long: `Reset the simulated backend's microphone permission so the next request
prompts again, or force it to a given state. This does not touch the
native operating system permission; on macOS use "tccutil reset Microphone".

States: not_determined, granted, denied, restricted

Examples:
  micbridge reset
  micbridge reset --state denied`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().String("state", string(simsession.StateNotDetermined), "State to set")
}

func runReset(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("state")
	state, err := simsession.ParseState(raw)
	if err != nil {
		return err
	}

	store := simsession.NewFileStore(simsession.WithPath(cfg.Session.StateFile))
	session := simsession.New(store, simsession.StaticPrompter{}, simsession.WithLogger(logger))
	if err := session.Set(state); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "microphone: %s (%s)\n", state, store.Path())
	return nil
}
