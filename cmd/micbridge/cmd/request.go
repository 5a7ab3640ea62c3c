package cmd

import (
	"fmt"

	"github.com/go-drift/micbridge/pkg/microphone"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Ask the host for microphone permission",
	Long: `Invoke requestPermission on the microphone_permission channel and print
"granted" or "denied". The command waits for the user to answer the
system dialog when the permission has not been decided yet.

Examples:
  micbridge request
  micbridge request --url ws://127.0.0.1:9000/ws --timeout 30s`,
	Args: cobra.NoArgs,
	RunE: runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)
	addClientFlags(requestCmd)
}

func runRequest(cmd *cobra.Command, args []string) error {
	client, ctx, cancel, err := dial(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	result, err := client.Invoke(ctx, microphone.ChannelName, microphone.MethodRequestPermission, nil)
	if err != nil {
		return fmt.Errorf("requestPermission: %w", err)
	}
	granted, ok := result.(bool)
	if !ok {
		return fmt.Errorf("requestPermission: unexpected result %v (%T)", result, result)
	}

	if granted {
		fmt.Fprintln(cmd.OutOrStdout(), "granted")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "denied")
	}
	return nil
}
