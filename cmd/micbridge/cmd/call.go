package cmd

import (
	stderrors "errors"
	"fmt"

	"github.com/go-drift/micbridge/pkg/microphone"
	"github.com/go-drift/micbridge/pkg/platform"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <method>",
	Short: "Invoke an arbitrary method on a host channel",
	Long: `Invoke a method on a channel hosted by "micbridge serve" and print the
JSON result. Methods the channel does not recognize print "not implemented".

Examples:
  micbridge call requestPermission
  micbridge call openSettings
  micbridge call requestPermission --args '{"reason":"ignored"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	addClientFlags(callCmd)
	callCmd.Flags().String("channel", microphone.ChannelName, "Channel name")
	callCmd.Flags().String("args", "", "Method arguments as JSON")
}

func runCall(cmd *cobra.Command, args []string) error {
	channel, _ := cmd.Flags().GetString("channel")
	rawArgs, _ := cmd.Flags().GetString("args")

	var callArgs any
	if rawArgs != "" {
		decoded, err := platform.DefaultCodec.Decode([]byte(rawArgs))
		if err != nil {
			return fmt.Errorf("--args: %w", err)
		}
		callArgs = decoded
	}

	client, ctx, cancel, err := dial(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	result, err := client.Invoke(ctx, channel, args[0], callArgs)
	if stderrors.Is(err, platform.ErrMethodNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "not implemented")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s/%s: %w", channel, args[0], err)
	}

	out, err := platform.DefaultCodec.Encode(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
