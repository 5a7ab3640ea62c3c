// Command micbridge hosts the microphone permission channel and talks to it.
package main

import "github.com/go-drift/micbridge/cmd/micbridge/cmd"

func main() {
	cmd.Execute()
}
