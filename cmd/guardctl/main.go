package main

import (
	"fmt"
	"os"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/cmd/guardctl/commands"
)

func main() {
	// Execute the root command
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
