package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"driipnet/logx"
)

var rootCmd = &cobra.Command{
	Use:   "driipnet",
	Short: "Driip settlement challenge node CLI",
	Long:  "Command line interface for running and managing a driip settlement challenge node.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
