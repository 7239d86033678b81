package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "chook",
	Short:         "Webhook event handler framework",
	Long:          "Receives webhook notifications from a device-management server and dispatches them to pluggable handlers.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (defaults and CHOOK_ env vars apply without one)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chook:", err)
		os.Exit(1)
	}
}
