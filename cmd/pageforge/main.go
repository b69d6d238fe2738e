// Command pageforge serves a page tree and inspects its route index.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "pageforge",
		Short:         "Serve server-rendered pages from a directory tree",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./pageforge.yaml)")

	rootCmd.AddCommand(
		serveCmd(&configFile),
		routesCmd(&configFile),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}
