// Wifid is a network configuration daemon for embedded devices.
//
// It keeps the device's hostname, sub-protocol switches, station profile,
// access-point profile and radio mode in a persistent settings database, and
// exposes them through a small text-command protocol on the console and on the
// HTTP front end's websocket.
//
// Usage:
//
//	wifid [command] [flags]
//
// See 'wifid --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wifid",
	Short: "Network configuration daemon",
	Long: `A daemon that persists and applies the network configuration of an
embedded device: hostname, HTTP front end, station and access-point
profiles, and the radio mode.

Commands are accepted on the interactive console, over the HTTP front
end's /ws websocket, or one at a time with 'wifid exec'.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags
var (
	configPath string
	logLevel   string
	dataDir    string
)

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/wifid/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); empty uses the config file or "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for the settings database, file store and staged updates")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(defaultsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wifid %s\n", version.Full())
	},
}
