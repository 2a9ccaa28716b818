package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/wifid/internal/config"
	"github.com/muurk/wifid/internal/device"
	"github.com/muurk/wifid/internal/discovery"
	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/remote"
	"github.com/muurk/wifid/internal/settings"
	"github.com/muurk/wifid/internal/ui"
	"github.com/muurk/wifid/internal/version"
)

// Command flags
var (
	noConsole  bool
	ephemeral  bool
	writeFile  bool
	forceWrite bool
	remoteAddr string
	scanWait   time.Duration
)

func init() {
	serveCmd.Flags().BoolVar(&noConsole, "no-console", false, "Do not read commands from stdin")
	execCmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "Run against an in-memory settings store that is discarded on exit")
	execCmd.Flags().StringVar(&remoteAddr, "remote", "", "Send the command to a running device's HTTP front end (host:port or mDNS instance name)")
	statusCmd.Flags().StringVar(&remoteAddr, "remote", "", "Device HTTP front end (host:port or mDNS instance name)")
	_ = statusCmd.MarkFlagRequired("remote")
	discoverCmd.Flags().DurationVar(&scanWait, "timeout", discovery.DefaultScanTimeout, "How long to listen for announcements")
	defaultsCmd.Flags().BoolVar(&writeFile, "write", false, "Write the built-in configuration to the config file")
	defaultsCmd.Flags().BoolVar(&forceWrite, "force", false, "Overwrite an existing config file with --write")
}

// loadConfig reads the config file and applies the global flag overrides, then
// initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, nil
}

// serveCmd runs the daemon
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon",
	Long: `Apply the persisted radio mode, start the network sub-services and
process configuration commands until interrupted.

Commands typed on stdin are executed by the event loop, as are commands
sent to the HTTP front end's /ws websocket.`,
	Example: `  # Run with the default config file
  wifid serve

  # Run with a custom data directory and debug logging
  wifid serve --data-dir ./data --log-level debug

  # Run headless
  wifid serve --no-console`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dev, err := device.New(cfg, device.Options{})
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			logging.Error("Failed to close device", zap.Error(err))
		}
	}()

	styled := !noConsole && ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)
	if styled {
		fmt.Println(ui.NewHeader("wifid", "serve",
			ui.Param{Key: "Version", Value: version.Get().Version},
			ui.Param{Key: "Data", Value: cfg.DataDir},
			ui.Param{Key: "Namespace", Value: cfg.Namespace},
			ui.Param{Key: "Services", Value: strings.Join(cfg.Services, ", ")},
		).Render())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := dev.NewRuntime(cmd.OutOrStdout(), styled)
	if !noConsole {
		rt.Attach(os.Stdin)
	}

	logging.Info("Starting wifid",
		zap.String("version", version.Get().Version),
		zap.String("data_dir", cfg.DataDir),
		zap.String("namespace", cfg.Namespace),
	)
	return rt.Run(ctx)
}

// execCmd runs one command
var execCmd = &cobra.Command{
	Use:   "exec <command line>",
	Short: "Execute one configuration command",
	Long: `Execute one configuration command against the settings database and
print its status lines.

The radio is left off: commands that apply a mode bring it up for the
duration of the command only. The settings database cannot be shared with
a running 'wifid serve'; use --remote to send the command to it instead.`,
	Example: `  # Query the hostname
  wifid exec SET-HOSTNAME

  # Save a station profile
  wifid exec 'SET-STATION S="home" P="password1"'

  # Try a command without touching the database
  wifid exec --ephemeral 'M588 S=3'

  # Switch a running device to station mode
  wifid exec --remote kitchen SET-MODE S=1 P=1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	if remoteAddr != "" {
		return runRemoteExec(cmd, line)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var opts device.Options
	if ephemeral {
		opts.Backend = settings.NewMemoryBackend()
	}

	dev, err := device.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	defer func() {
		dev.Shutdown()
		if err := dev.Close(); err != nil {
			logging.Error("Failed to close device", zap.Error(err))
		}
	}()

	styled := ui.IsTerminal(os.Stdout)
	rt := dev.NewRuntime(cmd.OutOrStdout(), styled)
	fmt.Fprint(cmd.OutOrStdout(), rt.Exec(cmd.Context(), line))
	return nil
}

func runRemoteExec(cmd *cobra.Command, line string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	client, err := remoteClient(cmd.Context(), remoteAddr)
	if err != nil {
		return err
	}
	lines, err := client.Exec(cmd.Context(), line)
	if err != nil {
		return fmt.Errorf("remote command failed: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderReply(lines, ui.IsTerminal(os.Stdout)))
	return nil
}

// remoteClient resolves target as host:port, or as an announced instance name.
func remoteClient(ctx context.Context, target string) (*remote.Client, error) {
	if _, _, err := net.SplitHostPort(target); err == nil {
		return remote.NewClient(target), nil
	}

	d, err := discovery.NewScanner().Find(ctx, target)
	if err != nil {
		return nil, err
	}
	logging.Debug("Resolved device", zap.String("instance", d.Instance), zap.String("addr", d.Addr()))
	return remote.NewClient(d.Addr()), nil
}

// statusCmd shows a running device's status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a running device's status",
	Long: `Fetch the status document from a running device's HTTP front end and
print it as indented JSON.`,
	Example: `  # By address
  wifid status --remote 192.168.1.100:80

  # By mDNS instance name
  wifid status --remote kitchen`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	client, err := remoteClient(cmd.Context(), remoteAddr)
	if err != nil {
		return err
	}
	st, err := client.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

// discoverCmd lists devices announcing themselves on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find wifid devices on the local network",
	Long: `Listen for mDNS announcements from wifid devices and list them.

Only devices in station mode announce themselves.`,
	Example: `  # Listen for 5 seconds (default)
  wifid discover

  # Quick scan
  wifid discover --timeout 2s`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning for wifid devices (timeout: %s)...\n\n", scanWait)

	scanner := discovery.NewScanner()
	scanner.Timeout = scanWait
	devices, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Devices only announce themselves in station mode (SET-MODE S=1 P=1)")
		fmt.Fprintln(out, "  - Check that this machine is on the same network")
		fmt.Fprintln(out, "  - Try increasing --timeout")
		return nil
	}

	fmt.Fprintf(out, "Found %d device(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Fprintf(out, "%d. %s\n", i+1, d.Instance)
		fmt.Fprintf(out, "   Host:    %s\n", d.Hostname)
		fmt.Fprintf(out, "   Address: %s\n", d.Addr())
		fmt.Fprintf(out, "   Mode:    %s\n\n", d.Mode)
	}
	fmt.Fprintln(out, "Use 'wifid exec --remote <instance> <command>' to configure a device")
	return nil
}

// defaultsCmd prints or writes the built-in configuration
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in configuration",
	Long: `Print the built-in configuration, including the factory settings used
for every key that was never written.

With --write the configuration is saved to the config file instead.`,
	Example: `  # Show the built-in configuration
  wifid defaults

  # Create a config file to edit
  wifid defaults --write`,
	RunE: runDefaults,
}

func runDefaults(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if !writeFile {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	path := configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !forceWrite {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot access config file: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
