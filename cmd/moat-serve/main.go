// Moat-serve is the provisioning server for MoaT bus devices.
//
// It serves encoded configuration images from a blob inventory to flasher
// agents, over both plain HTTP and a websocket endpoint, and can announce
// itself on the local network via mDNS so agents find it without
// configuration.
//
// Usage:
//
//	moat-serve serve [flags]
//
// See 'moat-serve serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moat-bus/moatcfg/internal/codes"
	"github.com/moat-bus/moatcfg/internal/logging"
	"github.com/moat-bus/moatcfg/internal/server"
	"github.com/moat-bus/moatcfg/internal/store"
	"github.com/moat-bus/moatcfg/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "moat-serve",
	Short: "MoaT Provisioning Server",
	Long: `A provisioning server for MoaT bus devices.

Serves configuration images from the inventory that 'moat-cfg store'
manages. Flasher agents fetch images by device serial over HTTP or the
websocket endpoint.

Note: for creating and editing images, use the separate 'moat-cfg'
utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	listenHost string
	listenPort int
	dbPath     string
	codesPath  string
	announce   bool
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the provisioning server",
	Long: `Start the provisioning server over the given inventory.

The server answers GET /v1/serials with the known serials, GET
/v1/config/{serial} with the raw image, and speaks the flasher agent
protocol on /v1/ws. With --announce it registers _moatcfg._tcp via
mDNS so agents on the local network find it automatically.`,
	Example: `  # Serve the default inventory on all interfaces
  moat-serve serve --db /var/lib/moatcfg

  # Custom port, mDNS announcement, debug logging
  moat-serve serve --db /var/lib/moatcfg --port 8470 --announce --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenHost, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&listenPort, "port", 8469, "Listen port")
	serveCmd.Flags().StringVar(&dbPath, "db", "moatcfg.db", "Inventory database directory")
	serveCmd.Flags().StringVar(&codesPath, "codes", "", "Codes file (default: built-in table)")
	serveCmd.Flags().BoolVar(&announce, "announce", false, "Announce the service over mDNS")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	table := codes.DefaultTable()
	if codesPath != "" {
		var err error
		table, err = codes.Load(codesPath)
		if err != nil {
			return fmt.Errorf("failed to load codes file: %w", err)
		}
	}

	inv, err := store.Open(dbPath, table)
	if err != nil {
		return fmt.Errorf("failed to open inventory: %w", err)
	}
	defer inv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(&server.Config{
		Host:     listenHost,
		Port:     listenPort,
		Announce: announce,
	}, inv)

	return srv.Start(ctx)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("moat-serve %s (commit: %s)\n", version.Version, version.Commit)
	},
}
