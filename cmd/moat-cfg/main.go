// Moat-cfg is a configuration utility for MoaT bus device EEPROM images.
//
// It creates, inspects, and edits the binary configuration containers a
// device reads at boot: CRC-protected record sequences of typed blocks
// such as capability sets, radio link parameters, and 1-Wire identities.
// Type ids and capability names come from a codes file; a built-in table
// is used when none is given.
//
// Usage:
//
//	moat-cfg [command] [flags]
//
// See 'moat-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moat-bus/moatcfg/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "moat-cfg",
	Short: "MoaT Device Configuration Utility",
	Long: `A standalone utility for MoaT bus device configuration images.

Creates, inspects, and edits the EEPROM configuration containers that
MoaT devices read at boot. Blocks and fields are addressed by the names
declared in the codes file (see --codes); without one the built-in
table is used.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("moat-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
