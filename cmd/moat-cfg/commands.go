package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moat-bus/moatcfg/internal/codes"
	"github.com/moat-bus/moatcfg/internal/discovery"
	"github.com/moat-bus/moatcfg/internal/eeprom"
	"github.com/moat-bus/moatcfg/internal/store"
	"github.com/moat-bus/moatcfg/internal/wizard/tui"
)

// Command flags
var (
	codesPath    string
	outputFormat string
	dbPath       string
	scanTimeout  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&codesPath, "codes", "", "Codes file assigning type ids and capability names (default: built-in table)")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(setkeyCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(discoverCmd)
}

// loadTable resolves the --codes flag into a type registry.
func loadTable() (*codes.Table, error) {
	if codesPath == "" {
		return codes.DefaultTable(), nil
	}
	table, err := codes.Load(codesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load codes file: %w", err)
	}
	return table, nil
}

// readImage decodes the container image in the named file.
func readImage(path string, table *codes.Table) (*eeprom.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := eeprom.Decode(data, table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// writeImage encodes the container and writes it to the named file.
func writeImage(path string, c *eeprom.Container) error {
	blob, err := c.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

// newCmd writes an empty container image
var newCmd = &cobra.Command{
	Use:   "new FILE",
	Short: "Create an empty configuration image",
	Long: `Create a new configuration image containing no records.

The resulting file is a valid container (magic, terminator, and CRC
trailer) that blocks can be added to with 'set' or 'wizard'.`,
	Example: `  moat-cfg new device.bin`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeImage(args[0], eeprom.NewContainer()); err != nil {
			return err
		}
		fmt.Printf("Created empty image %s\n", args[0])
		return nil
	},
}

// showCmd displays the decoded image
var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Show the blocks and fields of an image",
	Long: `Decode a configuration image and print every block with its fields.

The image's CRC is verified before anything is printed; a corrupted
image fails here rather than producing partial output.`,
	Example: `  # Detailed listing
  moat-cfg show device.bin

  # One line per block
  moat-cfg show device.bin --format compact

  # JSON output for scripting
  moat-cfg show device.bin --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	c, err := readImage(args[0], table)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "compact":
		for _, r := range c.Records() {
			fmt.Printf("%s (%s, type %d): %s\n", r.Name, r.Block.Kind(), r.TypeID, compactFields(r.Block))
		}
	case "json":
		out := make([]map[string]any, 0, len(c.Records()))
		for _, r := range c.Records() {
			fields := map[string]string{}
			for _, f := range r.Block.FieldNames() {
				if v, err := r.Block.GetField(f); err == nil {
					fields[f] = v
				}
			}
			out = append(out, map[string]any{
				"name":   r.Name,
				"kind":   r.Block.Kind().String(),
				"type":   r.TypeID,
				"fields": fields,
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "detailed":
		fallthrough
	default:
		for _, r := range c.Records() {
			fmt.Printf("%s (%s, type %d)\n", r.Name, r.Block.Kind(), r.TypeID)
			for _, f := range r.Block.FieldNames() {
				v, err := r.Block.GetField(f)
				if err != nil {
					v = "(unset)"
				}
				fmt.Printf("  %-10s %s\n", f, v)
			}
			fmt.Println()
		}
	}

	return nil
}

func compactFields(b eeprom.Block) string {
	var parts []string
	for _, f := range b.FieldNames() {
		if v, err := b.GetField(f); err == nil {
			parts = append(parts, f+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

// getCmd reads one field of one block
var getCmd = &cobra.Command{
	Use:   "get FILE BLOCK FIELD",
	Short: "Print one field of one block",
	Example: `  moat-cfg get device.bin rf12 band
  moat-cfg get device.bin name name`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		c, err := readImage(args[0], table)
		if err != nil {
			return err
		}
		b := c.BlockByName(args[1])
		if b == nil {
			return fmt.Errorf("image has no %q block", args[1])
		}
		value, err := b.GetField(args[2])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

// setCmd sets one field of one block and rewrites the image
var setCmd = &cobra.Command{
	Use:   "set FILE BLOCK FIELD VALUE...",
	Short: "Set one field of one block",
	Long: `Set a field of the named block and rewrite the image.

If the image has no block of that name yet, one is appended. Multiple
VALUE arguments are joined with spaces, so array fields can be given
one value per argument.`,
	Example: `  # Radio band and node id
  moat-cfg set device.bin rf12 band 868
  moat-cfg set device.bin rf12 node 5

  # The device name
  moat-cfg set device.bin name name "boiler sensor"

  # An eight-value array, one value per argument
  moat-cfg set device.bin euid values 1 2 3 4 5 6 7 8`,
	Args: cobra.MinimumNArgs(4),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	c, err := readImage(args[0], table)
	if err != nil {
		return err
	}

	blockName := args[1]
	b := c.BlockByName(blockName)
	if b == nil {
		id, _, ok := table.BlockByName(blockName)
		if !ok {
			return fmt.Errorf("codes file declares no %q block", blockName)
		}
		b, err = table.NewBlock(blockName)
		if err != nil {
			return err
		}
		if err := c.Append(id, blockName, b); err != nil {
			return err
		}
	}

	if err := b.SetField(args[2], strings.Join(args[3:], " ")); err != nil {
		return err
	}
	return writeImage(args[0], c)
}

// fieldsCmd lists the declared fields of a block type
var fieldsCmd = &cobra.Command{
	Use:   "fields BLOCK",
	Short: "List the fields of a block type",
	Example: `  moat-cfg fields rf12
  moat-cfg fields types`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		_, kind, ok := table.BlockByName(args[0])
		if !ok {
			return fmt.Errorf("codes file declares no %q block", args[0])
		}

		// Capability blocks are addressed by capability name rather
		// than by a fixed field set.
		if kind == eeprom.KindCapabilities {
			for _, name := range table.Capabilities() {
				fmt.Println(name)
			}
			return nil
		}

		b, err := table.NewBlock(args[0])
		if err != nil {
			return err
		}
		for _, f := range b.FieldNames() {
			fmt.Println(f)
		}
		return nil
	},
}

// setkeyCmd prompts for key material without echo
var setkeyCmd = &cobra.Command{
	Use:   "setkey FILE",
	Short: "Set the key-material block from a hidden prompt",
	Long: `Prompt for 16 bytes of key material with terminal echo disabled and
store them in the image's key-material block, appending one if absent.

The key is entered as 32 hex digits; ':', '-', '.' and spaces between
bytes are ignored.`,
	Example: `  moat-cfg setkey device.bin`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSetkey,
}

func runSetkey(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	c, err := readImage(args[0], table)
	if err != nil {
		return err
	}

	fmt.Print("Key (32 hex digits): ")
	line, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	key, err := parseKey(string(line))
	if err != nil {
		return err
	}

	b := blockOfKind(c, eeprom.KindCrypto)
	if b == nil {
		name, ok := blockNameForKind(table, eeprom.KindCrypto)
		if !ok {
			return fmt.Errorf("codes file declares no key-material block")
		}
		id, _, _ := table.BlockByName(name)
		b, err = table.NewBlock(name)
		if err != nil {
			return err
		}
		if err := c.Append(id, name, b); err != nil {
			return err
		}
	}

	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = strconv.Itoa(int(v))
	}
	if err := b.SetField("values", strings.Join(parts, " ")); err != nil {
		return err
	}
	if err := writeImage(args[0], c); err != nil {
		return err
	}
	fmt.Printf("Key stored in %s\n", args[0])
	return nil
}

// parseKey accepts 32 hex digits with optional byte separators.
func parseKey(value string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '.', '-', ' ':
			return -1
		}
		return r
	}, value)

	key, err := hex.DecodeString(clean)
	if err != nil || len(key) != 16 {
		return nil, fmt.Errorf("key must be 16 hex bytes")
	}
	return key, nil
}

// blockOfKind returns the first block of the given kind in the image, or nil.
func blockOfKind(c *eeprom.Container, kind eeprom.Kind) eeprom.Block {
	for _, r := range c.Records() {
		if r.Block.Kind() == kind {
			return r.Block
		}
	}
	return nil
}

// blockNameForKind returns the first declared block name of the given kind.
func blockNameForKind(table *codes.Table, kind eeprom.Kind) (string, bool) {
	for _, name := range table.BlockNames() {
		if _, k, ok := table.BlockByName(name); ok && k == kind {
			return name, true
		}
	}
	return "", false
}

// wizardCmd launches the interactive TUI editor
var wizardCmd = &cobra.Command{
	Use:   "wizard FILE",
	Short: "Launch the interactive configuration editor",
	Long: `Launch an interactive TUI editor for a configuration image.

The editor shows the image's blocks, lets you descend into a block to
edit its fields, add and remove blocks, and save the re-encoded image
back to the file. A missing file starts as an empty image.`,
	Example: `  moat-cfg wizard device.bin`,
	Args:    cobra.ExactArgs(1),
	RunE:    runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}

	c := eeprom.NewContainer()
	if _, statErr := os.Stat(args[0]); statErr == nil {
		c, err = readImage(args[0], table)
		if err != nil {
			return err
		}
	}

	model := tui.NewEditorModel(args[0], table, c)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	return nil
}

// storeCmd groups the blob inventory operations
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the provisioning blob inventory",
	Long: `Manage the inventory of encoded images that moat-serve hands out.

Images are keyed by device serial. Every put is decoded and CRC-checked
before it is stored, so the inventory only ever contains valid images.`,
}

func init() {
	storeCmd.PersistentFlags().StringVar(&dbPath, "db", "moatcfg.db", "Inventory database directory")

	storeCmd.AddCommand(storePutCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeDeleteCmd)
}

// openStore opens the inventory under the --db flag.
func openStore() (*store.Store, error) {
	table, err := loadTable()
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath, table)
}

var storePutCmd = &cobra.Command{
	Use:     "put SERIAL FILE",
	Short:   "Store an image under a device serial",
	Example: `  moat-cfg store put 28ff6409 device.bin --db /var/lib/moatcfg`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := openStore()
		if err != nil {
			return err
		}
		defer inv.Close()

		blob, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := inv.Put(args[0], blob); err != nil {
			return err
		}
		fmt.Printf("Stored %s (%d bytes) for %s\n", args[1], len(blob), args[0])
		return nil
	},
}

var storeGetCmd = &cobra.Command{
	Use:     "get SERIAL FILE",
	Short:   "Write the stored image for a serial to a file",
	Example: `  moat-cfg store get 28ff6409 device.bin --db /var/lib/moatcfg`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := openStore()
		if err != nil {
			return err
		}
		defer inv.Close()

		blob, err := inv.Get(args[0])
		if err != nil {
			return err
		}
		return os.WriteFile(args[1], blob, 0o644)
	},
}

var storeListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the serials in the inventory",
	Example: `  moat-cfg store list --db /var/lib/moatcfg`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := openStore()
		if err != nil {
			return err
		}
		defer inv.Close()

		serials, err := inv.List()
		if err != nil {
			return err
		}
		for _, s := range serials {
			fmt.Println(s)
		}
		return nil
	},
}

// discoverCmd scans the network for provisioning servers
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan for provisioning servers on the network",
	Long: `Scan for moat-serve instances using mDNS/DNS-SD discovery.

Servers started with --announce register the _moatcfg._tcp service;
this command lists every instance it hears within the timeout.`,
	Example: `  # Scan for 5 seconds (default)
  moat-cfg discover

  # Longer scan for slow networks
  moat-cfg discover --timeout 15`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for provisioning servers (timeout: %ds)...\n\n", scanTimeout)

	servers, err := discovery.ScanForServers(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(servers) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure moat-serve is running with --announce")
		fmt.Println("  - Check that this machine is on the same network segment")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(servers))

	for i, server := range servers {
		fmt.Printf("%d. %s\n", i+1, server.Instance)
		fmt.Printf("   Address:   %s:%d\n", server.IP, server.Port)
		fmt.Printf("   Websocket: %s\n", server.WebsocketURL())
		fmt.Println()
	}

	return nil
}

var storeDeleteCmd = &cobra.Command{
	Use:     "delete SERIAL",
	Short:   "Remove the stored image for a serial",
	Example: `  moat-cfg store delete 28ff6409 --db /var/lib/moatcfg`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := openStore()
		if err != nil {
			return err
		}
		defer inv.Close()

		if err := inv.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}
