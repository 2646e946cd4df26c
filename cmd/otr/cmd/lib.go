package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showPins bool

var libCmd = &cobra.Command{
	Use:   "lib",
	Short: "Symbol library operations",
}

var libInfoCmd = &cobra.Command{
	Use:   "info <file_or_dir>...",
	Short: "List library symbols",
	Long: `Parse symbol library files (.otsym) and list the symbols they define.
Directories are searched recursively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLibInfo,
}

func init() {
	rootCmd.AddCommand(libCmd)
	libCmd.AddCommand(libInfoCmd)
	libInfoCmd.Flags().BoolVarP(&showPins, "pins", "p", false, "show pin details")
}

func runLibInfo(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(args)
	if err != nil {
		return err
	}

	ids := lib.IDs()
	fmt.Printf("Symbols: %d\n", len(ids))
	for _, id := range ids {
		def, err := lib.Lookup(id)
		if err != nil {
			return err
		}
		fmt.Printf("  %-24s pins: %-3d body: %.2f x %.2f\n", id, len(def.Pins), def.Body.Width(), def.Body.Height())
		if !showPins {
			continue
		}
		for _, p := range def.Pins {
			name := p.Name
			if name == "" {
				name = "~"
			}
			fmt.Printf("    %s (%s) tip (%.2f, %.2f)", p.Number, name, p.Tip.X, p.Tip.Y)
			if p.Direction != "" {
				fmt.Printf(" %s", p.Direction)
			}
			fmt.Println()
		}
	}
	return nil
}
