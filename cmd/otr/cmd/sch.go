package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/editor"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
	"github.com/spf13/cobra"
)

var (
	outputPath  string
	symbolsPath string
)

var schCmd = &cobra.Command{
	Use:   "sch",
	Short: "Schematic document operations",
	Long:  `Commands for inspecting and editing schematic documents (.yaml)`,
}

var schInfoCmd = &cobra.Command{
	Use:   "info <schematic_file>",
	Short: "Show schematic information",
	Long: `Display a summary of the active sheet: element counts, components
grouped by reference prefix and the nets they form.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchInfo,
}

var schCheckCmd = &cobra.Command{
	Use:   "check <schematic_file>",
	Short: "Report connectivity problems",
	Long: `Check the active sheet for overlapping components, dangling wires,
wires crossing bodies or foreign pins and wires shared between nets.
Exits with an error when any problem is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchCheck,
}

var schRouteCmd = &cobra.Command{
	Use:   "route <schematic_file>",
	Short: "Reroute blocked and overlapping wires",
	Long: `Run the repair pass over the active sheet: wires crossing bodies or
foreign pins are rerouted and wires sharing an edge with another net are
moved apart. The document is written back unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchRoute,
}

var schNetlistCmd = &cobra.Command{
	Use:   "netlist <schematic_file>",
	Short: "Export the netlist as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchNetlist,
}

var schApplyCmd = &cobra.Command{
	Use:   "apply <schematic_file> <script_file>",
	Short: "Replay an edit script",
	Long: `Apply the steps of a YAML edit script to the active sheet. Every step
runs the same wire maintenance as interactive editing: wires follow moved
pins, blocked wires are rerouted and dangling wires are pruned.

Script format:
  continue_on_error: false
  steps:
    - {op: place, id: R1, lib_id: "Device:R", at: {x: 0, y: 0}, rotation: 90}
    - {op: draw, points: [{x: 3, y: 0}, {x: 8, y: 0}]}
    - {op: move, id: R1, at: {x: 0, y: 5}}
    - {op: rotate, id: R1, degrees: 90}
    - {op: mirror, id: R1}
    - {op: group, ids: [R1, R2], delta: {x: 5, y: 0}}
    - {op: delete, ids: [R1]}
    - {op: undo}
    - {op: redo}
    - {op: repair}`,
	Args: cobra.ExactArgs(2),
	RunE: runSchApply,
}

var schImportCmd = &cobra.Command{
	Use:   "import <kicad_sch_file>",
	Short: "Convert a KiCad schematic",
	Long: `Convert a KiCad schematic sheet (.kicad_sch) into a document and a symbol
library holding the definitions it uses. The document is written to
--output (default: the input name with a .yaml extension) and the library
to --symbols (default: the input name with a .otsym extension).`,
	Args: cobra.ExactArgs(1),
	RunE: runSchImport,
}

func init() {
	rootCmd.AddCommand(schCmd)
	schCmd.AddCommand(schInfoCmd)
	schCmd.AddCommand(schCheckCmd)
	schCmd.AddCommand(schRouteCmd)
	schCmd.AddCommand(schNetlistCmd)
	schCmd.AddCommand(schApplyCmd)
	schCmd.AddCommand(schImportCmd)

	schRouteCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the result to this file")
	schApplyCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the result to this file")
	schImportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "document output file")
	schImportCmd.Flags().StringVar(&symbolsPath, "symbols", "", "symbol library output file")
}

func runSchInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	ed, err := openEditor(filename)
	if err != nil {
		return err
	}
	sheet, err := ed.Document().Active()
	if err != nil {
		return err
	}

	fmt.Printf("Schematic: %s\n", filename)
	fmt.Printf("Sheets: %d (active: %s)\n", len(ed.Document().Sheets), sheet.ID)
	fmt.Println()

	fmt.Println("Statistics:")
	fmt.Printf("  Components: %d\n", len(sheet.Components))
	fmt.Printf("  Wires: %d\n", len(sheet.Wires))
	fmt.Printf("  Junctions: %d\n", len(sheet.Junctions))
	fmt.Printf("  Labels: %d\n", len(sheet.Labels))
	fmt.Println()

	if len(sheet.Components) > 0 {
		fmt.Println("Components:")
		byPrefix := make(map[string][]string)
		for _, c := range sheet.Components {
			ref := c.Reference
			if ref == "" {
				ref = c.ID
			}
			prefix := getRefPrefix(ref)
			byPrefix[prefix] = append(byPrefix[prefix], ref)
		}
		var prefixes []string
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		for _, prefix := range prefixes {
			refs := byPrefix[prefix]
			sort.Strings(refs)
			fmt.Printf("  %s: %s\n", prefix, strings.Join(refs, ", "))
		}
		fmt.Println()
	}

	nl := netlist.Build(ed.Grid(), sheet, ed.Library())
	fmt.Printf("Nets: %d\n", nl.NetCount())
	for _, n := range nl.Nets {
		pins := make([]string, len(n.Pins))
		for i, p := range n.Pins {
			pins[i] = p.String()
		}
		fmt.Printf("  %s: %s\n", n.Name, strings.Join(pins, " "))
	}
	return nil
}

func runSchCheck(cmd *cobra.Command, args []string) error {
	ed, err := openEditor(args[0])
	if err != nil {
		return err
	}
	issues, err := ed.Check()
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("No issues found")
		return nil
	}
	for _, issue := range issues {
		fmt.Printf("  %s\n", issue)
	}
	return fmt.Errorf("%d issue(s) found", len(issues))
}

func runSchRoute(cmd *cobra.Command, args []string) error {
	ed, err := openEditor(args[0])
	if err != nil {
		return err
	}
	report, err := ed.Repair()
	if err != nil {
		return err
	}
	printReport(report)
	if !report.Changed() {
		return nil
	}
	return saveDocument(ed, args[0])
}

func runSchNetlist(cmd *cobra.Command, args []string) error {
	ed, err := openEditor(args[0])
	if err != nil {
		return err
	}
	sheet, err := ed.Document().Active()
	if err != nil {
		return err
	}
	data, err := netlist.Build(ed.Grid(), sheet, ed.Library()).ExportYAML()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func runSchApply(cmd *cobra.Command, args []string) error {
	ed, err := openEditor(args[0])
	if err != nil {
		return err
	}
	script, err := editor.LoadScript(args[1])
	if err != nil {
		return err
	}
	if err := script.Run(ed, os.Stdout); err != nil {
		return err
	}
	if verbose {
		printReport(ed.LastReport())
	}
	return saveDocument(ed, args[0])
}

func runSchImport(cmd *cobra.Command, args []string) error {
	filename := args[0]
	res, err := kicad.ImportFile(filename)
	if err != nil {
		return fmt.Errorf("error importing schematic: %w", err)
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	docPath, libPath := outputPath, symbolsPath
	if docPath == "" {
		docPath = base + ".yaml"
	}
	if libPath == "" {
		libPath = base + ".otsym"
	}

	sheet, err := res.Document.Active()
	if err != nil {
		return err
	}
	fmt.Printf("Imported %s\n", filename)
	fmt.Printf("  Components: %d\n", len(sheet.Components))
	fmt.Printf("  Wires: %d\n", len(sheet.Wires))
	fmt.Printf("  Junctions: %d\n", len(sheet.Junctions))
	fmt.Printf("  Labels: %d\n", len(sheet.Labels))
	fmt.Printf("  Symbols: %d\n", len(res.Symbols))
	if len(res.Skipped) > 0 {
		fmt.Println("Skipped:")
		for _, s := range res.Skipped {
			fmt.Printf("  %s\n", s)
		}
	}

	if err := library.SaveFile(libPath, res.Symbols); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", libPath)
	if err := schematic.SaveDocument(docPath, res.Document); err != nil {
		return fmt.Errorf("error saving schematic: %w", err)
	}
	fmt.Printf("Saved %s\n", docPath)
	return nil
}

func printReport(r editor.Report) {
	fmt.Printf("Maintenance (%s):\n", r.Event)
	fmt.Printf("  Retargeted: %d\n", r.Retargeted)
	fmt.Printf("  Translated: %d\n", r.Translated)
	fmt.Printf("  Materialized: %d\n", r.Materialized)
	fmt.Printf("  Rerouted: %d\n", r.Rerouted)
	fmt.Printf("  Separated: %d\n", r.Separated)
	fmt.Printf("  Pruned: %d\n", r.Pruned)
	fmt.Printf("  Junctions: +%d -%d\n", r.JunctionsAdded, r.JunctionsRemoved)
	if r.Fallbacks > 0 {
		fmt.Printf("  Fallback paths: %d\n", r.Fallbacks)
	}
}

// saveDocument writes to --output when set, otherwise back to the input
func saveDocument(ed *editor.Editor, input string) error {
	path := input
	if outputPath != "" {
		path = outputPath
	}
	if err := schematic.SaveDocument(path, ed.Document()); err != nil {
		return fmt.Errorf("error saving schematic: %w", err)
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

func getRefPrefix(ref string) string {
	i := strings.IndexFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return ref
	}
	return ref[:i]
}
