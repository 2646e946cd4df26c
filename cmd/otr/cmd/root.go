package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/editor"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
	libPaths   []string
)

var rootCmd = &cobra.Command{
	Use:   "otr",
	Short: "Schematic wire router and connectivity checker",
	Long: `Route orthogonal wires between schematic pins and keep a sheet's
connectivity consistent as components are placed, moved and deleted.

Examples:
  otr lib info symbols/                                 # List library symbols
  otr sch import board.kicad_sch                        # Convert a KiCad sheet
  otr sch info board.yaml --lib symbols/                # Summarize a schematic
  otr sch apply board.yaml edits.yaml --lib symbols/    # Replay edits with auto-routing
  otr sch check board.yaml --lib symbols/               # Report connectivity problems`,
	Version: "0.3.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "editor configuration file (YAML)")
	rootCmd.PersistentFlags().StringSliceVarP(&libPaths, "lib", "l", nil, "symbol library file or directory (repeatable)")
}

// loadLibrary reads every library file or directory into one repository
func loadLibrary(paths []string) (*library.MemoryLibrary, error) {
	lib := library.NewMemoryLibrary()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", p, err)
		}
		if info.IsDir() {
			err = lib.LoadDir(p)
		} else {
			err = lib.LoadFiles(p)
		}
		if err != nil {
			return nil, err
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d library symbols\n", len(lib.IDs()))
	}
	return lib, nil
}

func loadConfig() (*editor.Config, error) {
	if configPath == "" {
		return editor.DefaultConfig(), nil
	}
	return editor.LoadConfig(configPath)
}

// openEditor loads a schematic document together with the configured
// library and settings.
func openEditor(docPath string) (*editor.Editor, error) {
	doc, err := schematic.LoadDocument(docPath)
	if err != nil {
		return nil, fmt.Errorf("error loading schematic: %w", err)
	}
	lib, err := loadLibrary(libPaths)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stderr, "otr: ", 0)
	}
	return editor.New(doc, lib, cfg, editor.Options{
		Logger: logger,
		Warnings: editor.WarningFunc(func(msg string) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
		}),
	}), nil
}
