package library

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// Encode writes definitions in the .otsym format read by Parser
func Encode(w io.Writer, defs []*schematic.SymbolDef) error {
	bw := bufio.NewWriter(w)
	for i, def := range defs {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "(symbol %s\n", strconv.Quote(def.LibID))
		if !def.Body.IsEmpty() {
			fmt.Fprintf(bw, "  (body %s %s %s %s)", num(def.Body.Min.X), num(def.Body.Min.Y), num(def.Body.Max.X), num(def.Body.Max.Y))
		}
		for _, p := range def.Pins {
			bw.WriteString("\n  (pin ")
			bw.WriteString(strconv.Quote(p.Number))
			if p.Name != "" {
				bw.WriteString(" " + strconv.Quote(p.Name))
			}
			fmt.Fprintf(bw, " (base %s %s) (tip %s %s)", num(p.Base.X), num(p.Base.Y), num(p.Tip.X), num(p.Tip.Y))
			if p.Direction != "" {
				bw.WriteString(" " + string(p.Direction))
			}
			bw.WriteString(")")
		}
		bw.WriteString(")\n")
	}
	return bw.Flush()
}

// SaveFile writes definitions to a .otsym file
func SaveFile(path string, defs []*schematic.SymbolDef) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("library: create %s: %w", path, err)
	}
	if err := Encode(f, defs); err != nil {
		f.Close()
		return fmt.Errorf("library: write %s: %w", path, err)
	}
	return f.Close()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
