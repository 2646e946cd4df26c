// Package library resolves library ids to symbol definitions: pins with
// base and tip offsets plus the body box used as a routing obstacle.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// ErrUnknownSymbol is returned by Lookup for ids with no definition.
var ErrUnknownSymbol = errors.New("library: unknown symbol")

// Resolver knows how to look up the definition for a library id.
type Resolver interface {
	Lookup(libID string) (*schematic.SymbolDef, error)
}

// MemoryLibrary is a simple in-memory implementation useful during tests or
// when the caller preloads a fixed set of symbols.
type MemoryLibrary struct {
	mu      sync.RWMutex
	symbols map[string]*schematic.SymbolDef
}

// NewMemoryLibrary creates an empty library.
func NewMemoryLibrary() *MemoryLibrary {
	return &MemoryLibrary{
		symbols: make(map[string]*schematic.SymbolDef),
	}
}

// Add registers a definition under its LibID, replacing any earlier one.
func (l *MemoryLibrary) Add(def *schematic.SymbolDef) error {
	if def == nil || def.LibID == "" {
		return fmt.Errorf("library: definition without lib id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.symbols[def.LibID] = def
	return nil
}

// Lookup implements the Resolver interface.
func (l *MemoryLibrary) Lookup(libID string) (*schematic.SymbolDef, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if def, ok := l.symbols[libID]; ok {
		return def, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, libID)
}

// IDs returns the registered library ids in sorted order.
func (l *MemoryLibrary) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.symbols))
	for id := range l.symbols {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadString parses library text and adds every symbol in it.
func (l *MemoryLibrary) LoadString(input string) error {
	parser, err := NewParser()
	if err != nil {
		return err
	}
	file, err := parser.ParseString(input)
	if err != nil {
		return fmt.Errorf("library: %w", err)
	}
	return l.addFile(file)
}

// LoadFiles parses the provided file paths and adds each symbol to the
// library.
func (l *MemoryLibrary) LoadFiles(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	parser, err := NewParser()
	if err != nil {
		return err
	}
	for _, path := range paths {
		file, err := parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("library: parse %s: %w", path, err)
		}
		if err := l.addFile(file); err != nil {
			return fmt.Errorf("library: add %s: %w", path, err)
		}
	}
	return nil
}

// LoadDir recursively loads all .otsym files from the provided directory.
func (l *MemoryLibrary) LoadDir(root string) error {
	parser, err := NewParser()
	if err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isLibraryFile(path) {
			return nil
		}
		file, err := parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("library: parse %s: %w", path, err)
		}
		if err := l.addFile(file); err != nil {
			return fmt.Errorf("library: add %s: %w", path, err)
		}
		return nil
	})
}

func (l *MemoryLibrary) addFile(file *File) error {
	for _, def := range file.Definitions() {
		if err := l.Add(def); err != nil {
			return err
		}
	}
	return nil
}

func isLibraryFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".otsym"
}
