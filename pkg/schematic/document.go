package schematic

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDocument reads and decodes a YAML document file
func LoadDocument(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadDocument(file)
}

// ReadDocument decodes a YAML document from a reader
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("schematic: decode document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveDocument writes the document as YAML
func SaveDocument(filename string, doc *Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("schematic: write %s: %w", filename, err)
	}
	return nil
}

// EncodeDocument serializes the document as YAML
func EncodeDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("schematic: encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("schematic: encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) validate() error {
	if len(d.Sheets) == 0 {
		return fmt.Errorf("schematic: document has no sheets")
	}
	for _, s := range d.Sheets {
		if s == nil {
			return fmt.Errorf("schematic: empty sheet entry")
		}
		for _, w := range s.Wires {
			if len(w.Points) < 2 {
				return fmt.Errorf("schematic: wire %s has %d points, need at least 2", w.ID, len(w.Points))
			}
		}
		for _, c := range s.Components {
			if c.Rotation%90 != 0 {
				return fmt.Errorf("schematic: component %s rotation %d is not a quarter turn", c.ID, c.Rotation)
			}
		}
	}
	return nil
}
