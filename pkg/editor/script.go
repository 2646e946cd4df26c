package editor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// Script is a list of edit operations replayed through an Editor:
//
//	continue_on_error: true
//	steps:
//	  - {op: place, id: R1, lib_id: "Device:R", at: {x: 0, y: 0}}
//	  - {op: rotate, id: R1, degrees: 90}
//	  - {op: draw, points: [{x: 3, y: 0}, {x: 8, y: 0}]}
//	  - {op: delete, ids: [R1]}
type Script struct {
	ContinueOnError bool   `yaml:"continue_on_error,omitempty"`
	Steps           []Step `yaml:"steps"`
}

// Step is one operation. Which fields are used depends on Op.
type Step struct {
	Op        string               `yaml:"op"`
	ID        string               `yaml:"id,omitempty"`
	LibID     string               `yaml:"lib_id,omitempty"`
	Reference string               `yaml:"reference,omitempty"`
	At        schematic.Position   `yaml:"at,omitempty"`
	Rotation  int                  `yaml:"rotation,omitempty"`
	Mirror    bool                 `yaml:"mirror,omitempty"`
	Degrees   int                  `yaml:"degrees,omitempty"`
	IDs       []string             `yaml:"ids,omitempty"`
	Delta     schematic.Position   `yaml:"delta,omitempty"`
	Points    []schematic.Position `yaml:"points,omitempty"`
}

// LoadScript reads a YAML edit script
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("editor: read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML edit script
func ParseScript(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("editor: parse script: %w", err)
	}
	for i, step := range s.Steps {
		if _, ok := stepOps[step.Op]; !ok {
			return nil, fmt.Errorf("editor: script step %d: unknown op %q", i+1, step.Op)
		}
	}
	return &s, nil
}

var stepOps = map[string]func(e *Editor, s Step) (string, error){
	"place": func(e *Editor, s Step) (string, error) {
		return e.PlaceComponent(schematic.Component{
			ID: s.ID, LibID: s.LibID, Reference: s.Reference,
			Position: s.At, Rotation: s.Rotation, Mirror: s.Mirror,
		})
	},
	"move": func(e *Editor, s Step) (string, error) {
		return s.ID, e.MoveComponent(s.ID, s.At)
	},
	"rotate": func(e *Editor, s Step) (string, error) {
		deg := s.Degrees
		if deg == 0 {
			deg = 90
		}
		return s.ID, e.RotateComponent(s.ID, deg)
	},
	"mirror": func(e *Editor, s Step) (string, error) {
		return s.ID, e.MirrorComponent(s.ID)
	},
	"group": func(e *Editor, s Step) (string, error) {
		return "", e.MoveGroup(s.IDs, s.Delta)
	},
	"draw": func(e *Editor, s Step) (string, error) {
		return e.DrawWire(s.Points)
	},
	"delete": func(e *Editor, s Step) (string, error) {
		ids := s.IDs
		if s.ID != "" {
			ids = append([]string{s.ID}, ids...)
		}
		return "", e.DeleteElements(ids)
	},
	"undo": func(e *Editor, s Step) (string, error) {
		return "", e.Undo()
	},
	"redo": func(e *Editor, s Step) (string, error) {
		return "", e.Redo()
	},
	"repair": func(e *Editor, s Step) (string, error) {
		_, err := e.Repair()
		return "", err
	},
}

// Run applies the steps in order and writes one line per step to out. It
// stops at the first failing step unless ContinueOnError is set; the
// returned error counts the failures.
func (s *Script) Run(e *Editor, out io.Writer) error {
	failed := 0
	for i, step := range s.Steps {
		op, ok := stepOps[step.Op]
		if !ok {
			return fmt.Errorf("editor: script step %d: unknown op %q", i+1, step.Op)
		}
		id, err := op(e, step)
		if err != nil {
			failed++
			fmt.Fprintf(out, "step %d %s: %v\n", i+1, step.Op, err)
			if !s.ContinueOnError {
				return fmt.Errorf("editor: script step %d: %w", i+1, err)
			}
			continue
		}
		fmt.Fprintf(out, "step %d %s %s: ok\n", i+1, step.Op, id)
	}
	if failed > 0 {
		return fmt.Errorf("editor: %d of %d script steps failed", failed, len(s.Steps))
	}
	return nil
}
