// Package netlist groups the pins, wires and labels of a sheet into nets.
// Connectivity follows the editor's rules: wires join at their end points,
// pins join wires at their tips and labels with equal text share a net.
package netlist

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// PinRef identifies a component pin
type PinRef struct {
	Component string `yaml:"component"`
	Reference string `yaml:"reference"`
	Pin       string `yaml:"pin"`
}

func (p PinRef) String() string {
	ref := p.Reference
	if ref == "" {
		ref = p.Component
	}
	return ref + "." + p.Pin
}

// Net is one electrically connected group
type Net struct {
	ID     int      `yaml:"id"`
	Name   string   `yaml:"name"`
	Pins   []PinRef `yaml:"pins,omitempty"`
	Labels []string `yaml:"labels,omitempty"`
	Wires  []string `yaml:"wires,omitempty"`
}

// Netlist tracks connectivity between grid points with a union-find
// structure. Pins, wires and labels are attached to the points they touch.
type Netlist struct {
	parent map[string]string
	rank   map[string]int
	order  []string // Node keys in insertion order

	pins   map[string][]PinRef
	labels map[string][]string
	wires  map[string][]string

	// Final nets after calling Finalize()
	Nets []*Net
}

// New creates an empty netlist
func New() *Netlist {
	return &Netlist{
		parent: make(map[string]string),
		rank:   make(map[string]int),
		pins:   make(map[string][]PinRef),
		labels: make(map[string][]string),
		wires:  make(map[string][]string),
	}
}

// Build extracts the netlist of a sheet. Components without a definition
// contribute no pins.
func Build(g grid.Grid, sheet *schematic.Sheet, lib library.Resolver) *Netlist {
	nl := New()

	for _, c := range sheet.Components {
		if lib == nil {
			break
		}
		def, err := lib.Lookup(c.LibID)
		if err != nil {
			continue
		}
		for _, p := range schematic.ResolvePins(c, def) {
			key := pointKey(g.ToGrid(p.Tip))
			nl.add(key)
			nl.pins[key] = append(nl.pins[key], PinRef{Component: c.ID, Reference: c.Reference, Pin: p.Number})
		}
	}

	paths := make([][]grid.Point, len(sheet.Wires))
	idx := route.NewCellIndex()
	for i, w := range sheet.Wires {
		if len(w.Points) < 2 {
			continue
		}
		paths[i] = g.ToGridPath(w.Points)
		idx.AddPath(i, paths[i])
		start, end := pointKey(paths[i][0]), pointKey(paths[i][len(paths[i])-1])
		nl.add(start)
		nl.add(end)
		nl.Connect(start, end)
		nl.wires[start] = append(nl.wires[start], w.ID)
	}
	for i, path := range paths {
		if len(path) == 0 {
			continue
		}
		for _, end := range []grid.Point{path[0], path[len(path)-1]} {
			for _, j := range idx.At(end) {
				if j != i {
					nl.Connect(pointKey(end), pointKey(paths[j][0]))
				}
			}
		}
	}

	byText := make(map[string]string)
	for _, l := range sheet.Labels {
		p := g.ToGrid(l.Position)
		key := pointKey(p)
		nl.add(key)
		nl.labels[key] = append(nl.labels[key], l.Text)
		for _, j := range idx.At(p) {
			nl.Connect(key, pointKey(paths[j][0]))
		}
		if first, ok := byText[l.Text]; ok {
			nl.Connect(key, first)
		} else {
			byText[l.Text] = key
		}
	}

	nl.Finalize()
	return nl
}

func pointKey(p grid.Point) string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

func (nl *Netlist) add(key string) {
	if _, ok := nl.parent[key]; ok {
		return
	}
	nl.parent[key] = key
	nl.rank[key] = 0
	nl.order = append(nl.order, key)
}

// Connect merges the nets of two points
func (nl *Netlist) Connect(a, b string) {
	nl.add(a)
	nl.add(b)
	rootA := nl.Find(a)
	rootB := nl.Find(b)
	if rootA == rootB {
		return
	}

	// Union by rank
	if nl.rank[rootA] < nl.rank[rootB] {
		nl.parent[rootA] = rootB
	} else if nl.rank[rootA] > nl.rank[rootB] {
		nl.parent[rootB] = rootA
	} else {
		nl.parent[rootB] = rootA
		nl.rank[rootA]++
	}
}

// Find returns the representative point of the net containing key
func (nl *Netlist) Find(key string) string {
	root := key
	for nl.parent[root] != root {
		root = nl.parent[root]
	}
	// Path compression
	for key != root {
		next := nl.parent[key]
		nl.parent[key] = root
		key = next
	}
	return root
}

// Finalize groups the points into nets and names them. Lone pins with
// nothing attached are not nets and are skipped.
func (nl *Netlist) Finalize() {
	groups := make(map[string]*Net)
	var roots []string
	for _, key := range nl.order {
		root := nl.Find(key)
		net, ok := groups[root]
		if !ok {
			net = &Net{}
			groups[root] = net
			roots = append(roots, root)
		}
		net.Pins = append(net.Pins, nl.pins[key]...)
		net.Labels = append(net.Labels, nl.labels[key]...)
		net.Wires = append(net.Wires, nl.wires[key]...)
	}

	nl.Nets = make([]*Net, 0, len(roots))
	for _, root := range roots {
		net := groups[root]
		if len(net.Wires) == 0 && len(net.Labels) == 0 && len(net.Pins) < 2 {
			continue
		}
		sort.Slice(net.Pins, func(i, j int) bool {
			return net.Pins[i].String() < net.Pins[j].String()
		})
		sort.Strings(net.Labels)
		net.Labels = dedupe(net.Labels)
		net.ID = len(nl.Nets) + 1
		net.Name = nl.name(net)
		nl.Nets = append(nl.Nets, net)
	}
}

func (nl *Netlist) name(net *Net) string {
	name := fmt.Sprintf("net-%03d", net.ID)
	for _, p := range net.Pins {
		name = BetterNetName(name, p.String())
	}
	for _, l := range net.Labels {
		name = BetterNetName(name, l)
	}
	return name
}

// NetCount returns the number of nets.
// Only valid after calling Finalize().
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// Net returns the net with the given name, or nil
func (nl *Netlist) Net(name string) *Net {
	for _, n := range nl.Nets {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NetOf returns the net containing a component pin, or nil
func (nl *Netlist) NetOf(reference, pin string) *Net {
	for _, n := range nl.Nets {
		for _, p := range n.Pins {
			if (p.Reference == reference || p.Component == reference) && p.Pin == pin {
				return n
			}
		}
	}
	return nil
}

// ExportYAML exports the netlist as a YAML document
func (nl *Netlist) ExportYAML() ([]byte, error) {
	if nl.Nets == nil {
		return nil, fmt.Errorf("netlist: not finalized")
	}
	out := struct {
		NetCount int    `yaml:"net_count"`
		Nets     []*Net `yaml:"nets"`
	}{
		NetCount: nl.NetCount(),
		Nets:     nl.Nets,
	}
	return yaml.Marshal(out)
}

// autoNetRe matches auto-generated net names like "net-001"
var autoNetRe = regexp.MustCompile(`^net-\d+$`)

// netNamePriority scores a net name: 0 auto-generated, 1 component pin,
// 2 label text.
func netNamePriority(name string) int {
	if autoNetRe.MatchString(name) {
		return 0
	}
	if strings.Contains(name, ".") {
		return 1
	}
	return 2
}

// BetterNetName returns the higher-priority name between a and b. At equal
// priority the shorter name wins, then the lexically smaller one.
func BetterNetName(a, b string) string {
	pa, pb := netNamePriority(a), netNamePriority(b)
	if pa != pb {
		if pa > pb {
			return a
		}
		return b
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return a
		}
		return b
	}
	if a <= b {
		return a
	}
	return b
}

func dedupe(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i > 0 && v == s[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
