package route

import "github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"

// CellIndex buckets element indices by the grid cells they cover, so
// point-on-element queries avoid scanning every element.
type CellIndex struct {
	cells map[grid.Point][]int
}

// NewCellIndex creates an empty index
func NewCellIndex() *CellIndex {
	return &CellIndex{cells: make(map[grid.Point][]int)}
}

// Add records that element id covers the given cells
func (ix *CellIndex) Add(id int, cells ...grid.Point) {
	for _, c := range cells {
		if containsInt(ix.cells[c], id) {
			continue
		}
		ix.cells[c] = append(ix.cells[c], id)
	}
}

// AddPath records every cell of a grid polyline
func (ix *CellIndex) AddPath(id int, path []grid.Point) {
	ix.Add(id, grid.Cells(path)...)
}

// At returns the elements covering p
func (ix *CellIndex) At(p grid.Point) []int {
	return ix.cells[p]
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
