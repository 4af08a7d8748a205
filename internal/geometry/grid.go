/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

// Zoom-dependent grid snapping. Two independent grid resolutions exist: the
// fine "minor" grid used for shape placement and the coarse "major" grid used
// for pool/lane alignment. Which cell size applies depends on the zoom level.

import "math"

// SnapMode selects which grid a coordinate snaps to.
type SnapMode string

const (
	SnapMinor SnapMode = "minor"
	SnapMajor SnapMode = "major"
	SnapNone  SnapMode = "none"
)

// GridLevel maps a zoom threshold to a grid cell size. A level applies when
// zoom >= MinZoom.
type GridLevel struct {
	MinZoom float64
	Cell    float64
}

// GridTable is an ordered set of levels, descending by MinZoom; the last
// entry is the catch-all floor (MinZoom 0).
type GridTable []GridLevel

// Default tables. Zoomed far in, the grid is fine; zoomed out it coarsens so
// snapped positions stay visually meaningful.
var (
	MinorGrid = GridTable{
		{MinZoom: 4, Cell: 1},
		{MinZoom: 2, Cell: 5},
		{MinZoom: 1, Cell: 10},
		{MinZoom: 0, Cell: 20},
	}
	MajorGrid = GridTable{
		{MinZoom: 4, Cell: 10},
		{MinZoom: 2, Cell: 50},
		{MinZoom: 0, Cell: 100},
	}
)

// CellFor returns the cell size of the first level whose MinZoom <= zoom.
// An empty table yields 1 (snap to integers).
func (t GridTable) CellFor(zoom float64) float64 {
	for _, lvl := range t {
		if zoom >= lvl.MinZoom {
			return lvl.Cell
		}
	}
	if n := len(t); n > 0 {
		return t[n-1].Cell
	}
	return 1
}

// SnapValue rounds v to the nearest multiple of cell.
func SnapValue(v, cell float64) float64 {
	if cell <= 0 {
		return v
	}
	return math.Round(v/cell) * cell
}

// SnapToGrid snaps a point to the grid selected by mode at the given zoom.
// SnapNone (or an unknown mode) passes the point through unchanged.
func SnapToGrid(p Point, zoom float64, mode SnapMode) Point {
	var table GridTable
	switch mode {
	case SnapMinor:
		table = MinorGrid
	case SnapMajor:
		table = MajorGrid
	default:
		return p
	}
	cell := table.CellFor(zoom)
	return Point{X: SnapValue(p.X, cell), Y: SnapValue(p.Y, cell)}
}
