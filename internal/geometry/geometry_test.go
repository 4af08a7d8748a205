/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "testing"

func TestRectIntersectsPartialOverlap(t *testing.T) {
	shape := R(0, 0, 100, 100)
	if !shape.Intersects(R(50, 50, 200, 200)) {
		t.Fatalf("partial overlap must intersect")
	}
	if shape.Intersects(R(200, 200, 10, 10)) {
		t.Fatalf("disjoint rects must not intersect")
	}
	// full containment also counts
	if !shape.Intersects(R(10, 10, 5, 5)) {
		t.Fatalf("contained rect must intersect")
	}
}

func TestRectNormalized(t *testing.T) {
	r := Rect{X: 100, Y: 100, W: -40, H: -60}.Normalized()
	if r.X != 60 || r.Y != 40 || r.W != 40 || r.H != 60 {
		t.Fatalf("unexpected normalized rect: %+v", r)
	}
}

func TestAnchorOffsets(t *testing.T) {
	size := Size{W: 100, H: 60}
	cases := map[Anchor]Point{
		AnchorN:      {0, -30},
		AnchorS:      {0, 30},
		AnchorE:      {50, 0},
		AnchorW:      {-50, 0},
		AnchorNE:     {50, -30},
		AnchorNW:     {-50, -30},
		AnchorSE:     {50, 30},
		AnchorSW:     {-50, 30},
		AnchorCenter: {0, 0},
	}
	for a, want := range cases {
		if got := AnchorOffset(size, a); got != want {
			t.Fatalf("AnchorOffset(%s) = %+v, want %+v", a, got, want)
		}
	}
}

func TestAnchorOffsetUnknownFailsSoft(t *testing.T) {
	if got := AnchorOffset(Size{W: 10, H: 10}, Anchor("bogus")); got != (Point{}) {
		t.Fatalf("unknown anchor should return zero offset, got %+v", got)
	}
}

func TestCenterForAnchorAtInverse(t *testing.T) {
	size := Size{W: 80, H: 40}
	target := Point{X: 200, Y: 120}
	for _, a := range []Anchor{AnchorN, AnchorS, AnchorE, AnchorW, AnchorNE, AnchorSW, AnchorCenter} {
		center := CenterForAnchorAt(target, size, a)
		bounds := Rect{X: center.X - size.W/2, Y: center.Y - size.H/2, W: size.W, H: size.H}
		if got := AnchorPoint(bounds, a); got != target {
			t.Fatalf("anchor %s did not land on target: got %+v", a, got)
		}
	}
}

func TestGridCellSelection(t *testing.T) {
	table := GridTable{
		{MinZoom: 4, Cell: 1},
		{MinZoom: 2, Cell: 5},
		{MinZoom: 0, Cell: 80},
	}
	// 2 <= 3 < 4 selects the middle bucket
	if got := table.CellFor(3.0); got != 5 {
		t.Fatalf("CellFor(3.0) = %v, want 5", got)
	}
	if got := table.CellFor(4.0); got != 1 {
		t.Fatalf("CellFor(4.0) = %v, want 1", got)
	}
	if got := table.CellFor(0.5); got != 80 {
		t.Fatalf("CellFor(0.5) = %v, want 80", got)
	}
}

func TestSnapValue(t *testing.T) {
	if got := SnapValue(12.0, 5); got != 10 {
		t.Fatalf("SnapValue(12, 5) = %v, want 10", got)
	}
	if got := SnapValue(13.0, 5); got != 15 {
		t.Fatalf("SnapValue(13, 5) = %v, want 15", got)
	}
	if got := SnapValue(7, 0); got != 7 {
		t.Fatalf("zero cell must pass through, got %v", got)
	}
}

func TestSnapToGridModes(t *testing.T) {
	p := Point{X: 12, Y: 18}
	minor := SnapToGrid(p, 3.0, SnapMinor) // minor cell at zoom 3 is 5
	if minor.X != 10 || minor.Y != 20 {
		t.Fatalf("minor snap: got %+v", minor)
	}
	major := SnapToGrid(p, 3.0, SnapMajor) // major cell at zoom 3 is 50
	if major.X != 0 || major.Y != 0 {
		t.Fatalf("major snap: got %+v", major)
	}
	if got := SnapToGrid(p, 3.0, SnapNone); got != p {
		t.Fatalf("none mode must pass through, got %+v", got)
	}
}

func TestOptimalAnchorsSideBySide(t *testing.T) {
	left := R(0, 0, 100, 100)
	right := R(300, 0, 100, 100)
	sa, da := OptimalAnchors(left, right)
	if sa != AnchorE || da != AnchorW {
		t.Fatalf("expected e/w for horizontally separated shapes, got %s/%s", sa, da)
	}
}

func TestOptimalAnchorsStacked(t *testing.T) {
	top := R(0, 0, 100, 100)
	bottom := R(0, 400, 100, 100)
	sa, da := OptimalAnchors(top, bottom)
	if sa != AnchorS || da != AnchorN {
		t.Fatalf("expected s/n for vertically separated shapes, got %s/%s", sa, da)
	}
}

func TestOptimalAnchorsIdempotent(t *testing.T) {
	a := R(10, 20, 80, 40)
	b := R(250, 180, 120, 60)
	s1, d1 := OptimalAnchors(a, b)
	s2, d2 := OptimalAnchors(a, b)
	if s1 != s2 || d1 != d2 {
		t.Fatalf("recomputation changed result: %s/%s vs %s/%s", s1, d1, s2, d2)
	}
}
