/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"log/slog"
	"math"

	applog "diagramstudio/internal/log"
)

// Anchor names one of 9 attachment points on a shape's bounding box:
// the four edge midpoints, the four corners, and the center.
type Anchor string

const (
	AnchorN      Anchor = "n"
	AnchorS      Anchor = "s"
	AnchorE      Anchor = "e"
	AnchorW      Anchor = "w"
	AnchorNE     Anchor = "ne"
	AnchorNW     Anchor = "nw"
	AnchorSE     Anchor = "se"
	AnchorSW     Anchor = "sw"
	AnchorCenter Anchor = "center"
)

// perimeterAnchors is the candidate order for optimal-anchor search.
// Cardinal anchors come first so they win exact distance ties over diagonals.
var perimeterAnchors = [...]Anchor{
	AnchorN, AnchorS, AnchorE, AnchorW,
	AnchorNE, AnchorNW, AnchorSE, AnchorSW,
}

// Valid reports whether a is one of the 9 known anchor identifiers.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorN, AnchorS, AnchorE, AnchorW, AnchorNE, AnchorNW, AnchorSE, AnchorSW, AnchorCenter:
		return true
	}
	return false
}

// AnchorOffset maps an anchor to its signed offset from a shape's center.
// Unknown anchors fail soft: a warning is logged and the zero offset (center)
// is returned. This must never panic; anchors can arrive from imported files.
func AnchorOffset(size Size, anchor Anchor) Point {
	halfW, halfH := size.W/2, size.H/2
	switch anchor {
	case AnchorN:
		return Point{0, -halfH}
	case AnchorS:
		return Point{0, halfH}
	case AnchorE:
		return Point{halfW, 0}
	case AnchorW:
		return Point{-halfW, 0}
	case AnchorNE:
		return Point{halfW, -halfH}
	case AnchorNW:
		return Point{-halfW, -halfH}
	case AnchorSE:
		return Point{halfW, halfH}
	case AnchorSW:
		return Point{-halfW, halfH}
	case AnchorCenter:
		return Point{0, 0}
	default:
		applog.WithComponent("geometry").Warn("unknown anchor, using center", slog.String("anchor", string(anchor)))
		return Point{0, 0}
	}
}

// AnchorPoint returns the world position of an anchor on a shape's bounds.
func AnchorPoint(bounds Rect, anchor Anchor) Point {
	c := bounds.Center()
	off := AnchorOffset(Size{W: bounds.W, H: bounds.H}, anchor)
	return Point{c.X + off.X, c.Y + off.Y}
}

// CenterForAnchorAt is the inverse of AnchorOffset: it returns the center a
// shape of the given size must have so that the named anchor lands exactly at
// target. Used when creating a shape at a connector's free end.
func CenterForAnchorAt(target Point, size Size, anchor Anchor) Point {
	off := AnchorOffset(size, anchor)
	return Point{target.X - off.X, target.Y - off.Y}
}

// OptimalAnchors picks the anchor pair (one per shape) minimizing the squared
// distance between the anchor points. Candidates are the 8 perimeter anchors;
// center never wins automatic placement. On exact ties, cardinal anchors beat
// diagonal ones, then the fixed candidate order decides.
func OptimalAnchors(src, dst Rect) (Anchor, Anchor) {
	bestSrc, bestDst := AnchorE, AnchorW
	best := math.Inf(1)
	for _, sa := range perimeterAnchors {
		sp := AnchorPoint(src, sa)
		for _, da := range perimeterAnchors {
			dp := AnchorPoint(dst, da)
			if d := DistSq(sp, dp); d < best {
				best = d
				bestSrc, bestDst = sa, da
			}
		}
	}
	return bestSrc, bestDst
}
