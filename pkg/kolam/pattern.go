// Package kolam generates traditional pulli kolam designs.
//
// A kolam is drawn over a square grid of dots. Each occupied grid cell
// carries one of sixteen connection patterns: a closed loop around the
// cell's dot that may extend to the cell below and/or to the right, joining
// up with the neighboring loops. The generator fills one quadrant of the
// grid with randomly chosen patterns that satisfy the neighbor-compatibility
// tables, then mirrors it fourfold so the finished design has the classical
// symmetry.
//
// # Pipeline
//
//	matrix := propose1D(size, rng)   // pattern ids per cell
//	design := Generate(size, rng)    // dots + sampled curves with layout
//	png, _ := RenderPNG(design, WithTheme(theme))
package kolam

import "math"

// Connection tables for the sixteen patterns. ptDown[p-1] reports whether
// pattern p extends into the cell below; ptRight[p-1] whether it extends
// into the cell to the right.
var (
	ptDown  = [16]int{0, 1, 0, 0, 0, 1, 0, 0, 1, 0, 1, 1, 1, 0, 1, 1}
	ptRight = [16]int{0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0, 1}
)

// Mate tables: given the down/right connection bit of the neighbor above or
// to the left, the set of pattern ids that fit next to it.
var (
	mateDown = [2][]int{
		{2, 3, 5, 6, 9, 10, 12},
		{4, 7, 8, 11, 13, 14, 15, 16},
	}
	mateRight = [2][]int{
		{2, 3, 4, 6, 7, 11, 13},
		{5, 8, 9, 10, 12, 14, 15, 16},
	}
)

// Symmetry inversion tables: hInv[p-1] is the pattern p maps to under a
// horizontal mirror, vInv[p-1] under a vertical mirror.
var (
	hInv = [16]int{1, 2, 5, 4, 3, 9, 8, 7, 6, 10, 11, 12, 15, 14, 13, 16}
	vInv = [16]int{1, 4, 3, 2, 5, 7, 6, 9, 8, 10, 11, 14, 13, 12, 15, 16}
)

// selfInverse returns the ids fixed by the given inversion table.
func selfInverse(inv [16]int) []int {
	var out []int
	for i, v := range inv {
		if v == i+1 {
			out = append(out, i+1)
		}
	}
	return out
}

var (
	hSelf = selfInverse(hInv)
	vSelf = selfInverse(vInv)
)

// intersect returns the elements of a that also appear in b, preserving the
// order of a. Deterministic ordering keeps seeded generation reproducible.
func intersect(a, b []int) []int {
	set := make(map[int]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	var out []int
	for _, v := range a {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}

// HasDown reports whether pattern id extends into the cell below.
func HasDown(id int) bool { return ptDown[id-1] == 1 }

// HasRight reports whether pattern id extends into the cell to the right.
func HasRight(id int) bool { return ptRight[id-1] == 1 }

// patternSamples is the number of points sampled per pattern loop.
const patternSamples = 72

// patternPoints returns the closed loop for pattern id in cell-relative
// coordinates (the cell spans [-0.5, 0.5] on both axes, dot at the origin).
//
// Pattern 1 is the plain circle of radius 0.25. Connected patterns bulge out
// to the cell edge midpoint toward each connected neighbor so adjacent loops
// meet; a small id-dependent scallop keeps the sixteen variants visually
// distinct.
func patternPoints(id int) []Point {
	down := HasDown(id)
	right := HasRight(id)

	pts := make([]Point, 0, patternSamples+1)
	for k := 0; k <= patternSamples; k++ {
		theta := 2 * math.Pi * float64(k) / patternSamples
		r := 0.25
		if down {
			r += bulge(theta, math.Pi/2)
		}
		if right {
			r += bulge(theta, 0)
		}
		if id > 1 {
			r += 0.015 * math.Sin(float64(id)*theta)
		}
		// The loop must stay inside the cell or adjacent loops overlap.
		r = math.Min(r, 0.5)
		pts = append(pts, Point{
			X: r * math.Cos(theta),
			Y: r * math.Sin(theta),
		})
	}
	return pts
}

// bulge raises the loop radius near the given direction so the loop reaches
// the cell boundary (0.5) at the edge midpoint and falls back to the base
// circle within a 60 degree window.
func bulge(theta, center float64) float64 {
	d := angleDistance(theta, center)
	const window = math.Pi / 3
	if d >= window {
		return 0
	}
	c := math.Cos(d * math.Pi / (2 * window))
	return 0.25 * c * c
}

// angleDistance returns the absolute angular distance between two angles.
func angleDistance(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
