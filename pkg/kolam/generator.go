package kolam

import (
	"fmt"
	"math/rand/v2"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// CellSpacing is the distance between neighboring dots in design units.
const CellSpacing = 60.0

// DefaultSeed is the seed used when callers want reproducible output but
// don't care which design they get.
const DefaultSeed = uint64(42)

// Point is a coordinate in design units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dot is one pulli (grid dot) of the design.
type Dot struct {
	ID     string  `json:"id"`
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Curve is one sampled loop of the design.
type Curve struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
}

// Design is a complete generated kolam: the dot grid, the loops around the
// dots, the pattern-id matrix they were derived from, and the layout bounds.
type Design struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Dots   []Dot   `json:"dots"`
	Curves []Curve `json:"curves"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Matrix [][]int `json:"matrix"`
}

// NewRand returns a seeded random source for reproducible generation.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Generate produces a kolam design of the given grid size. Size must lie in
// [errors.MinKolamSize, errors.MaxKolamSize]. The same rng state always
// yields the same design.
func Generate(size int, rng *rand.Rand) (*Design, error) {
	if err := errors.ValidateKolamSize(size); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(DefaultSeed)
	}

	matrix := propose1D(size, rng)
	m := len(matrix)
	n := len(matrix[0])

	// Flip vertically before layout, matching the classical draw order
	// (row 0 of the matrix is the bottom row of the design).
	flipped := make([][]int, m)
	for i := range flipped {
		flipped[i] = matrix[m-1-i]
	}

	d := &Design{
		ID:     fmt.Sprintf("kolam-%dx%d", m, n),
		Name:   fmt.Sprintf("Kolam %dx%d", m, n),
		Width:  (float64(n) + 1) * CellSpacing,
		Height: (float64(m) + 1) * CellSpacing,
		Matrix: flipped,
	}

	for i := range m {
		for j := range n {
			id := flipped[i][j]
			if id <= 0 {
				continue
			}
			cx := (float64(j) + 1) * CellSpacing
			cy := (float64(i) + 1) * CellSpacing

			d.Dots = append(d.Dots, Dot{
				ID:     fmt.Sprintf("dot-%d-%d", i, j),
				Center: Point{X: cx, Y: cy},
				Radius: 3,
			})

			loop := patternPoints(id)
			pts := make([]Point, len(loop))
			for k, p := range loop {
				pts[k] = Point{
					X: cx + p.X*CellSpacing,
					Y: cy + p.Y*CellSpacing,
				}
			}
			d.Curves = append(d.Curves, Curve{
				ID:     fmt.Sprintf("curve-%d-%d", i, j),
				Points: pts,
			})
		}
	}

	return d, nil
}

// propose1D fills one quadrant of the pattern matrix with compatible random
// patterns and assembles the full grid by fourfold mirror symmetry. The
// returned matrix is size x size (odd sizes share the middle row/column).
func propose1D(size int, rng *rand.Rand) [][]int {
	odd := size%2 != 0
	hp := size / 2

	mat := onesMatrix(hp + 2)

	// Fill the working quadrant. Each cell must mate with the pattern above
	// (down-connection bit) and to the left (right-connection bit).
	for i := 1; i <= hp; i++ {
		for j := 1; j <= hp; j++ {
			valids := intersect(
				mateDown[ptDown[mat[i-1][j]-1]],
				mateRight[ptRight[mat[i][j-1]-1]],
			)
			mat[i][j] = choose(rng, valids)
		}
	}

	// Border conditions.
	mat[hp+1][0] = 1
	mat[0][hp+1] = 1

	// Bottom row must additionally be fixed under vertical mirroring so the
	// lower half joins seamlessly.
	for j := 1; j <= hp; j++ {
		valids := intersect(
			mateDown[ptDown[mat[hp][j]-1]],
			mateRight[ptRight[mat[hp+1][j-1]-1]],
		)
		valids = intersect(valids, vSelf)
		mat[hp+1][j] = choose(rng, valids)
	}

	// Right column must be fixed under horizontal mirroring.
	for i := 1; i <= hp; i++ {
		valids := intersect(
			mateDown[ptDown[mat[i-1][hp+1]-1]],
			mateRight[ptRight[mat[i][hp]-1]],
		)
		valids = intersect(valids, hSelf)
		mat[i][hp+1] = choose(rng, valids)
	}

	// Corner element is fixed under both mirrorings.
	valids := intersect(
		mateDown[ptDown[mat[hp][hp+1]-1]],
		mateRight[ptRight[mat[hp+1][hp]-1]],
	)
	valids = intersect(valids, hSelf)
	valids = intersect(valids, vSelf)
	mat[hp+1][hp+1] = choose(rng, valids)

	// Extract the core quadrant and derive the three mirrored quadrants.
	mat1 := make([][]int, hp)
	for i := range mat1 {
		mat1[i] = make([]int, hp)
		copy(mat1[i], mat[i+1][1:hp+1])
	}

	mat2 := make([][]int, hp) // horizontal mirror of mat1
	mat3 := make([][]int, hp) // vertical mirror of mat1
	mat4 := make([][]int, hp) // both mirrors
	for i := range hp {
		mat2[i] = make([]int, hp)
		mat3[i] = make([]int, hp)
		mat4[i] = make([]int, hp)
		for j := range hp {
			mat2[i][j] = hInv[mat1[i][hp-1-j]-1]
			mat3[i][j] = vInv[mat1[hp-1-i][j]-1]
		}
	}
	for i := range hp {
		for j := range hp {
			mat4[i][j] = vInv[mat2[hp-1-i][j]-1]
		}
	}

	if odd {
		full := onesMatrix(2*hp + 1)
		for i := range hp {
			for j := range hp {
				full[i][j] = mat1[i][j]
				full[i][hp+1+j] = mat2[i][j]
				full[hp+1+i][j] = mat3[i][j]
				full[hp+1+i][hp+1+j] = mat4[i][j]
			}
		}
		// Middle column and row come from the self-inverse border cells.
		for i := range hp {
			full[i][hp] = mat[i+1][hp+1]
			full[hp+1+i][hp] = vInv[mat[hp-i][hp+1]-1]
		}
		for j := range hp {
			full[hp][j] = mat[hp+1][j+1]
			full[hp][hp+1+j] = hInv[mat[hp+1][hp-j]-1]
		}
		full[hp][hp] = mat[hp+1][hp+1]
		return full
	}

	full := onesMatrix(2 * hp)
	for i := range hp {
		for j := range hp {
			full[i][j] = mat1[i][j]
			full[i][hp+j] = mat2[i][j]
			full[hp+i][j] = mat3[i][j]
			full[hp+i][hp+j] = mat4[i][j]
		}
	}
	return full
}

// choose picks a random element, falling back to pattern 1 (the plain
// circle, compatible with itself) when the candidate set is empty.
func choose(rng *rand.Rand, valids []int) int {
	if len(valids) == 0 {
		return 1
	}
	return valids[rng.IntN(len(valids))]
}

func onesMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
		for j := range m[i] {
			m[i][j] = 1
		}
	}
	return m
}
