// Package canvas implements the interactive kolam canvas editor.
//
// A [Canvas] owns the full editor state: an ordered sequence of placed
// shapes, the active tool, an optional in-progress drag session, an optional
// freehand stroke, an optional background image, and grid visibility. All
// mutations happen synchronously through pointer-event methods; there is no
// internal concurrency and no I/O. The only externally observable failure is
// a glyph asset that failed to load, which permanently disables that tool.
//
// # Coordinate model
//
// Pointer coordinates are canvas pixels. Glyph shapes rest on grid cell
// centers: Snap maps any coordinate to the center of its containing cell
// (floor(c/edge)*edge + edge/2). At most one glyph occupies a cell at rest;
// conflicting placements are silently rejected and conflicting drag releases
// revert the shape to its pre-drag position.
//
// # Rendering
//
// Every state change triggers a deterministic full redraw into an offscreen
// raster (fogleman/gg). The one exception is an active freehand stroke,
// which paints line segments incrementally as the pointer moves. EncodePNG
// serializes the current raster without mutating any state.
package canvas

import (
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// Kind identifies a placement tool and the variant of a placed shape.
type Kind string

// Shape kinds. KindFreehand records a stroke; the rest are grid-snapped
// glyph variants.
const (
	KindFreehand Kind = "freehand"
	KindDot      Kind = "dot"
	KindDiamond  Kind = "diamond"
	KindLotus    Kind = "lotus"
	KindStar     Kind = "star"
)

// GlyphKinds lists the glyph variants in palette order.
var GlyphKinds = []Kind{KindDot, KindDiamond, KindLotus, KindStar}

// Default editor parameters.
const (
	// DefaultCellEdge is the grid cell edge length in pixels.
	DefaultCellEdge = 70.0

	// DefaultBrushColor is the initial brush color.
	DefaultBrushColor = "#7c3aed"

	// glyphScale is the shape size relative to the cell edge.
	glyphScale = 0.8

	// strokeWidth is the freehand stroke line width.
	strokeWidth = 3.0
)

// Point is a canvas-pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is a placed glyph or a freehand stroke. Shapes live in an ordered
// sequence: order is draw order and undo order (last appended, first undone).
type Shape struct {
	Kind  Kind    `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`  // bounding square edge; zero for freehand
	Color string  `json:"color"` // hex

	// Points holds the recorded stroke for freehand shapes; nil for glyphs.
	Points []Point `json:"points,omitempty"`
}

// dragSession tracks an in-progress relocation of one existing shape.
// It exists only between PointerDown on a shape and the matching PointerUp.
type dragSession struct {
	index   int
	offsetX float64
	offsetY float64
	origX   float64
	origY   float64
}

// Canvas is the interactive editor. It is not safe for concurrent use: all
// mutations are expected to arrive from a single event loop.
type Canvas struct {
	width    int
	height   int
	cellEdge float64

	shapes      []Shape
	tool        Kind
	brush       string
	gridVisible bool
	background  image.Image

	drag    *dragSession
	drawing bool

	glyphs *Registry
	dc     raster
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithCellEdge sets the grid cell edge length in pixels.
func WithCellEdge(edge float64) Option {
	return func(c *Canvas) { c.cellEdge = edge }
}

// WithBrushColor sets the initial brush color (hex).
func WithBrushColor(hex string) Option {
	return func(c *Canvas) { c.brush = hex }
}

// WithRegistry sets the glyph asset registry. Defaults to the built-in set.
func WithRegistry(r *Registry) Option {
	return func(c *Canvas) { c.glyphs = r }
}

// New creates an empty canvas of the given pixel dimensions with the grid
// visible and the freehand tool active.
func New(width, height int, opts ...Option) *Canvas {
	c := &Canvas{
		width:       width,
		height:      height,
		cellEdge:    DefaultCellEdge,
		tool:        KindFreehand,
		brush:       DefaultBrushColor,
		gridVisible: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.glyphs == nil {
		c.glyphs = NewRegistry()
	}
	c.dc = newRaster(width, height)
	c.Render()
	return c
}

// Snap maps a coordinate to the center of its containing grid cell.
// It is idempotent: Snap(Snap(c)) == Snap(c).
func (c *Canvas) Snap(v float64) float64 {
	return Snap(v, c.cellEdge)
}

// Snap maps v to the center of its containing cell of the given edge length.
func Snap(v, edge float64) float64 {
	return math.Floor(v/edge)*edge + edge/2
}

// PointInShape reports whether p lies inside the shape's bounding square
// (a square of the shape's size centered at its position), boundary inclusive.
// Freehand shapes have no bounding square and never match.
func PointInShape(p Point, s Shape) bool {
	if s.Kind == KindFreehand {
		return false
	}
	half := s.Size / 2
	return math.Abs(p.X-s.X) <= half && math.Abs(p.Y-s.Y) <= half
}

// SelectTool sets the active placement tool. Selecting a glyph whose asset
// is not ready (still loading, or failed) is rejected so that a placement
// can never silently produce a blank shape. Existing shapes are untouched.
// Switching tools ends any active freehand stroke, so a stroke and a drag
// session can never be live at the same time.
func (c *Canvas) SelectTool(kind Kind) error {
	if kind == KindFreehand {
		c.drawing = false
		c.tool = kind
		return nil
	}
	if !c.glyphs.Known(kind) {
		return errors.New(errors.ErrCodeInvalidTool, "unknown tool %q", kind)
	}
	if !c.glyphs.Ready(kind) {
		return errors.New(errors.ErrCodeGlyphUnavailable, "glyph %q is not available", kind)
	}
	c.drawing = false
	c.tool = kind
	return nil
}

// SetBrushColor sets the color used for newly placed shapes and strokes.
func (c *Canvas) SetBrushColor(hex string) error {
	if err := errors.ValidateHexColor(hex); err != nil {
		return err
	}
	c.brush = hex
	return nil
}

// PointerDown handles a pointer press at (x, y).
//
// With the freehand tool, it begins a stroke anchored at (x, y). Otherwise
// it first hit-tests existing shapes from most-recently-added to oldest and
// begins a drag session on the first match. If nothing is hit, it places a
// new glyph of the active kind at the snapped cell center, unless that cell
// is already occupied, in which case nothing happens.
func (c *Canvas) PointerDown(x, y float64) {
	c.drawing = false
	if c.tool == KindFreehand {
		c.drawing = true
		c.shapes = append(c.shapes, Shape{
			Kind:   KindFreehand,
			X:      x,
			Y:      y,
			Color:  c.brush,
			Points: []Point{{X: x, Y: y}},
		})
		return
	}

	// Hit test newest-first so the visually topmost shape wins.
	for i := len(c.shapes) - 1; i >= 0; i-- {
		if PointInShape(Point{X: x, Y: y}, c.shapes[i]) {
			s := c.shapes[i]
			c.drag = &dragSession{
				index:   i,
				offsetX: x - s.X,
				offsetY: y - s.Y,
				origX:   s.X,
				origY:   s.Y,
			}
			return
		}
	}

	sx, sy := c.Snap(x), c.Snap(y)
	if c.occupied(sx, sy, -1) {
		return // cell taken: silent reject
	}
	c.shapes = append(c.shapes, Shape{
		Kind:  c.tool,
		X:     sx,
		Y:     sy,
		Size:  c.cellEdge * glyphScale,
		Color: c.brush,
	})
	c.Render()
}

// PointerMove handles pointer motion at (x, y).
//
// During a freehand stroke it records the point and paints the segment from
// the previous point incrementally (the only non-full-redraw mutation).
// During a drag it moves the shape unsnapped for smooth feedback and redraws.
// Otherwise it is a no-op.
func (c *Canvas) PointerMove(x, y float64) {
	switch {
	case c.drawing:
		idx := len(c.shapes) - 1
		if idx < 0 || c.shapes[idx].Kind != KindFreehand {
			return
		}
		s := &c.shapes[idx]
		last := s.Points[len(s.Points)-1]
		s.Points = append(s.Points, Point{X: x, Y: y})
		c.dc.strokeSegment(last.X, last.Y, x, y, s.Color, strokeWidth)
	case c.drag != nil:
		s := &c.shapes[c.drag.index]
		s.X = x - c.drag.offsetX
		s.Y = y - c.drag.offsetY
		c.Render()
	}
}

// PointerUp ends the active drag session or freehand stroke.
//
// A dragged shape is committed to the snapped cell under its current
// position; if that cell is occupied by another shape it reverts to its
// exact pre-drag position instead. Either way the drag session is cleared.
func (c *Canvas) PointerUp() {
	if c.drag != nil {
		s := &c.shapes[c.drag.index]
		sx, sy := c.Snap(s.X), c.Snap(s.Y)
		if c.occupied(sx, sy, c.drag.index) {
			s.X, s.Y = c.drag.origX, c.drag.origY
		} else {
			s.X, s.Y = sx, sy
		}
		c.drag = nil
		c.Render()
	}
	c.drawing = false
}

// Undo removes the most recently appended shape. No-op on an empty canvas.
func (c *Canvas) Undo() {
	if len(c.shapes) == 0 {
		return
	}
	c.shapes = c.shapes[:len(c.shapes)-1]
	c.Render()
}

// Clear empties the shape sequence, drops the background image, and
// restores grid visibility.
func (c *Canvas) Clear() {
	c.shapes = nil
	c.background = nil
	c.gridVisible = true
	c.drag = nil
	c.drawing = false
	c.Render()
}

// SetBackground replaces the background image and hides the grid. The image
// is stretched to the canvas bounds at render time.
func (c *Canvas) SetBackground(img image.Image) {
	c.background = img
	c.gridVisible = false
	c.Render()
}

// LoadBackground decodes an uploaded image and installs it as the
// background. Decoding failures leave the canvas unchanged.
func (c *Canvas) LoadBackground(r io.Reader) error {
	img, err := imaging.Decode(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidImage, err, "decode background image")
	}
	c.SetBackground(img)
	return nil
}

// SetGridVisible toggles the grid independently of the background flow.
func (c *Canvas) SetGridVisible(v bool) {
	c.gridVisible = v
	c.Render()
}

// occupied reports whether a glyph other than shapes[exclude] rests on the
// cell centered at (cx, cy). Pass exclude=-1 to consider every shape.
func (c *Canvas) occupied(cx, cy float64, exclude int) bool {
	for i, s := range c.shapes {
		if i == exclude || s.Kind == KindFreehand {
			continue
		}
		if c.Snap(s.X) == cx && c.Snap(s.Y) == cy {
			return true
		}
	}
	return false
}

// Shapes returns a copy of the shape sequence in draw order.
func (c *Canvas) Shapes() []Shape {
	out := make([]Shape, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// Tool returns the active tool kind.
func (c *Canvas) Tool() Kind { return c.tool }

// BrushColor returns the current brush color.
func (c *Canvas) BrushColor() string { return c.brush }

// GridVisible reports whether the grid is drawn.
func (c *Canvas) GridVisible() bool { return c.gridVisible }

// HasBackground reports whether a background image is set.
func (c *Canvas) HasBackground() bool { return c.background != nil }

// Dragging reports whether a drag session is active.
func (c *Canvas) Dragging() bool { return c.drag != nil }

// Drawing reports whether a freehand stroke is active.
func (c *Canvas) Drawing() bool { return c.drawing }

// CellEdge returns the grid cell edge length.
func (c *Canvas) CellEdge() float64 { return c.cellEdge }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Registry returns the glyph asset registry.
func (c *Canvas) Registry() *Registry { return c.glyphs }
