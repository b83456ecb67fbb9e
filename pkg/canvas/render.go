package canvas

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
	"github.com/kolamstudio/kolamstudio/pkg/observability"
)

const (
	canvasBackground = "#ffffff"
	gridLineColor    = "#e5e7eb"
	gridLineWidth    = 1.0
)

// raster is the offscreen drawing surface. Wrapping *gg.Context keeps the
// incremental freehand path in one place.
type raster struct {
	dc *gg.Context
}

func newRaster(width, height int) raster {
	return raster{dc: gg.NewContext(width, height)}
}

// strokeSegment paints one freehand line segment. This is the only
// incremental (non-full-redraw) mutation of the surface.
func (r raster) strokeSegment(x1, y1, x2, y2 float64, hexColor string, width float64) {
	r.dc.SetHexColor(hexColor)
	r.dc.SetLineWidth(width)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

// Render performs a deterministic full redraw: clear, background image (if
// set) stretched to the canvas bounds, grid (if visible), then all shapes in
// sequence order with a currently dragged shape painted last so it stays on
// top while moving.
func (c *Canvas) Render() {
	dc := c.dc.dc

	dc.SetHexColor(canvasBackground)
	dc.Clear()

	if c.background != nil {
		stretched := imaging.Resize(c.background, c.width, c.height, imaging.Lanczos)
		dc.DrawImage(stretched, 0, 0)
	}

	if c.gridVisible {
		c.drawGrid(dc)
	}

	dragIdx := -1
	if c.drag != nil {
		dragIdx = c.drag.index
	}
	for i, s := range c.shapes {
		if i == dragIdx {
			continue
		}
		c.drawShape(dc, s)
	}
	if dragIdx >= 0 {
		c.drawShape(dc, c.shapes[dragIdx])
	}
}

func (c *Canvas) drawGrid(dc *gg.Context) {
	dc.SetHexColor(gridLineColor)
	dc.SetLineWidth(gridLineWidth)
	for x := c.cellEdge; x < float64(c.width); x += c.cellEdge {
		dc.DrawLine(x, 0, x, float64(c.height))
		dc.Stroke()
	}
	for y := c.cellEdge; y < float64(c.height); y += c.cellEdge {
		dc.DrawLine(0, y, float64(c.width), y)
		dc.Stroke()
	}
}

func (c *Canvas) drawShape(dc *gg.Context, s Shape) {
	if s.Kind == KindFreehand {
		if len(s.Points) < 2 {
			return
		}
		dc.SetHexColor(s.Color)
		dc.SetLineWidth(strokeWidth)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		dc.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()
		return
	}

	draw, ok := c.glyphs.drawer(s.Kind)
	if !ok {
		// Placement is gated on asset readiness, so this only happens if an
		// asset was replaced after shapes were placed. Skip rather than
		// paint a blank.
		return
	}
	draw(dc, s.X, s.Y, s.Size, s.Color)
}

// EncodePNG serializes the current canvas pixels as PNG. This is a pure read
// of the rendered surface; no editor state changes.
func (c *Canvas) EncodePNG(w io.Writer) error {
	start := time.Now()
	ctx := context.Background()
	observability.Studio().OnExportStart(ctx, len(c.shapes))

	cw := &countingWriter{w: w}
	err := c.dc.dc.EncodePNG(cw)
	observability.Studio().OnExportComplete(ctx, len(c.shapes), cw.n, time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode canvas snapshot")
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += n
	return n, err
}

// starPoints returns the outline of an n-pointed star centered at (x, y),
// starting at the top point and alternating outer/inner radii.
func starPoints(x, y, outer, inner float64, n int) []Point {
	points := make([]Point, 0, 2*n)
	for i := range 2 * n {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/float64(n)
		points = append(points, Point{
			X: x + r*math.Cos(angle),
			Y: y + r*math.Sin(angle),
		})
	}
	return points
}
