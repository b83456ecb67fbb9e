package kolam

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// Render defaults.
const (
	DefaultImageWidth  = 800
	DefaultImageHeight = 800
	defaultLineWidth   = 2.0
	renderPadding      = 20.0
)

// RenderOption configures PNG rendering.
type RenderOption func(*renderer)

type renderer struct {
	theme     Theme
	width     int
	height    int
	lineWidth float64
	smooth    bool
}

// WithTheme sets the color palette (default: classic).
func WithTheme(t Theme) RenderOption {
	return func(r *renderer) { r.theme = t }
}

// WithDimensions sets the output image size in pixels.
func WithDimensions(width, height int) RenderOption {
	return func(r *renderer) { r.width = width; r.height = height }
}

// WithLineWidth sets the curve stroke width in design units.
func WithLineWidth(w float64) RenderOption {
	return func(r *renderer) { r.lineWidth = w }
}

// WithoutSmoothing draws curves as straight polylines instead of smoothed
// quadratic segments.
func WithoutSmoothing() RenderOption {
	return func(r *renderer) { r.smooth = false }
}

// RenderPNG rasterizes the design and returns PNG bytes. Curves are drawn
// first, dots on top, matching the traditional look of powder lines looping
// around the pulli.
func RenderPNG(d *Design, opts ...RenderOption) ([]byte, error) {
	r := renderer{
		width:     DefaultImageWidth,
		height:    DefaultImageHeight,
		lineWidth: defaultLineWidth,
		smooth:    true,
	}
	r.theme, _ = ThemeByName(DefaultTheme)
	for _, opt := range opts {
		opt(&r)
	}
	if r.width <= 0 || r.height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image dimensions must be positive, got %dx%d", r.width, r.height)
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetHexColor(r.theme.Background)
	dc.Clear()

	// Fit the design into the frame with uniform scale and padding.
	scaleX := (float64(r.width) - 2*renderPadding) / d.Width
	scaleY := (float64(r.height) - 2*renderPadding) / d.Height
	scale := min(scaleX, scaleY)
	offsetX := (float64(r.width) - d.Width*scale) / 2
	offsetY := (float64(r.height) - d.Height*scale) / 2

	tx := func(p Point) (float64, float64) {
		return offsetX + p.X*scale, offsetY + p.Y*scale
	}

	dc.SetHexColor(r.theme.Lines)
	dc.SetLineWidth(r.lineWidth * scale)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for _, curve := range d.Curves {
		if len(curve.Points) < 2 {
			continue
		}
		drawCurve(dc, curve.Points, tx, r.smooth)
		dc.Stroke()
	}

	dc.SetHexColor(r.theme.Dots)
	for _, dot := range d.Dots {
		x, y := tx(dot.Center)
		dc.DrawCircle(x, y, dot.Radius*scale)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode kolam image")
	}
	return buf.Bytes(), nil
}

// drawCurve traces the points as a path. With smoothing, each interior
// point becomes the endpoint of a quadratic segment whose control point is
// the midpoint between it and its predecessor, which rounds off the sampled
// polyline.
func drawCurve(dc *gg.Context, points []Point, tx func(Point) (float64, float64), smooth bool) {
	x0, y0 := tx(points[0])
	dc.MoveTo(x0, y0)

	if !smooth || len(points) == 2 {
		for _, p := range points[1:] {
			x, y := tx(p)
			dc.LineTo(x, y)
		}
		return
	}

	for i := 1; i < len(points); i++ {
		x, y := tx(points[i])
		if i == len(points)-1 {
			dc.LineTo(x, y)
			continue
		}
		px, py := tx(points[i-1])
		dc.QuadraticTo((px+x)/2, (py+y)/2, x, y)
	}
}
