package canvas

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// AssetState describes the lifecycle of a glyph's visual asset.
type AssetState int

const (
	// StateLoading means the asset has been registered but not yet decoded.
	StateLoading AssetState = iota

	// StateReady means the asset decoded successfully and the tool is usable.
	StateReady

	// StateFailed means decoding failed; the tool stays disabled permanently.
	StateFailed
)

// glyphDrawer paints one glyph variant centered at (x, y) with the given
// bounding size and color.
type glyphDrawer func(dc *gg.Context, x, y, size float64, hexColor string)

type glyphAsset struct {
	state AssetState
	draw  glyphDrawer
}

// Registry tracks the visual asset behind each glyph kind. A glyph tool can
// only be selected once its asset is ready; an asset that fails to decode
// leaves the tool disabled rather than ever producing a blank shape.
//
// The built-in glyph set (dot, diamond, lotus, star) is vector-drawn and
// ready immediately. External raster assets can replace or extend the set
// via Register + LoadImage.
type Registry struct {
	mu     sync.RWMutex
	assets map[Kind]*glyphAsset
}

// NewRegistry creates a registry with the built-in glyph set ready.
func NewRegistry() *Registry {
	r := &Registry{assets: make(map[Kind]*glyphAsset)}
	r.assets[KindDot] = &glyphAsset{state: StateReady, draw: drawDotGlyph}
	r.assets[KindDiamond] = &glyphAsset{state: StateReady, draw: drawDiamondGlyph}
	r.assets[KindLotus] = &glyphAsset{state: StateReady, draw: drawLotusGlyph}
	r.assets[KindStar] = &glyphAsset{state: StateReady, draw: drawStarGlyph}
	return r
}

// NewEmptyRegistry creates a registry with no assets. Every glyph must be
// registered and loaded before use. Intended for asset-pack setups and tests.
func NewEmptyRegistry() *Registry {
	return &Registry{assets: make(map[Kind]*glyphAsset)}
}

// Register announces a glyph kind whose asset is about to load. The tool is
// disabled until LoadImage succeeds for the kind.
func (r *Registry) Register(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[kind]; !ok {
		r.assets[kind] = &glyphAsset{state: StateLoading}
	}
}

// LoadImage decodes a raster asset for the kind and marks it ready. A decode
// failure marks the asset failed, which disables the tool permanently.
func (r *Registry) LoadImage(kind Kind, rd io.Reader) error {
	img, err := imaging.Decode(rd)

	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[kind]
	if !ok {
		a = &glyphAsset{}
		r.assets[kind] = a
	}
	if err != nil {
		a.state = StateFailed
		a.draw = nil
		return errors.Wrap(errors.ErrCodeInvalidImage, err, "decode glyph asset %q", kind)
	}
	a.state = StateReady
	a.draw = imageGlyphDrawer(img)
	return nil
}

// assetExtensions lists the raster formats LoadFile accepts.
var assetExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// LoadFile loads an external raster asset for the kind from a file. The file
// must have a plain basename (no path separators or traversal) and a
// supported raster extension. Open and decode failures mark the asset
// failed, which disables the tool.
func (r *Registry) LoadFile(kind Kind, path string) error {
	if err := errors.ValidateAssetName(filepath.Base(path)); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !assetExtensions[ext] {
		return errors.New(errors.ErrCodeUnsupported, "unsupported glyph asset format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		r.MarkFailed(kind)
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open glyph asset %s", path)
	}
	defer f.Close()
	return r.LoadImage(kind, f)
}

// MarkFailed forces the asset into the failed state (asset fetch errors that
// happen before any bytes reach LoadImage).
func (r *Registry) MarkFailed(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[kind]
	if !ok {
		a = &glyphAsset{}
		r.assets[kind] = a
	}
	a.state = StateFailed
	a.draw = nil
}

// Known reports whether the kind has ever been registered.
func (r *Registry) Known(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.assets[kind]
	return ok
}

// Ready reports whether the kind's asset is loaded and usable.
func (r *Registry) Ready(kind Kind) bool {
	return r.State(kind) == StateReady
}

// State returns the asset state for the kind. Unknown kinds report failed.
func (r *Registry) State(kind Kind) AssetState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.assets[kind]; ok {
		return a.state
	}
	return StateFailed
}

// drawer returns the paint function for a ready kind.
func (r *Registry) drawer(kind Kind) (glyphDrawer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[kind]
	if !ok || a.state != StateReady || a.draw == nil {
		return nil, false
	}
	return a.draw, true
}

// imageGlyphDrawer wraps a raster asset into a drawer that scales it to the
// shape's bounding square.
func imageGlyphDrawer(img image.Image) glyphDrawer {
	return func(dc *gg.Context, x, y, size float64, _ string) {
		scaled := imaging.Fit(img, int(size), int(size), imaging.Lanczos)
		dc.DrawImageAnchored(scaled, int(x), int(y), 0.5, 0.5)
	}
}

// Built-in vector glyphs. All draw within the bounding square of edge size
// centered at (x, y), filled with the shape color.

func drawDotGlyph(dc *gg.Context, x, y, size float64, hexColor string) {
	dc.SetHexColor(hexColor)
	dc.DrawCircle(x, y, size/2*0.55)
	dc.Fill()
	dc.DrawCircle(x, y, size/2*0.85)
	dc.SetLineWidth(2)
	dc.Stroke()
}

func drawDiamondGlyph(dc *gg.Context, x, y, size float64, hexColor string) {
	half := size / 2
	dc.SetHexColor(hexColor)
	dc.MoveTo(x, y-half)
	dc.LineTo(x+half, y)
	dc.LineTo(x, y+half)
	dc.LineTo(x-half, y)
	dc.ClosePath()
	dc.Fill()
}

func drawLotusGlyph(dc *gg.Context, x, y, size float64, hexColor string) {
	half := size / 2
	dc.SetHexColor(hexColor)
	// Four petals around the center, one per axis.
	for _, d := range [][2]float64{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
		tipX, tipY := x+d[0]*half, y+d[1]*half
		// Perpendicular direction for the petal's waist control points.
		px, py := -d[1], d[0]
		dc.MoveTo(x, y)
		dc.QuadraticTo(x+px*half*0.45, y+py*half*0.45, tipX, tipY)
		dc.QuadraticTo(x-px*half*0.45, y-py*half*0.45, x, y)
		dc.ClosePath()
		dc.Fill()
	}
	dc.DrawCircle(x, y, half*0.15)
	dc.Fill()
}

func drawStarGlyph(dc *gg.Context, x, y, size float64, hexColor string) {
	outer := size / 2
	inner := outer * 0.45
	dc.SetHexColor(hexColor)
	points := starPoints(x, y, outer, inner, 5)
	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.Fill()
}
