package canvas

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	return New(560, 560) // 8x8 cells at the default 70px edge
}

func TestSnapFormula(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{73, 105}, // floor(73/70)*70+35
		{5, 35},
		{0, 35},
		{69.9, 35},
		{70, 105},
		{139.9, 105},
		{140, 175},
	}
	for _, tt := range tests {
		if got := Snap(tt.in, 70); got != tt.want {
			t.Errorf("Snap(%v, 70) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSnapIdempotent(t *testing.T) {
	for _, v := range []float64{0, 3, 35, 69, 70, 73, 100, 512.5} {
		once := Snap(v, 70)
		if twice := Snap(once, 70); twice != once {
			t.Errorf("Snap not idempotent at %v: %v != %v", v, twice, once)
		}
		// Always a cell-center coordinate.
		if rem := math.Mod(once-35, 70); rem != 0 {
			t.Errorf("Snap(%v) = %v is not a cell center (rem %v)", v, once, rem)
		}
	}
}

func TestPointInShape(t *testing.T) {
	s := Shape{Kind: KindDot, X: 105, Y: 35, Size: 56}

	inside := []Point{{105, 35}, {77, 35}, {133, 35}, {105, 7}, {105, 63}, {77, 7}}
	for _, p := range inside {
		if !PointInShape(p, s) {
			t.Errorf("PointInShape(%v) = false, want true", p)
		}
	}

	outside := []Point{{76.9, 35}, {133.1, 35}, {105, 6.9}, {105, 63.1}, {0, 0}}
	for _, p := range outside {
		if PointInShape(p, s) {
			t.Errorf("PointInShape(%v) = true, want false", p)
		}
	}

	// Freehand shapes never hit-test.
	stroke := Shape{Kind: KindFreehand, X: 105, Y: 35}
	if PointInShape(Point{105, 35}, stroke) {
		t.Error("freehand shapes should not match hit tests")
	}
}

func TestGlyphPlacementSnapsToCell(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindDot); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}

	c.PointerDown(73, 5)
	c.PointerUp()

	shapes := c.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shape count = %d, want 1", len(shapes))
	}
	if shapes[0].X != 105 || shapes[0].Y != 35 {
		t.Errorf("shape at (%v, %v), want (105, 35)", shapes[0].X, shapes[0].Y)
	}
	if want := 70 * 0.8; shapes[0].Size != want {
		t.Errorf("shape size = %v, want %v", shapes[0].Size, want)
	}
	if shapes[0].Color != DefaultBrushColor {
		t.Errorf("shape color = %q, want %q", shapes[0].Color, DefaultBrushColor)
	}
}

func TestPlacementConflictSilentlyRejected(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindDiamond); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}

	// Both raw coordinates map to the same snapped cell.
	c.PointerDown(73, 5)
	c.PointerUp()
	c.PointerDown(135, 64)
	c.PointerUp()

	if got := len(c.Shapes()); got != 1 {
		t.Errorf("shape count = %d, want 1 (second placement rejected)", got)
	}
}

func TestPointerDownOnShapeStartsDragNotPlacement(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindDot); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(73, 5) // placed at (105, 35)
	c.PointerUp()

	c.PointerDown(110, 30) // inside the shape's bounding square
	if !c.Dragging() {
		t.Fatal("expected drag session after pressing on a shape")
	}
	if got := len(c.Shapes()); got != 1 {
		t.Errorf("shape count = %d, want 1 (no placement while grabbing)", got)
	}
	c.PointerUp()
}

func TestDragCommitsToSnappedCell(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindDot); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(73, 5) // at (105, 35)
	c.PointerUp()

	c.PointerDown(105, 35)
	c.PointerMove(213, 140) // unsnapped while moving
	shapes := c.Shapes()
	if shapes[0].X != 213 || shapes[0].Y != 140 {
		t.Errorf("dragged shape at (%v, %v), want raw (213, 140)", shapes[0].X, shapes[0].Y)
	}
	c.PointerUp()

	shapes = c.Shapes()
	if shapes[0].X != 245 || shapes[0].Y != 175 {
		t.Errorf("released shape at (%v, %v), want snapped (245, 175)", shapes[0].X, shapes[0].Y)
	}
	if c.Dragging() {
		t.Error("drag session should be cleared on release")
	}
}

func TestDragReleaseOntoOccupiedCellReverts(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindDot); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(35, 35) // shape A at (35, 35)
	c.PointerUp()
	c.PointerDown(105, 35) // shape B at (105, 35)
	c.PointerUp()

	// Drag B onto A's cell and release.
	c.PointerDown(105, 35)
	c.PointerMove(40, 38)
	c.PointerUp()

	shapes := c.Shapes()
	if len(shapes) != 2 {
		t.Fatalf("shape count = %d, want 2", len(shapes))
	}
	if shapes[0].X != 35 || shapes[0].Y != 35 {
		t.Errorf("shape A moved to (%v, %v)", shapes[0].X, shapes[0].Y)
	}
	if shapes[1].X != 105 || shapes[1].Y != 35 {
		t.Errorf("shape B at (%v, %v), want reverted (105, 35)", shapes[1].X, shapes[1].Y)
	}
}

func TestUndo(t *testing.T) {
	c := newTestCanvas(t)

	// No-op on empty canvas.
	c.Undo()
	if got := len(c.Shapes()); got != 0 {
		t.Fatalf("shape count after empty undo = %d", got)
	}

	if err := c.SelectTool(KindStar); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	cells := [][2]float64{{35, 35}, {105, 35}, {175, 35}}
	for _, cell := range cells {
		c.PointerDown(cell[0], cell[1])
		c.PointerUp()
	}

	c.Undo()
	shapes := c.Shapes()
	if len(shapes) != 2 {
		t.Fatalf("shape count after undo = %d, want 2", len(shapes))
	}
	// Exactly the last-appended shape is removed.
	if shapes[1].X != 105 {
		t.Errorf("remaining shapes wrong: last at x=%v, want 105", shapes[1].X)
	}

	// N undos empty a sequence of N shapes.
	c.Undo()
	c.Undo()
	if got := len(c.Shapes()); got != 0 {
		t.Errorf("shape count = %d, want 0", got)
	}
}

func TestClearResetsEverything(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindLotus); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(35, 35)
	c.PointerUp()
	c.SetBackground(image.NewRGBA(image.Rect(0, 0, 10, 10)))

	if c.GridVisible() {
		t.Fatal("grid should hide when a background is set")
	}

	c.Clear()
	if got := len(c.Shapes()); got != 0 {
		t.Errorf("shape count after clear = %d", got)
	}
	if c.HasBackground() {
		t.Error("background should be dropped on clear")
	}
	if !c.GridVisible() {
		t.Error("grid should be visible after clear")
	}
}

func TestFreehandStroke(t *testing.T) {
	c := newTestCanvas(t)
	// Freehand is the default tool.
	if c.Tool() != KindFreehand {
		t.Fatalf("default tool = %q, want freehand", c.Tool())
	}

	c.PointerDown(10, 10)
	if !c.Drawing() {
		t.Fatal("stroke should be active after pointer down")
	}
	c.PointerMove(20, 25)
	c.PointerMove(33, 40)
	c.PointerUp()

	if c.Drawing() {
		t.Error("stroke should end on pointer up")
	}
	shapes := c.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shape count = %d, want 1 stroke", len(shapes))
	}
	s := shapes[0]
	if s.Kind != KindFreehand {
		t.Errorf("kind = %q, want freehand", s.Kind)
	}
	if len(s.Points) != 3 {
		t.Errorf("stroke points = %d, want 3", len(s.Points))
	}

	// A stroke is undoable like any other shape.
	c.Undo()
	if got := len(c.Shapes()); got != 0 {
		t.Errorf("shape count after undo = %d", got)
	}
}

func TestFreehandDoesNotOccupyCells(t *testing.T) {
	c := newTestCanvas(t)
	c.PointerDown(35, 35)
	c.PointerMove(40, 40)
	c.PointerUp()

	if err := c.SelectTool(KindDot); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(35, 35)
	c.PointerUp()

	if got := len(c.Shapes()); got != 2 {
		t.Errorf("shape count = %d, want 2 (stroke does not block the cell)", got)
	}
}

func TestSwitchingToolsEndsActiveStroke(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindDot); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(35, 35) // glyph at (35, 35)
	c.PointerUp()

	// Begin a stroke, then switch tools while the pointer is still down.
	if err := c.SelectTool(KindFreehand); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(200, 200)
	if err := c.SelectTool(KindDot); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	if c.Drawing() {
		t.Fatal("stroke should end when the tool changes")
	}

	// Pressing on the existing glyph now starts a drag, and never both.
	c.PointerDown(35, 35)
	if !c.Dragging() {
		t.Fatal("expected drag session on the existing shape")
	}
	if c.Drawing() {
		t.Fatal("stroke and drag session active at once")
	}

	c.PointerMove(108, 38)
	shapes := c.Shapes()
	if shapes[0].X != 108 || shapes[0].Y != 38 {
		t.Errorf("dragged shape at (%v, %v), want (108, 38)", shapes[0].X, shapes[0].Y)
	}
	stroke := shapes[1]
	if stroke.Kind != KindFreehand || len(stroke.Points) != 1 {
		t.Errorf("stroke gained points after tool switch: %d", len(stroke.Points))
	}
	c.PointerUp()
}

func TestSelectToolRejectsUnavailableGlyph(t *testing.T) {
	reg := NewEmptyRegistry()
	reg.Register(KindLotus) // still loading

	c := New(280, 280, WithRegistry(reg))

	err := c.SelectTool(KindLotus)
	if !errors.Is(err, errors.ErrCodeGlyphUnavailable) {
		t.Errorf("SelectTool on loading asset: err = %v, want UNAVAILABLE_GLYPH", err)
	}

	reg.MarkFailed(KindLotus)
	err = c.SelectTool(KindLotus)
	if !errors.Is(err, errors.ErrCodeGlyphUnavailable) {
		t.Errorf("SelectTool on failed asset: err = %v, want UNAVAILABLE_GLYPH", err)
	}

	err = c.SelectTool(Kind("spiral"))
	if !errors.Is(err, errors.ErrCodeInvalidTool) {
		t.Errorf("SelectTool on unknown kind: err = %v, want INVALID_TOOL", err)
	}

	// The failed tool never became active.
	if c.Tool() != KindFreehand {
		t.Errorf("tool = %q, want freehand", c.Tool())
	}
}

func TestGlyphAssetLoadFailureDisablesToolPermanently(t *testing.T) {
	reg := NewEmptyRegistry()
	reg.Register(KindStar)

	err := reg.LoadImage(KindStar, strings.NewReader("not an image"))
	if err == nil {
		t.Fatal("LoadImage should fail on garbage input")
	}
	if reg.State(KindStar) != StateFailed {
		t.Errorf("state = %v, want StateFailed", reg.State(KindStar))
	}
	if reg.Ready(KindStar) {
		t.Error("failed asset must not report ready")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "star.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode asset: %v", err)
	}
	f.Close()

	reg := NewEmptyRegistry()
	if err := reg.LoadFile(KindStar, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reg.Ready(KindStar) {
		t.Error("loaded asset should be ready")
	}
}

func TestLoadFileRejectsBadAssets(t *testing.T) {
	reg := NewEmptyRegistry()

	err := reg.LoadFile(KindStar, "glyph.svg")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unsupported format: err = %v, want UNSUPPORTED", err)
	}

	err = reg.LoadFile(KindStar, "weird..name.png")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("dotted name: err = %v, want INVALID_INPUT", err)
	}

	err = reg.LoadFile(KindStar, filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want NOT_FOUND_FILE", err)
	}
	if reg.State(KindStar) != StateFailed {
		t.Errorf("state after open failure = %v, want StateFailed", reg.State(KindStar))
	}
}

func TestSetBrushColor(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SetBrushColor("#FFD700"); err != nil {
		t.Fatalf("SetBrushColor: %v", err)
	}
	if c.BrushColor() != "#FFD700" {
		t.Errorf("brush = %q", c.BrushColor())
	}
	if err := c.SetBrushColor("gold"); err == nil {
		t.Error("SetBrushColor should reject non-hex input")
	}
}

func TestEncodePNG(t *testing.T) {
	c := newTestCanvas(t)
	if err := c.SelectTool(KindDiamond); err != nil {
		t.Fatalf("SelectTool: %v", err)
	}
	c.PointerDown(35, 35)
	c.PointerUp()

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	// PNG magic bytes.
	if !bytes.HasPrefix(buf.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("EncodePNG output is not a PNG")
	}

	// Export is a pure read.
	if got := len(c.Shapes()); got != 1 {
		t.Errorf("shape count changed by export: %d", got)
	}
}
