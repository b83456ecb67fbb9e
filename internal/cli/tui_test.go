package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kolamstudio/kolamstudio/pkg/canvas"
)

func keyPress(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m DrawModel, keys ...string) DrawModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyPress(k))
		var ok bool
		m, ok = next.(DrawModel)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func newTestModel() DrawModel {
	cv := canvas.New(350, 280, canvas.WithCellEdge(70))
	return NewDrawModel(cv, "out.png")
}

func TestDrawModelPlacesGlyph(t *testing.T) {
	m := newTestModel()
	m = press(t, m, "2", " ")

	shapes := m.canvas.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	if shapes[0].Kind != canvas.KindDot {
		t.Errorf("kind = %v, want dot", shapes[0].Kind)
	}
	// Placement snaps to the cell center under the cursor.
	if shapes[0].X != 35 || shapes[0].Y != 35 {
		t.Errorf("placed at (%v,%v), want (35,35)", shapes[0].X, shapes[0].Y)
	}
}

func TestDrawModelRejectsSecondPlacementInCell(t *testing.T) {
	m := newTestModel()
	m = press(t, m, "2", " ", " ")

	if got := len(m.canvas.Shapes()); got != 1 {
		t.Fatalf("shapes = %d, want 1", got)
	}
	if !m.failed {
		t.Error("second placement should surface the occupied-cell notice")
	}
}

func TestDrawModelFreehandStroke(t *testing.T) {
	m := newTestModel()
	m = press(t, m, "1", "b", "l", "l", "b")

	shapes := m.canvas.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	if shapes[0].Kind != canvas.KindFreehand {
		t.Fatalf("kind = %v, want freehand", shapes[0].Kind)
	}
	if len(shapes[0].Points) != 3 {
		t.Errorf("stroke points = %d, want 3", len(shapes[0].Points))
	}
	if m.stroking {
		t.Error("stroke should be finished")
	}
}

func TestDrawModelGrabAndMove(t *testing.T) {
	m := newTestModel()
	// Place a dot, grab it, move one cell right, drop.
	m = press(t, m, "2", " ", "g", "l", "l", "g")

	shapes := m.canvas.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	if shapes[0].X != 105 || shapes[0].Y != 35 {
		t.Errorf("shape at (%v,%v), want (105,35)", shapes[0].X, shapes[0].Y)
	}
	if m.grabbing {
		t.Error("drag should be finished")
	}
}

func TestDrawModelUndoAndClear(t *testing.T) {
	m := newTestModel()
	m = press(t, m, "2", " ", "l", "l", " ")
	if got := len(m.canvas.Shapes()); got != 2 {
		t.Fatalf("shapes = %d, want 2", got)
	}

	m = press(t, m, "u")
	if got := len(m.canvas.Shapes()); got != 1 {
		t.Errorf("after undo shapes = %d, want 1", got)
	}

	m = press(t, m, "x")
	if got := len(m.canvas.Shapes()); got != 0 {
		t.Errorf("after clear shapes = %d, want 0", got)
	}
}

func TestDrawModelCursorStaysInBounds(t *testing.T) {
	m := newTestModel()
	for range 50 {
		m = press(t, m, "h", "k")
	}
	if m.curX < 0 || m.curY < 0 {
		t.Errorf("cursor escaped top-left: (%v,%v)", m.curX, m.curY)
	}
	for range 50 {
		m = press(t, m, "l", "j")
	}
	if m.curX >= float64(m.canvas.Width()) || m.curY >= float64(m.canvas.Height()) {
		t.Errorf("cursor escaped bottom-right: (%v,%v)", m.curX, m.curY)
	}
}

func TestDrawModelViewShowsShapes(t *testing.T) {
	m := newTestModel()
	m = press(t, m, "5", " ")

	view := m.View()
	if !strings.Contains(view, "★") {
		t.Error("view should show the placed star")
	}
	if !strings.Contains(view, "Kolam Canvas") {
		t.Error("view should show the title")
	}
}
