package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kolamstudio/kolamstudio/pkg/canvas"
	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// Canvas editor styles.
var (
	cellStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	cursorStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Reverse(true)
	gridStyle    = lipgloss.NewStyle().Foreground(colorDim)
	activeStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(colorGray)
	problemStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// toolKeys maps number keys to canvas tools.
var toolKeys = map[string]canvas.Kind{
	"1": canvas.KindFreehand,
	"2": canvas.KindDot,
	"3": canvas.KindDiamond,
	"4": canvas.KindLotus,
	"5": canvas.KindStar,
}

// glyphRunes is how each shape kind appears on the terminal grid.
var glyphRunes = map[canvas.Kind]string{
	canvas.KindDot:     "●",
	canvas.KindDiamond: "◆",
	canvas.KindLotus:   "❀",
	canvas.KindStar:    "★",
}

// brushPalette is the set of stroke colors cycled with [ and ].
var brushPalette = []string{
	canvas.DefaultBrushColor,
	"#dc2626", // red
	"#f59e0b", // amber
	"#16a34a", // green
	"#2563eb", // blue
	"#ffffff", // white
}

// DrawModel is the bubbletea model for the interactive canvas editor.
// The terminal cursor stands in for the pointer: taps, strokes, and drags
// all drive the same pointer operations a mouse would.
type DrawModel struct {
	canvas *canvas.Canvas
	curX   float64 // pointer x in canvas coordinates
	curY   float64 // pointer y in canvas coordinates

	stroking bool // freehand stroke in progress
	grabbing bool // shape drag in progress
	brushIdx int

	output string
	status string
	failed bool // status line shows an error
}

// NewDrawModel creates the editor model for the given canvas.
func NewDrawModel(cv *canvas.Canvas, output string) DrawModel {
	half := cv.CellEdge() / 2
	return DrawModel{
		canvas: cv,
		curX:   half,
		curY:   half,
		output: output,
		status: "ready",
	}
}

func (m DrawModel) Init() tea.Cmd {
	return nil
}

func (m DrawModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "q", "ctrl+c", "esc":
		m.releasePointer()
		return m, tea.Quit

	case "up", "k":
		return m.move(0, -1), nil
	case "down", "j":
		return m.move(0, 1), nil
	case "left", "h":
		return m.move(-1, 0), nil
	case "right", "l":
		return m.move(1, 0), nil

	case "1", "2", "3", "4", "5":
		m.releasePointer()
		kind := toolKeys[s]
		if err := m.canvas.SelectTool(kind); err != nil {
			return m.fail(errors.UserMessage(err)), nil
		}
		return m.note(fmt.Sprintf("tool: %s", kind)), nil

	case " ", "enter":
		return m.tap(), nil
	case "b":
		return m.toggleStroke(), nil
	case "g":
		return m.toggleGrab(), nil

	case "u":
		m.releasePointer()
		m.canvas.Undo()
		return m.note("undo"), nil
	case "x":
		m.releasePointer()
		m.canvas.Clear()
		return m.note("cleared"), nil
	case "G":
		m.canvas.SetGridVisible(!m.canvas.GridVisible())
		return m.note("grid toggled"), nil

	case "[", "]":
		return m.cycleBrush(s == "]"), nil

	case "s":
		return m.save(), nil
	}
	return m, nil
}

// move shifts the pointer by half a cell and forwards the motion when a
// stroke or drag is active.
func (m DrawModel) move(dx, dy int) DrawModel {
	step := m.canvas.CellEdge() / 2
	m.curX = clamp(m.curX+float64(dx)*step, 0, float64(m.canvas.Width()-1))
	m.curY = clamp(m.curY+float64(dy)*step, 0, float64(m.canvas.Height()-1))
	if m.stroking || m.grabbing {
		m.canvas.PointerMove(m.curX, m.curY)
	}
	return m
}

// tap places a glyph at the pointer. With the freehand tool a tap is a
// no-op; strokes use b instead.
func (m DrawModel) tap() DrawModel {
	if m.canvas.Tool() == canvas.KindFreehand {
		return m.fail("freehand tool: press b to start and end a stroke")
	}
	if m.stroking || m.grabbing {
		return m
	}
	before := len(m.canvas.Shapes())
	m.canvas.PointerDown(m.curX, m.curY)
	m.canvas.PointerUp()
	if len(m.canvas.Shapes()) == before {
		// Occupied cell. Placement is silently dropped, so say why.
		return m.fail("cell occupied")
	}
	return m.note("placed")
}

func (m DrawModel) toggleStroke() DrawModel {
	if m.grabbing {
		return m
	}
	if m.canvas.Tool() != canvas.KindFreehand {
		return m.fail("select the freehand tool (1) to draw strokes")
	}
	if m.stroking {
		m.canvas.PointerUp()
		m.stroking = false
		return m.note("stroke finished")
	}
	m.canvas.PointerDown(m.curX, m.curY)
	m.stroking = true
	return m.note("stroke started")
}

func (m DrawModel) toggleGrab() DrawModel {
	if m.stroking {
		return m
	}
	if m.grabbing {
		m.canvas.PointerUp()
		m.grabbing = false
		return m.note("dropped")
	}
	if m.canvas.Tool() == canvas.KindFreehand {
		return m.fail("select a glyph tool to move shapes")
	}
	before := m.canvas.Dragging()
	m.canvas.PointerDown(m.curX, m.curY)
	if !m.canvas.Dragging() || before {
		// Nothing under the pointer: the press placed a glyph instead.
		m.canvas.PointerUp()
		return m.note("placed")
	}
	m.grabbing = true
	return m.note("grabbed, move and press g to drop")
}

func (m DrawModel) cycleBrush(forward bool) DrawModel {
	if forward {
		m.brushIdx = (m.brushIdx + 1) % len(brushPalette)
	} else {
		m.brushIdx = (m.brushIdx + len(brushPalette) - 1) % len(brushPalette)
	}
	if err := m.canvas.SetBrushColor(brushPalette[m.brushIdx]); err != nil {
		return m.fail(errors.UserMessage(err))
	}
	return m.note(fmt.Sprintf("brush: %s", brushPalette[m.brushIdx]))
}

func (m DrawModel) save() DrawModel {
	m.releasePointer()
	f, err := os.Create(m.output)
	if err != nil {
		return m.fail(err.Error())
	}
	defer f.Close()
	if err := m.canvas.EncodePNG(f); err != nil {
		return m.fail(errors.UserMessage(err))
	}
	return m.note(fmt.Sprintf("saved %s", m.output))
}

func (m *DrawModel) releasePointer() {
	if m.stroking || m.grabbing {
		m.canvas.PointerUp()
		m.stroking = false
		m.grabbing = false
	}
}

func (m DrawModel) note(s string) DrawModel {
	m.status, m.failed = s, false
	return m
}

func (m DrawModel) fail(s string) DrawModel {
	m.status, m.failed = s, true
	return m
}

func (m DrawModel) View() string {
	edge := m.canvas.CellEdge()
	cols := int(float64(m.canvas.Width()) / edge)
	rows := int(float64(m.canvas.Height()) / edge)

	// Paint shapes onto the cell grid.
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	for _, s := range m.canvas.Shapes() {
		if s.Kind == canvas.KindFreehand {
			for _, p := range s.Points {
				if r, c := cellIndex(p.Y, edge, rows), cellIndex(p.X, edge, cols); grid[r][c] == "" {
					grid[r][c] = "·"
				}
			}
			continue
		}
		r, c := cellIndex(s.Y, edge, rows), cellIndex(s.X, edge, cols)
		grid[r][c] = glyphRunes[s.Kind]
	}

	curRow := cellIndex(m.curY, edge, rows)
	curCol := cellIndex(m.curX, edge, cols)

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Kolam Canvas"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows move · space place · b stroke · g grab · u undo · x clear · s save · q quit"))
	b.WriteString("\n\n")

	for r := range rows {
		b.WriteString("  ")
		for c := range cols {
			cell := grid[r][c]
			if cell == "" {
				cell = "."
				if !m.canvas.GridVisible() {
					cell = " "
				}
			}
			switch {
			case r == curRow && c == curCol:
				b.WriteString(cursorStyle.Render(cell))
			case grid[r][c] == "":
				b.WriteString(gridStyle.Render(cell))
			default:
				b.WriteString(cellStyle.Render(cell))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	mode := ""
	if m.stroking {
		mode = activeStyle.Render(" drawing")
	}
	if m.grabbing {
		mode = activeStyle.Render(" dragging")
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("  tool %s · brush %s · %d shapes",
		m.canvas.Tool(), m.canvas.BrushColor(), len(m.canvas.Shapes()))))
	b.WriteString(mode)
	b.WriteString("\n")
	if m.failed {
		b.WriteString("  " + problemStyle.Render(m.status))
	} else {
		b.WriteString("  " + StyleDim.Render(m.status))
	}
	b.WriteString("\n")

	return b.String()
}

func cellIndex(v, edge float64, n int) int {
	i := int(v / edge)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
