package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kolamstudio/kolamstudio/pkg/canvas"
	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	output string   // PNG written on save
	width  int      // canvas width in pixels
	height int      // canvas height in pixels
	cell   float64  // grid cell edge length
	glyphs []string // kind=file overrides for glyph assets
}

// drawCommand creates the draw command opening the interactive canvas
// editor in the terminal.
func (c *CLI) drawCommand() *cobra.Command {
	opts := drawOpts{
		output: "canvas.png",
		width:  700,
		height: 490,
		cell:   canvas.DefaultCellEdge,
	}

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Open the interactive canvas editor",
		Long: `Draw opens a terminal canvas editor. Glyphs snap to grid cells the
way they do in the web editor: pick a tool with 1-5, place with space,
grab and move shapes with g, draw freehand strokes with b, and save the
rendered PNG with s.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadGlyphOverrides(opts.glyphs)
			if err != nil {
				return err
			}

			cv := canvas.New(opts.width, opts.height,
				canvas.WithCellEdge(opts.cell),
				canvas.WithRegistry(registry),
			)
			model := NewDrawModel(cv, opts.output)

			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "PNG file written on save")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "canvas height in pixels")
	cmd.Flags().Float64Var(&opts.cell, "cell", opts.cell, "grid cell edge length")
	cmd.Flags().StringArrayVar(&opts.glyphs, "glyph", nil, "replace a glyph asset, e.g. --glyph star=mystar.png")

	return cmd
}

// loadGlyphOverrides builds the glyph registry for a draw session: the
// built-in set, with any kind=file overrides loaded from disk.
func loadGlyphOverrides(specs []string) (*canvas.Registry, error) {
	registry := canvas.NewRegistry()
	for _, spec := range specs {
		kind, path, ok := strings.Cut(spec, "=")
		if !ok || kind == "" || path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "glyph override %q must be kind=file", spec)
		}
		if err := registry.LoadFile(canvas.Kind(kind), path); err != nil {
			return nil, fmt.Errorf("glyph %s: %w", kind, err)
		}
	}
	return registry, nil
}
