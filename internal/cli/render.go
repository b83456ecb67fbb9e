package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	kio "github.com/kolamstudio/kolamstudio/pkg/io"
	"github.com/kolamstudio/kolamstudio/pkg/kolam"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string // output PNG path
	theme  string // color palette name
	width  int    // image width in pixels
	height int    // image height in pixels
	smooth bool   // smooth curves with quadratic segments
}

// renderCommand creates the render command for rasterizing an exported
// design JSON. Re-rendering a saved design lets users try themes and
// dimensions without regenerating the pattern.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		theme:  kolam.DefaultTheme,
		width:  kolam.DefaultImageWidth,
		height: kolam.DefaultImageHeight,
		smooth: true,
	}

	cmd := &cobra.Command{
		Use:   "render [design.json]",
		Short: "Render an exported design JSON to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from input)")
	cmd.Flags().StringVarP(&opts.theme, "theme", "t", opts.theme, "color theme (see 'kolamstudio themes')")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "image height in pixels")
	cmd.Flags().BoolVar(&opts.smooth, "smooth", opts.smooth, "smooth curves")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	theme, err := kolam.ThemeByName(opts.theme)
	if err != nil {
		return err
	}

	design, err := kio.ImportJSON(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded design %s: %d dots, %d curves", design.ID, len(design.Dots), len(design.Curves))

	renderOpts := []kolam.RenderOption{
		kolam.WithTheme(theme),
		kolam.WithDimensions(opts.width, opts.height),
	}
	if !opts.smooth {
		renderOpts = append(renderOpts, kolam.WithoutSmoothing())
	}

	p := newProgress(logger)
	data, err := kolam.RenderPNG(design, renderOpts...)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Rendered %s", design.ID))

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	printSuccess("Rendered design (%s theme)", theme.Name)
	printFile(output)
	return nil
}
