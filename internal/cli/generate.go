package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolamstudio/kolamstudio/pkg/cache"
	kio "github.com/kolamstudio/kolamstudio/pkg/io"
	"github.com/kolamstudio/kolamstudio/pkg/kolam"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	size    int    // dot grid size (NxN)
	theme   string // color palette name
	seed    uint64 // random seed; 0 means pick one
	output  string // output PNG path
	width   int    // image width in pixels
	height  int    // image height in pixels
	smooth  bool   // smooth curves with quadratic segments
	noCache bool   // bypass the render cache
	design  string // optional design JSON export path
}

// generateCommand creates the generate command for rendering kolam designs.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{
		size:   7,
		theme:  kolam.DefaultTheme,
		width:  kolam.DefaultImageWidth,
		height: kolam.DefaultImageHeight,
		smooth: true,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a kolam design and render it to PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.size, "size", "s", opts.size, "dot grid size (NxN)")
	cmd.Flags().StringVarP(&opts.theme, "theme", "t", opts.theme, "color theme (see 'kolamstudio themes')")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible designs")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default kolam_<size>x<size>.png)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "image height in pixels")
	cmd.Flags().BoolVar(&opts.smooth, "smooth", opts.smooth, "smooth curves")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	cmd.Flags().StringVar(&opts.design, "design", "", "also export the design as JSON to this path")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	theme, err := kolam.ThemeByName(opts.theme)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = fmt.Sprintf("kolam_%dx%d.png", opts.size, opts.size)
	}

	seeded := opts.seed != 0
	seed := opts.seed
	if !seeded {
		seed = rand.Uint64()
	}

	// Seeded renders are deterministic, so they can come from the cache.
	store, err := newCache(opts.noCache || !seeded)
	if err != nil {
		return err
	}
	defer store.Close()

	keyer := cache.NewDefaultKeyer()
	key := keyer.RenderKey(cache.RenderKeyOpts{
		Size:   opts.size,
		Theme:  theme.Name,
		Seed:   seed,
		Width:  opts.width,
		Height: opts.height,
	})

	// A JSON export needs the full design, which the cache does not hold.
	if seeded && opts.design == "" {
		if data, ok, _ := store.Get(ctx, key); ok {
			c.Logger.Debug("render cache hit", "key", key)
			return writeOutput(output, data)
		}
	}

	p := newProgress(c.Logger)
	design, err := kolam.Generate(opts.size, kolam.NewRand(seed))
	if err != nil {
		return err
	}
	c.Logger.Debugf("Generated design: %d dots, %d curves", len(design.Dots), len(design.Curves))

	renderOpts := []kolam.RenderOption{
		kolam.WithTheme(theme),
		kolam.WithDimensions(opts.width, opts.height),
	}
	if !opts.smooth {
		renderOpts = append(renderOpts, kolam.WithoutSmoothing())
	}
	data, err := kolam.RenderPNG(design, renderOpts...)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Rendered %dx%d design", opts.size, opts.size))

	if seeded {
		if err := store.Set(ctx, key, data, cache.TTLRender); err != nil {
			c.Logger.Warn("cache render", "err", err)
		}
	}

	if err := writeOutput(output, data); err != nil {
		return err
	}
	printSuccess("Generated kolam (%s theme, seed %d)", theme.Name, seed)
	printFile(output)

	if opts.design != "" {
		if err := kio.ExportJSON(design, opts.design); err != nil {
			return err
		}
		printFile(opts.design)
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// themesCommand creates the themes command listing available palettes.
func (c *CLI) themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available color themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range kolam.ThemeNames() {
				theme, err := kolam.ThemeByName(name)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%-10s dots %s  lines %s  bg %s",
					name, theme.Dots, theme.Lines, theme.Background)
				if name == kolam.DefaultTheme {
					line += "  (default)"
				}
				fmt.Println(strings.TrimRight(line, " "))
			}
			return nil
		},
	}
}
