package kolam

import (
	"sort"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// Theme is a named color palette for rendering: dot color, line color, and
// background.
type Theme struct {
	Name       string `json:"name"`
	Dots       string `json:"dots"`
	Lines      string `json:"lines"`
	Background string `json:"bg"`
}

// DefaultTheme is used when no theme is requested.
const DefaultTheme = "classic"

// The fixed palette set. White-on-black "classic" mirrors rice flour on
// washed ground; the rest are decorative variants.
var themes = map[string]Theme{
	"classic":  {Name: "classic", Dots: "#ffffff", Lines: "#ffffff", Background: "#000000"},
	"golden":   {Name: "golden", Dots: "#FFD700", Lines: "#FFA500", Background: "#8B0000"},
	"ocean":    {Name: "ocean", Dots: "#00CED1", Lines: "#1E90FF", Background: "#191970"},
	"forest":   {Name: "forest", Dots: "#90EE90", Lines: "#32CD32", Background: "#006400"},
	"sunset":   {Name: "sunset", Dots: "#FF6347", Lines: "#FF4500", Background: "#8B0000"},
	"royal":    {Name: "royal", Dots: "#DDA0DD", Lines: "#9370DB", Background: "#4B0082"},
	"emerald":  {Name: "emerald", Dots: "#50C878", Lines: "#00FF7F", Background: "#013220"},
	"copper":   {Name: "copper", Dots: "#B87333", Lines: "#CD7F32", Background: "#2F1B14"},
	"lavender": {Name: "lavender", Dots: "#E6E6FA", Lines: "#DDA0DD", Background: "#301934"},
	"fire":     {Name: "fire", Dots: "#FF4500", Lines: "#DC143C", Background: "#000000"},
}

// ThemeByName returns the named theme. Unknown names are an error so the
// API surface can reject bad requests; use [DefaultTheme] for a safe choice.
func ThemeByName(name string) (Theme, error) {
	if name == "" {
		name = DefaultTheme
	}
	t, ok := themes[name]
	if !ok {
		return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q", name)
	}
	return t, nil
}

// ThemeNames returns all palette names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
