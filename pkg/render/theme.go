package render

import "strings"

// Theme represents a color theme for chart artifacts.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds the chart styling values of a theme.
type ThemeConfig struct {
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// Palette colors series that carry no color of their own, cycling.
	Palette []string
	// Options maps project-board option colors (GREEN, RED, ...) to hex values.
	Options map[string]string
}

// GetThemeConfig returns the configuration for a given theme. Unknown themes fall back to light.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// ParseTheme maps a configured theme name to a Theme, defaulting to light.
func ParseTheme(name string) Theme {
	if strings.EqualFold(strings.TrimSpace(name), string(ThemeDark)) {
		return ThemeDark
	}

	return ThemeLight
}

// Color resolves a series color: a hex value is used as is, a board option
// color name is mapped, and anything else falls back to the palette slot.
func (t ThemeConfig) Color(name string, slot int) string {
	if strings.HasPrefix(name, "#") {
		return name
	}

	if hex, ok := t.Options[strings.ToUpper(name)]; ok {
		return hex
	}

	if len(t.Palette) == 0 {
		return ""
	}

	return t.Palette[slot%len(t.Palette)]
}

var lightTheme = ThemeConfig{
	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4", // stone-200.
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c", // stone-700.
	ChartTextMuted:  "#78716c", // stone-500.

	Palette: []string{
		"#a16207", // amber-700.
		"#0369a1", // sky-700.
		"#4d7c0f", // lime-700.
		"#7c3aed", // violet-600.
		"#be185d", // pink-700.
		"#0891b2", // cyan-600.
		"#c2410c", // orange-700.
		"#4338ca", // indigo-700.
	},
	Options: map[string]string{
		"GRAY":   "#78716c",
		"BLUE":   "#2563eb",
		"GREEN":  "#16a34a",
		"YELLOW": "#ca8a04",
		"ORANGE": "#ea580c",
		"RED":    "#dc2626",
		"PINK":   "#db2777",
		"PURPLE": "#7c3aed",
	},
}

var darkTheme = ThemeConfig{
	ChartBackground: "transparent",
	ChartGrid:       "#44403c", // stone-700.
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1", // stone-300.
	ChartTextMuted:  "#a8a29e", // stone-400.

	Palette: []string{
		"#fbbf24", // amber-400.
		"#38bdf8", // sky-400.
		"#a3e635", // lime-400.
		"#a78bfa", // violet-400.
		"#f472b6", // pink-400.
		"#22d3ee", // cyan-400.
		"#fb923c", // orange-400.
		"#818cf8", // indigo-400.
	},
	Options: map[string]string{
		"GRAY":   "#a8a29e",
		"BLUE":   "#3b82f6",
		"GREEN":  "#22c55e",
		"YELLOW": "#eab308",
		"ORANGE": "#f97316",
		"RED":    "#ef4444",
		"PINK":   "#ec4899",
		"PURPLE": "#8b5cf6",
	},
}
