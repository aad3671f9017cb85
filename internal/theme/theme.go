// Package theme maps abstract threshold color tokens to renderable
// colors and carries the lipgloss styles used by the CLI renderer.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Variant selects the palette.
type Variant string

const (
	Dark  Variant = "dark"
	Light Variant = "light"
)

// Theme resolves color tokens against one palette variant.
type Theme struct {
	variant Variant
	palette map[string]string
}

// New creates a theme for the given variant. Unknown variants fall
// back to dark.
func New(variant Variant) *Theme {
	p := darkPalette
	if variant == Light {
		p = lightPalette
	}
	return &Theme{variant: variant, palette: p}
}

// Detect picks the variant from the terminal background.
func Detect() *Theme {
	if termenv.HasDarkBackground() {
		return New(Dark)
	}
	return New(Light)
}

var darkPalette = map[string]string{
	"green":  "#73BF69",
	"yellow": "#FADE2A",
	"orange": "#FF9830",
	"red":    "#F2495C",
	"blue":   "#5794F2",
	"purple": "#B877D9",
	"text":   "#CCCCDC",
}

var lightPalette = map[string]string{
	"green":  "#56A64B",
	"yellow": "#E0B400",
	"orange": "#FF780A",
	"red":    "#E02F44",
	"blue":   "#3274D9",
	"purple": "#A352CC",
	"text":   "#24292E",
}

// ResolveColor maps a threshold color token to a hex color. Hex
// tokens pass through; "semi-dark-" and "light-" prefixed names and
// "dark-"/"super-light-" variants resolve to their hue's base color.
// Unknown tokens resolve to the theme's text color.
func (t *Theme) ResolveColor(token string) string {
	if token == "" {
		return t.palette["text"]
	}
	if strings.HasPrefix(token, "#") {
		return token
	}
	name := strings.ToLower(token)
	for _, prefix := range []string{"semi-dark-", "super-light-", "light-", "dark-"} {
		if strings.HasPrefix(name, prefix) {
			name = strings.TrimPrefix(name, prefix)
			break
		}
	}
	if hex, ok := t.palette[name]; ok {
		return hex
	}
	return t.palette["text"]
}

// Style returns a lipgloss style rendering in the resolved color.
func (t *Theme) Style(token string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.ResolveColor(token)))
}

// Styles carries the fixed styles used by command output.
type Styles struct {
	Header lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
}

// NewStyles builds the command output styles for a theme.
func NewStyles(t *Theme) *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Error:  t.Style("red").Bold(true),
	}
}
