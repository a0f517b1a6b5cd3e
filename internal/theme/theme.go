// Package theme provides color themes for the day view.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/agenda/internal/task"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is loaded when no theme is configured.
const DefaultName = "dark"

// Theme holds all colors for a theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // empty grid rows on the hour
	BgSelection string `toml:"bg_selection"` // selected tasks
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"` // completed tasks, labels
	Accent      string `toml:"accent"`   // header, cursor
	Grid        string `toml:"grid"`
	Now         string `toml:"now"` // current time marker
	Warning     string `toml:"warning"`

	// One color per task color tag.
	Orange      string `toml:"orange"`
	Green       string `toml:"green"`
	YellowGreen string `toml:"yellow_green"`
	TextOnTask  string `toml:"text_on_task"`
}

// Load loads a theme by name from embedded files.
// Falls back to the default theme if the name is unknown.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

// MustLoad is Load for built-in names; it panics if the embedded files are broken.
func MustLoad(name string) *Theme {
	t, err := Load(name)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Theme) applyDefaults() {
	t.BgSelection = coalesce(t.BgSelection, t.BgHighlight, t.Accent)
	t.FgMuted = coalesce(t.FgMuted, t.Fg)
	t.Grid = coalesce(t.Grid, t.FgMuted)
	t.Now = coalesce(t.Now, t.Warning, t.Accent)
	t.TextOnTask = coalesce(t.TextOnTask, t.Bg)
	t.Orange = coalesce(t.Orange, t.Accent)
	t.Green = coalesce(t.Green, t.Accent)
	t.YellowGreen = coalesce(t.YellowGreen, t.Green)
}

// TaskColor returns the block color for a task color tag.
// Unknown tags use the default tag's color.
func (t *Theme) TaskColor(c task.ColorTag) lipgloss.Color {
	switch c {
	case task.ColorGreen:
		return lipgloss.Color(t.Green)
	case task.ColorYellowGreen:
		return lipgloss.Color(t.YellowGreen)
	default:
		return lipgloss.Color(t.Orange)
	}
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"dark", "light"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
