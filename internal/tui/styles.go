package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dsaviz/internal/visual"
)

// Tone names a highlight colour. Every element, node and tree tag maps to
// one tone; the canvas groups runs of equal tone.
type Tone int

const (
	TonePlain Tone = iota
	ToneMuted
	ToneActive
	ToneWrite
	TonePivot
	ToneDone
	ToneSeen
	ToneProbe
	ToneHit
	ToneMiss
)

// Theme is a palette for the tones plus chrome colours.
type Theme struct {
	Name   string
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Tones  map[Tone]lipgloss.Color
}

var (
	ThemeTerminal = Theme{
		Name:   "terminal",
		Accent: lipgloss.Color("86"),
		Text:   lipgloss.Color("255"),
		Muted:  lipgloss.Color("242"),
		Tones: map[Tone]lipgloss.Color{
			TonePlain:  lipgloss.Color("250"),
			ToneMuted:  lipgloss.Color("238"),
			ToneActive: lipgloss.Color("220"),
			ToneWrite:  lipgloss.Color("203"),
			TonePivot:  lipgloss.Color("213"),
			ToneDone:   lipgloss.Color("82"),
			ToneSeen:   lipgloss.Color("67"),
			ToneProbe:  lipgloss.Color("86"),
			ToneHit:    lipgloss.Color("46"),
			ToneMiss:   lipgloss.Color("240"),
		},
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Accent: lipgloss.Color("#88ff88"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Tones: map[Tone]lipgloss.Color{
			TonePlain:  lipgloss.Color("#00cc00"),
			ToneMuted:  lipgloss.Color("#005500"),
			ToneActive: lipgloss.Color("#ffff00"),
			ToneWrite:  lipgloss.Color("#ff0000"),
			TonePivot:  lipgloss.Color("#ffaa00"),
			ToneDone:   lipgloss.Color("#88ff88"),
			ToneSeen:   lipgloss.Color("#008800"),
			ToneProbe:  lipgloss.Color("#ccffcc"),
			ToneHit:    lipgloss.Color("#ffffff"),
			ToneMiss:   lipgloss.Color("#003300"),
		},
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Accent: lipgloss.Color("#00a8cc"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
		Tones: map[Tone]lipgloss.Color{
			TonePlain:  lipgloss.Color("#0077be"),
			ToneMuted:  lipgloss.Color("#224466"),
			ToneActive: lipgloss.Color("#ffd700"),
			ToneWrite:  lipgloss.Color("#ff4444"),
			TonePivot:  lipgloss.Color("#ff9ff3"),
			ToneDone:   lipgloss.Color("#00ff88"),
			ToneSeen:   lipgloss.Color("#4488aa"),
			ToneProbe:  lipgloss.Color("#00ffff"),
			ToneHit:    lipgloss.Color("#5fd068"),
			ToneMiss:   lipgloss.Color("#334455"),
		},
	}

	Themes = []Theme{ThemeTerminal, ThemeRetro, ThemeOcean}
)

// GetTheme returns the named theme, or the terminal theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeTerminal
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func (t Theme) style(tone Tone) lipgloss.Style {
	c, ok := t.Tones[tone]
	if !ok {
		c = t.Text
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (t Theme) accent() lipgloss.Style { return lipgloss.NewStyle().Foreground(t.Accent) }
func (t Theme) text() lipgloss.Style   { return lipgloss.NewStyle().Foreground(t.Text) }
func (t Theme) muted() lipgloss.Style  { return lipgloss.NewStyle().Foreground(t.Muted) }

func elementTone(tag visual.ElementTag) Tone {
	switch tag {
	case visual.ElementComparing:
		return ToneActive
	case visual.ElementSwapping:
		return ToneWrite
	case visual.ElementPivot:
		return TonePivot
	case visual.ElementSorted:
		return ToneDone
	case visual.ElementVisited:
		return ToneSeen
	case visual.ElementSearching:
		return ToneProbe
	case visual.ElementFound:
		return ToneHit
	case visual.ElementNotFound:
		return ToneMiss
	default:
		return TonePlain
	}
}

func nodeTone(tag visual.NodeTag) Tone {
	switch tag {
	case visual.NodeStart:
		return TonePivot
	case visual.NodeVisiting:
		return ToneActive
	case visual.NodeVisited:
		return ToneDone
	case visual.NodeCurrent:
		return ToneProbe
	default:
		return TonePlain
	}
}

func treeTone(tag visual.TreeTag) Tone {
	switch tag {
	case visual.TreeInserting:
		return ToneWrite
	case visual.TreeSearching:
		return ToneProbe
	case visual.TreeFound:
		return ToneHit
	case visual.TreeVisiting:
		return ToneSeen
	case visual.TreeCurrent:
		return ToneActive
	default:
		return TonePlain
	}
}

// progressBar is a fixed-width bar for a fraction in [0, 1].
func (t Theme) progressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = max(0, min(width, filled))
	return t.accent().Render(strings.Repeat("━", filled)) + t.style(ToneMuted).Render(strings.Repeat("─", width-filled))
}
