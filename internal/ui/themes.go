package ui

import (
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles the palettes used by the three output surfaces: ANSI escape
// sequences for plain CLI text, lipgloss colors for result tables, and
// lipgloss colors for the dashboard.
type Theme struct {
	Name string

	// ANSI sequences for CLI text.
	Primary string
	Success string
	Warning string
	Error   string
	Info    string
	Bold    string
	Reset   string

	Table     TableTheme
	Dashboard DashboardTheme
}

// TableTheme defines lipgloss colors for rendered result tables.
type TableTheme struct {
	Header lipgloss.TerminalColor
	Border lipgloss.TerminalColor
	Value  lipgloss.TerminalColor
	Warn   lipgloss.TerminalColor
	Dim    lipgloss.TerminalColor
}

// DashboardTheme defines lipgloss colors for the full-screen dashboard.
type DashboardTheme struct {
	Bg      lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// DarkTheme suits dark terminal backgrounds. It is the default.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
		Table:     TableTheme{
			Header: lipgloss.Color("#FF8C00"),
			Border: lipgloss.Color("#666666"),
			Value:  lipgloss.Color("#E0E0E0"),
			Warn:   lipgloss.Color("#FFB347"),
			Dim:    lipgloss.Color("#888888"),
		},
		Dashboard: DashboardTheme{
			Bg:      lipgloss.Color("#000000"),
			Text:    lipgloss.Color("#E0E0E0"),
			Border:  lipgloss.Color("#FF6600"),
			Accent:  lipgloss.Color("#FF8C00"),
			Success: lipgloss.Color("#9ece6a"),
			Warning: lipgloss.Color("#FFB347"),
			Error:   lipgloss.Color("#FF4444"),
			Dim:     lipgloss.Color("#666666"),
			Info:    lipgloss.Color("#4488FF"),
		},
	}

	// LightTheme uses darker inks for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;25m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;90m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
		Table:     TableTheme{
			Header: lipgloss.Color("#B34700"),
			Border: lipgloss.Color("#9E9E9E"),
			Value:  lipgloss.Color("#1A1A1A"),
			Warn:   lipgloss.Color("#A15C00"),
			Dim:    lipgloss.Color("#707070"),
		},
		Dashboard: DashboardTheme{
			Bg:      lipgloss.Color("#FAFAFA"),
			Text:    lipgloss.Color("#1A1A1A"),
			Border:  lipgloss.Color("#B34700"),
			Accent:  lipgloss.Color("#CC5500"),
			Success: lipgloss.Color("#2E7D32"),
			Warning: lipgloss.Color("#A15C00"),
			Error:   lipgloss.Color("#C62828"),
			Dim:     lipgloss.Color("#8A8A8A"),
			Info:    lipgloss.Color("#1F5FBF"),
		},
	}

	// NoColorTheme leaves every color to the terminal. Selected by -no-color,
	// NO_COLOR or -theme none.
	NoColorTheme = Theme{
		Name:      "none",
		Table:     TableTheme{
			Header: lipgloss.NoColor{},
			Border: lipgloss.NoColor{},
			Value:  lipgloss.NoColor{},
			Warn:   lipgloss.NoColor{},
			Dim:    lipgloss.NoColor{},
		},
		Dashboard: DashboardTheme{
			Bg:      lipgloss.NoColor{},
			Text:    lipgloss.NoColor{},
			Border:  lipgloss.NoColor{},
			Accent:  lipgloss.NoColor{},
			Success: lipgloss.NoColor{},
			Warning: lipgloss.NoColor{},
			Error:   lipgloss.NoColor{},
			Dim:     lipgloss.NoColor{},
			Info:    lipgloss.NoColor{},
		},
	}

	themes = []Theme{DarkTheme, LightTheme, NoColorTheme}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames lists the names accepted by -theme.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// LookupTheme returns the theme with the given name.
func LookupTheme(name string) (Theme, bool) {
	i := slices.IndexFunc(themes, func(t Theme) bool { return t.Name == name })
	if i < 0 {
		return Theme{}, false
	}
	return themes[i], true
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme, e.g. to render plain text into
// a file and restore the previous theme afterwards.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// GetCurrentTableTheme returns the table palette of the active theme.
func GetCurrentTableTheme() TableTheme { return GetCurrentTheme().Table }

// GetCurrentDashboardTheme returns the dashboard palette of the active theme.
func GetCurrentDashboardTheme() DashboardTheme { return GetCurrentTheme().Dashboard }

// InitTheme activates the named theme. -no-color and the NO_COLOR
// environment variable (https://no-color.org/) take precedence over the
// name. Unknown names fall back to the dark theme; the command line rejects
// them before this point.
func InitTheme(name string, noColor bool) {
	t, ok := LookupTheme(name)
	if !ok {
		t = DarkTheme
	}
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		t = NoColorTheme
	}
	SetCurrentTheme(t)
}
