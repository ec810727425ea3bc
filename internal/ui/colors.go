package ui

// Color accessors return the escape sequence of the active theme, or an empty
// string when colors are disabled.

// ColorReset returns the reset sequence.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorMagenta returns the info color.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the primary color.
func ColorCyan() string { return GetCurrentTheme().Primary }

// ColorBold returns the bold sequence.
func ColorBold() string { return GetCurrentTheme().Bold }

// Provider adapts the active theme to interfaces that want colors as methods,
// such as apperrors.ColorProvider.
type Provider struct{}

// Red returns the error color.
func (Provider) Red() string { return ColorRed() }

// Yellow returns the warning color.
func (Provider) Yellow() string { return ColorYellow() }

// Reset returns the reset sequence.
func (Provider) Reset() string { return ColorReset() }
