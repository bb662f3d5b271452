package ui

import "github.com/charmbracelet/lipgloss"

// Palette used consistently across status, config, and restore output.
var (
	ColorAccent = lipgloss.Color("#7D56F4")
	ColorPass   = lipgloss.Color("#2ECC71")
	ColorWarn   = lipgloss.Color("#F39C12")
	ColorFail   = lipgloss.Color("#E74C3C")
	ColorMuted  = lipgloss.Color("#6B7280")
)

// Icons used alongside their matching render helper.
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	passStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

func RenderAccent(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return accentStyle.Render(s)
}

func RenderPass(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return passStyle.Render(s)
}

func RenderWarn(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return warnStyle.Render(s)
}

func RenderFail(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return failStyle.Render(s)
}

func RenderMuted(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return mutedStyle.Render(s)
}
