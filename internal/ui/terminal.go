// Package ui provides terminal styling and output helpers for the
// checkpoint CLI.
package ui

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ShouldUseColor determines if ANSI color codes should be used. Respects
// standard conventions:
//   - NO_COLOR: https://no-color.org/ - disables color if set
//   - CLICOLOR=0: disables color
//   - CLICOLOR_FORCE: forces color even in non-TTY
//   - Falls back to the detected color profile
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// ShouldUseEmoji determines if emoji decorations should be used. Disabled
// in non-TTY mode to keep output machine-readable. Can be controlled with
// CHECKPOINT_NO_EMOJI.
func ShouldUseEmoji() bool {
	if os.Getenv("CHECKPOINT_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// GetWidth returns the width of the terminal or a default value. termenv
// has no window-size query, so this honors $COLUMNS (set by most shells)
// before falling back to 80.
func GetWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w
		}
	}
	return 80
}
