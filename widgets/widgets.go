package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Toggle renders a labelled on/off indicator: "● pitch"
func Toggle(label string, on bool, onColor, offColor lipgloss.Color) string {
	if on {
		return lipgloss.NewStyle().Foreground(onColor).Render("● " + label)
	}
	return lipgloss.NewStyle().Foreground(offColor).Render("○ " + label)
}

// Meter renders value/limit as a bar of width cells: "vel [██████····] 100"
func Meter(label string, value, limit, width int, fill lipgloss.Color) string {
	if width < 1 {
		width = 1
	}
	n := 0
	if limit > 0 {
		n = value * width / limit
	}
	n = max(0, min(width, n))
	bar := lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", n)) +
		strings.Repeat("·", width-n)
	return fmt.Sprintf("%s [%s] %3d", label, bar, value)
}

// Swatch renders a single colored block
func Swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(hex, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", Swatch(hex), name, desc)
}
