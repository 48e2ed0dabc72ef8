package outwriter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/huangsam/ecoscore/internal/contract"
)

// Styles for score bars and trend arrows.
var (
	styleGood    = lipgloss.NewStyle().Foreground(lipgloss.Color("#66bb6a"))
	styleFair    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff59d"))
	stylePoor    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef5350"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	styleHeading = lipgloss.NewStyle().Foreground(lipgloss.Color("#64b5f6")).Bold(true)
)

// scoreBarWidth is the number of cells in a score bar.
const scoreBarWidth = 10

// render applies a style only when colors are enabled.
func render(style lipgloss.Style, s string, useColors bool) string {
	if !useColors {
		return s
	}
	return style.Render(s)
}

// styleFor picks the style matching the grade bands of a score.
func styleFor(score float64) lipgloss.Style {
	switch {
	case score >= 0.7:
		return styleGood
	case score >= 0.4:
		return styleFair
	default:
		return stylePoor
	}
}

// ScoreBar renders a fixed-width bar for a score in [0,1].
// Example: "████████░░"
func ScoreBar(score float64, useColors bool) string {
	filled := min(max(int(score*scoreBarWidth+0.5), 0), scoreBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", scoreBarWidth-filled)
	return render(styleFor(score), bar, useColors)
}

// TrendArrow returns an indicator for the change from the previous score.
// Higher scores are better, so a rise is styled as an improvement.
func TrendArrow(delta float64, precision int, useColors bool) string {
	switch {
	case delta > 0:
		return render(styleGood, fmt.Sprintf("▲ +%.*f", precision, delta), useColors)
	case delta < 0:
		return render(stylePoor, fmt.Sprintf("▼ %.*f", precision, delta), useColors)
	default:
		return render(styleMuted, "─", useColors)
	}
}

// heading renders a section title.
func heading(title string, useColors bool) string {
	return render(styleHeading, title, useColors)
}

// gradeLabel returns the grade of a score, colored when enabled.
func gradeLabel(score float64, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}
