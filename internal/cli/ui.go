package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorLeaf  = lipgloss.Color("71")  // success, cached results
	colorMoss  = lipgloss.Color("108") // headings, spinner
	colorAmber = lipgloss.Color("179") // warnings
	colorBark  = lipgloss.Color("246") // labels
	colorAsh   = lipgloss.Color("240") // muted text
	colorSnow  = lipgloss.Color("255") // values
)

var (
	// StyleTitle for section headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorMoss)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorAsh)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorSnow)

	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorMoss)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorMoss)
	styleLabel       = lipgloss.NewStyle().Foreground(colorBark).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorLeaf)
	styleComputed    = lipgloss.NewStyle().Foreground(colorBark)
)

// status line marks
var (
	markSuccess = lipgloss.NewStyle().Foreground(colorLeaf).Render("✓")
	markWarning = lipgloss.NewStyle().Foreground(colorAmber).Render("!")
	markInfo    = lipgloss.NewStyle().Foreground(colorBark).Render("›")
	markFile    = StyleDim.Render("→")
)

const (
	iconCached = "cached"
	iconFresh  = "fresh"
)

// =============================================================================
// Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(markSuccess + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(markWarning + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(markInfo + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line under the previous message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written artifact.
func printFile(path string) {
	fmt.Println("  " + markFile + " " + StyleValue.Render(path))
}

// printKeyValue prints a value under a fixed-width label.
func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the frame count and cache use of a run on one line.
// Nothing is printed for a single fresh frame.
func printStats(frames, hits, misses int) {
	var parts []string
	if frames > 1 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d frames", frames)))
	}
	switch {
	case hits > 0 && misses == 0:
		parts = append(parts, styleCached.Render(iconCached))
	case hits > 0:
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d %s", hits, iconCached)))
		parts = append(parts, styleComputed.Render(fmt.Sprintf("%d %s", misses, iconFresh)))
	case misses > 0:
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	if len(parts) == 0 {
		return
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}
