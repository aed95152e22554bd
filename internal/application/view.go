package application

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/csvpreview/internal/core"
)

/* ----------------------------------------
	STYLES
---------------------------------------- */

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	focusedStyle = paneStyle.BorderForeground(lipgloss.Color("69"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
)

const barWidth = 40

/* ----------------------------------------
	VIEW
---------------------------------------- */

func (m Model) View() string {
	snap := m.ws.Snapshot(m.svc.SampleSize())

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recipient preview"))
	b.WriteString("\n")

	if snap.Error != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s (Code: %s)", snap.Error.Message, snap.Error.Code)))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(snap.Error.Action))
		b.WriteString("\n")
	}

	b.WriteString(m.pane(panePath, m.path.View()+"\n"+m.statusLine(snap)))
	b.WriteString("\n")
	b.WriteString(m.pane(paneColumns, renderColumns(snap)))
	b.WriteString("\n")
	b.WriteString(m.pane(paneRange, m.renderRange(snap)))
	b.WriteString("\n")
	b.WriteString(renderRecipients(snap))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) pane(p pane, body string) string {
	style := paneStyle
	if m.focus == p {
		style = focusedStyle
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(body)
}

func (m Model) statusLine(snap core.Snapshot) string {
	switch {
	case m.loading > 0:
		return mutedStyle.Render("Loading...")
	case snap.File != "":
		return mutedStyle.Render(fmt.Sprintf("%s: %d rows, %d columns", snap.File, snap.Rows, len(snap.Columns)))
	case m.status != "":
		return mutedStyle.Render(m.status)
	}
	return mutedStyle.Render("No file loaded")
}

func renderColumns(snap core.Snapshot) string {
	if len(snap.Columns) == 0 {
		return "Email column: " + mutedStyle.Render("(none)")
	}
	var b strings.Builder
	b.WriteString("Email column:\n")
	for _, c := range snap.Columns {
		if c == snap.EmailKey {
			b.WriteString(cursorStyle.Render("> " + c))
		} else {
			b.WriteString("  " + c)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderRange draws the slider as a bar with the selected span filled.
func (m Model) renderRange(snap core.Snapshot) string {
	bar := rangeBar(startOf(snap), stopOf(snap), snap.Max, barWidth)
	handle := "stop"
	if m.handle == handleLow {
		handle = "start"
	}
	return fmt.Sprintf("%d %s %d\nStart: %s   Stop: %s   %s",
		snap.Min, bar, snap.Max, fieldValue(snap.Start), fieldValue(snap.Stop),
		mutedStyle.Render("moving "+handle))
}

// rangeBar maps [lo, hi] of [0, total] onto width cells.
func rangeBar(lo, hi, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat("-", width) + "]"
	}
	a := lo * width / total
	z := hi * width / total
	return "[" + strings.Repeat("-", a) + strings.Repeat("=", z-a) + strings.Repeat("-", width-z) + "]"
}

func renderRecipients(snap core.Snapshot) string {
	if snap.Selected == 0 {
		return mutedStyle.Render("No recipients selected")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d recipients selected\n", snap.Selected)
	start := startOf(snap)
	for i, r := range snap.Recipients {
		fmt.Fprintf(&b, "  %d. %s\n", start+i+1, r)
	}
	if more := snap.Selected - len(snap.Recipients); more > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  and %d more", more)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func fieldValue(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func startOf(snap core.Snapshot) int {
	n, _ := strconv.Atoi(snap.Start)
	return n
}

func stopOf(snap core.Snapshot) int {
	n, _ := strconv.Atoi(snap.Stop)
	return n
}
