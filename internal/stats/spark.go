// Package stats prepares and renders tracker reports.
package stats

import (
	"os"

	"golang.org/x/term"
)

const (
	sparkLearned = '█'
	sparkFrozen  = '▒'
	sparkEmpty   = '·'

	terminalWidthBackup = 80
	sparkLabelReserve   = 10
)

// ActivitySparkline renders one glyph per day: solid for learned,
// shaded for frozen, a dot for unlogged. The line is truncated from
// the oldest end to fit maxWidth.
func ActivitySparkline(days []DayRow, maxWidth int) string {
	if len(days) == 0 {
		return ""
	}
	if maxWidth > 0 && len(days) > maxWidth {
		days = days[len(days)-maxWidth:]
	}
	out := make([]rune, 0, len(days))
	for _, day := range days {
		switch {
		case day.Learned:
			out = append(out, sparkLearned)
		case day.Freezed:
			out = append(out, sparkFrozen)
		default:
			out = append(out, sparkEmpty)
		}
	}
	return string(out)
}

// terminalWidth returns the usable sparkline width for stdout, with
// a fixed fallback when stdout is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = terminalWidthBackup
	}
	width -= sparkLabelReserve
	if width < 1 {
		width = 1
	}
	return width
}
