package ui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

// ProgressBar renders a Unicode progress bar with a done/total count.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s%s %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct)
}

// Panel frames lines with the theme border.
func Panel(t Theme, lines []string) string {
	return t.Border.Render(strings.Join(lines, "\n"))
}

// Header is the "Todos ✔ n • n Total n" line shared by the list views.
func Header(t Theme, items []model.Item) string {
	d, p := model.Stats(items)
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render("✔"), d,
		t.Pending.Render("•"), p,
		t.Accent.Render("Total"), len(items),
	)
}

// ItemLine renders one item as "☐ text", truncating long text.
func ItemLine(t Theme, it model.Item) string {
	box := t.Muted.Render(t.BoxUnchecked)
	text := truncate(it.Task, 80)
	if it.Done {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	return box + " " + text
}

// FlatLines numbers items 1-based, the indexes the CLI accepts.
func FlatLines(t Theme, items []model.Item) []string {
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, fmt.Sprintf("%s %s", t.Muted.Render(fmt.Sprintf("%2d.", i+1)), ItemLine(t, it)))
	}
	return out
}

// GroupLines splits items into Pending and Done sections. Indexes stay the
// positions in the full list so they can be passed to done/rm.
func GroupLines(t Theme, items []model.Item) []string {
	var pend, done []string
	for i, it := range items {
		line := fmt.Sprintf("%s %s", t.Muted.Render(fmt.Sprintf("%2d.", i+1)), ItemLine(t, it))
		if it.Done {
			done = append(done, line)
		} else {
			pend = append(pend, line)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, pend...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, done...)
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
