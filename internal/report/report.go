// Package report renders a wedding's state for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"wedplan/internal/core"
	"wedplan/internal/services"
)

// Theme is the colour scheme of the report.
type Theme struct {
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
}

var Rose = Theme{
	Foreground:    lipgloss.Color("#e5e7eb"),
	ForegroundDim: lipgloss.Color("#6b7280"),
	Primary:       lipgloss.Color("#ec4899"),
	Border:        lipgloss.Color("#4b5563"),
	Error:         lipgloss.Color("#ef4444"),
}

// MaxWidth is the width of every section.
const MaxWidth = 72

// Data is everything one report shows.
type Data struct {
	Dashboard core.Dashboard
	Budget    services.BudgetOverview
	Tasks     core.TaskBoard
}

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	box     lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	danger  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		heading: lipgloss.NewStyle().Bold(true).Foreground(t.Foreground).MarginBottom(1),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1).
			Width(MaxWidth),
		label:  lipgloss.NewStyle().Foreground(t.ForegroundDim).Width(24),
		value:  lipgloss.NewStyle().Foreground(t.Foreground).Bold(true),
		dim:    lipgloss.NewStyle().Foreground(t.ForegroundDim),
		danger: lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// Render writes the report to w.
func Render(w io.Writer, theme Theme, d Data) error {
	st := newStyles(theme)
	sections := []string{
		header(st, d.Dashboard),
		overview(st, d.Dashboard),
		budget(st, d.Budget),
		board(st, d.Tasks),
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

// Money renders an amount as "€1,234.50".
func Money(m core.Money) string {
	s := "€" + humanize.FormatFloat("#,###.##", m.Decimal().Abs().InexactFloat64())
	if m.Cents < 0 {
		return "-" + s
	}
	return s
}

func badge(value string) string {
	b := core.BadgeFor(value)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render(b.Label)
}

func row(st styles, label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, st.label.Render(label), st.value.Render(value))
}

func header(st styles, d core.Dashboard) string {
	when := d.Wedding.WeddingDate.Format("Monday, January 2, 2006")
	countdown := fmt.Sprintf("%d days to go", d.DaysUntilWedding)
	if d.DaysUntilWedding == 0 {
		countdown = "today"
	}
	return st.box.Render(st.title.Render(d.Wedding.CoupleName()) + "\n" + st.dim.Render(when+" · "+countdown))
}

func overview(st styles, d core.Dashboard) string {
	lines := []string{
		st.heading.Render("Overview"),
		row(st, "Guests confirmed", fmt.Sprintf("%d of %d", d.Guests.Confirmed, d.Guests.Total)),
		row(st, "Attending", fmt.Sprint(d.Guests.TotalAttendees)),
		row(st, "Pending replies", fmt.Sprint(d.Guests.Pending)),
		row(st, "Tasks done", fmt.Sprintf("%d of %d (%.1f%%)", d.Tasks.Completed, d.Tasks.Total, d.Tasks.CompletionPercentage)),
	}
	if len(d.RecentActivity) > 0 {
		lines = append(lines, "", st.heading.Render("Recent activity"))
		for _, a := range d.RecentActivity {
			lines = append(lines, fmt.Sprintf("%-8s %s %s %s",
				a.Kind, a.Title, badge(a.Status), st.dim.Render(humanize.Time(a.At))))
		}
	}
	return st.box.Render(strings.Join(lines, "\n"))
}

func budget(st styles, ov services.BudgetOverview) string {
	s := ov.Summary
	remaining := st.value.Render(Money(s.Remaining))
	if s.Remaining.Cents < 0 {
		remaining = st.danger.Render(Money(s.Remaining))
	}
	lines := []string{
		st.heading.Render("Budget"),
		row(st, "Total budget", Money(s.TotalBudget)),
		row(st, "Spent", Money(s.TotalSpent)),
		lipgloss.JoinHorizontal(lipgloss.Top, st.label.Render("Remaining"), remaining),
		"",
	}
	for _, c := range s.Categories {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■")
		lines = append(lines, fmt.Sprintf("%s %-22s %12s / %-12s %s",
			swatch, c.DisplayTitle(), Money(c.Spent), Money(c.Budgeted), bar(c.PercentUsed, 12)))
	}
	if len(s.Categories) == 0 {
		lines = append(lines, st.dim.Render("No categories yet."))
	}
	return st.box.Render(strings.Join(lines, "\n"))
}

func board(st styles, b core.TaskBoard) string {
	lines := []string{st.heading.Render("Tasks")}
	for _, col := range b.Columns() {
		lines = append(lines, fmt.Sprintf("%s (%d)", badge(string(col.Status)), len(col.Tasks)))
		for _, t := range col.Tasks {
			due := ""
			if !t.DueDate.IsEmpty() {
				due = st.dim.Render(" due " + t.DueDate.Format("Jan 2"))
			}
			lines = append(lines, fmt.Sprintf("  • %s %s%s", t.Title, badge(string(t.Priority)), due))
		}
	}
	return st.box.Render(strings.Join(lines, "\n"))
}

// bar draws percent as a fixed-width gauge, clamped to [0, 100].
func bar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
