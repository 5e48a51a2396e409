// Package report renders statistics rollups for export.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/pomolit/internal/stats"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatPDF   Format = "pdf"
)

var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatPDF}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q (expected table, json, yaml or pdf)", s)
}

// Extension is the file suffix for f, including the dot.
func (f Format) Extension() string {
	if f == FormatTable {
		return ".txt"
	}
	return "." + string(f)
}

// Field is one labelled summary value.
type Field struct {
	Label string
	Value string
}

// Sheet is the format-neutral shape of a report: a summary block and a
// breakdown table. Data is the rollup itself, used by JSON and YAML.
type Sheet struct {
	Title   string
	Summary []Field
	Headers []string
	Rows    [][]string
	Data    any
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

func hourLabel(h int) string {
	if h < 0 {
		return "-"
	}
	return fmt.Sprintf("%02d:00", h)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func totalsFields(t stats.Totals, rate float64) []Field {
	return []Field{
		{"Pomodoros", fmt.Sprintf("%d/%d", t.CompletedPomodoros, t.TotalPomodoros)},
		{"Focus", fmt.Sprintf("%d min", t.FocusMinutes())},
		{"Breaks", fmt.Sprintf("%d min", t.BreakSeconds/60)},
		{"Tasks", fmt.Sprintf("%d/%d", t.Tasks.Completed, t.Tasks.Total)},
		{"Completion", percent(rate)},
	}
}

func FromDaily(d stats.DailyStats) Sheet {
	s := Sheet{
		Title:   "Daily report: " + d.Date,
		Summary: totalsFields(d.Totals, d.CompletionRate),
		Headers: []string{"Hour", "Pomodoros"},
		Data:    d,
	}
	s.Summary = append(s.Summary,
		Field{"Best hour", hourLabel(d.MostProductiveHour)},
		Field{"Score", strconv.Itoa(d.Score)},
	)
	for h, n := range d.Hourly {
		if n > 0 {
			s.Rows = append(s.Rows, []string{hourLabel(h), strconv.Itoa(n)})
		}
	}
	return s
}

func FromWeekly(w stats.WeeklyStats) Sheet {
	s := Sheet{
		Title:   fmt.Sprintf("Weekly report: %s to %s", w.Start, w.End),
		Summary: totalsFields(w.Totals, w.CompletionRate),
		Headers: []string{"Date", "Pomodoros", "Focus (min)", "Tasks", "Score"},
		Data:    w,
	}
	s.Summary = append(s.Summary,
		Field{"Best day", orDash(w.MostProductiveDay)},
		Field{"Score", strconv.Itoa(w.Score)},
	)
	for _, d := range w.Days {
		s.Rows = append(s.Rows, []string{
			d.Date,
			strconv.Itoa(d.CompletedPomodoros),
			strconv.Itoa(d.FocusMinutes()),
			fmt.Sprintf("%d/%d", d.Tasks.Completed, d.Tasks.Total),
			strconv.Itoa(d.Score),
		})
	}
	return s
}

func FromMonthly(m stats.MonthlyStats) Sheet {
	s := Sheet{
		Title:   fmt.Sprintf("Monthly report: %s %d", m.Month, m.Year),
		Summary: totalsFields(m.Totals, m.CompletionRate),
		Headers: []string{"Week", "Pomodoros", "Focus (min)", "Tasks", "Score"},
		Data:    m,
	}
	top := "-"
	if m.TopWeek >= 0 && m.TopWeek < len(m.Weeks) {
		top = m.Weeks[m.TopWeek].Start
	}
	s.Summary = append(s.Summary, Field{"Best week", top})
	for _, w := range m.Weeks {
		s.Rows = append(s.Rows, []string{
			w.Start + " to " + w.End,
			strconv.Itoa(w.CompletedPomodoros),
			strconv.Itoa(w.FocusMinutes()),
			fmt.Sprintf("%d/%d", w.Tasks.Completed, w.Tasks.Total),
			strconv.Itoa(w.Score),
		})
	}
	return s
}

// FromRange reports hour-of-day productivity across an arbitrary span.
func FromRange(r stats.RangeStats) Sheet {
	s := Sheet{
		Title:   fmt.Sprintf("Productivity by hour: %s to %s", r.Start, r.End),
		Summary: totalsFields(r.Totals, r.CompletionRate),
		Headers: []string{"Hour", "Pomodoros"},
		Data:    r,
	}
	s.Summary = append(s.Summary,
		Field{"Active days", strconv.Itoa(r.ActiveDays)},
		Field{"Best hour", hourLabel(r.MostProductiveHour)},
	)
	for h, n := range r.Hourly {
		if n > 0 {
			s.Rows = append(s.Rows, []string{hourLabel(h), strconv.Itoa(n)})
		}
	}
	return s
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(12)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Table renders s for a terminal.
func Table(s Sheet) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title))
	b.WriteString("\n\n")
	for _, f := range s.Summary {
		b.WriteString(labelStyle.Render(f.Label))
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	if len(s.Rows) > 0 {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
			Headers(s.Headers...).
			Rows(s.Rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		b.WriteString("\n")
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	return b.String()
}

// Write renders s to w in format f.
func Write(w io.Writer, s Sheet, f Format) error {
	switch f {
	case FormatTable:
		_, err := io.WriteString(w, Table(s))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s.Data); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	case FormatPDF:
		return WritePDF(w, s)
	}
	return fmt.Errorf("unknown report format %q", f)
}
