// Package stats computes daily, weekly and monthly rollups from session and task rows.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/models"
	"github.com/julianstephens/pomolit/internal/utils"
)

// SessionSource is the read side of the session repository.
type SessionSource interface {
	ListByDateRange(ctx context.Context, start, end string) ([]models.Session, error)
	ActiveDates(ctx context.Context) ([]string, error)
}

// TaskSource is the read side of the task repository.
type TaskSource interface {
	ListByDateRange(ctx context.Context, start, end string) ([]models.Task, error)
}

// TaskCounts is the task side of a rollup.
type TaskCounts struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
}

// CompletionRate is Completed/Total, or 0 when there are no tasks.
func (c TaskCounts) CompletionRate() float64 {
	if c.Total <= 0 {
		return 0
	}
	rate := float64(c.Completed) / float64(c.Total)
	return math.Min(1, math.Max(0, rate))
}

func (c TaskCounts) add(o TaskCounts) TaskCounts {
	return TaskCounts{Total: c.Total + o.Total, Completed: c.Completed + o.Completed}
}

// Totals are the additive parts shared by every rollup. Times are in seconds.
type Totals struct {
	TotalPomodoros     int        `json:"total_pomodoros" yaml:"total_pomodoros"`
	CompletedPomodoros int        `json:"completed_pomodoros" yaml:"completed_pomodoros"`
	TotalFocusSeconds  int        `json:"total_focus_seconds" yaml:"total_focus_seconds"`
	BreakSeconds       int        `json:"break_seconds" yaml:"break_seconds"`
	Tasks              TaskCounts `json:"tasks" yaml:"tasks"`
}

func (t Totals) add(o Totals) Totals {
	return Totals{
		TotalPomodoros:     t.TotalPomodoros + o.TotalPomodoros,
		CompletedPomodoros: t.CompletedPomodoros + o.CompletedPomodoros,
		TotalFocusSeconds:  t.TotalFocusSeconds + o.TotalFocusSeconds,
		BreakSeconds:       t.BreakSeconds + o.BreakSeconds,
		Tasks:              t.Tasks.add(o.Tasks),
	}
}

// FocusMinutes converts focus time for presentation.
func (t Totals) FocusMinutes() int {
	return t.TotalFocusSeconds / 60
}

type DailyStats struct {
	Date string `json:"date" yaml:"date"`
	Totals `yaml:",inline"`
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate"`
	// Hourly counts completed work sessions by starting hour.
	Hourly [constants.HoursPerDay]int `json:"hourly" yaml:"hourly,flow"`
	// MostProductiveHour is -1 when there are no completed work sessions.
	MostProductiveHour int `json:"most_productive_hour" yaml:"most_productive_hour"`
	Score              int `json:"score" yaml:"score"`
}

type WeeklyStats struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Totals `yaml:",inline"`
	CompletionRate float64      `json:"completion_rate" yaml:"completion_rate"`
	Days           []DailyStats `json:"days" yaml:"days"`
	// MostProductiveDay is empty when no day has a completed work session.
	MostProductiveDay string `json:"most_productive_day" yaml:"most_productive_day"`
	Score             int    `json:"score" yaml:"score"`
}

type MonthlyStats struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
	Totals `yaml:",inline"`
	CompletionRate float64       `json:"completion_rate" yaml:"completion_rate"`
	Weeks          []WeeklyStats `json:"weeks" yaml:"weeks"`
	// TopWeek indexes Weeks; -1 when every week is empty.
	TopWeek int `json:"top_week" yaml:"top_week"`
}

// RangeStats is hour-of-day productivity over an arbitrary date range.
type RangeStats struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Totals `yaml:",inline"`
	CompletionRate     float64                    `json:"completion_rate" yaml:"completion_rate"`
	Hourly             [constants.HoursPerDay]int `json:"hourly" yaml:"hourly,flow"`
	MostProductiveHour int                        `json:"most_productive_hour" yaml:"most_productive_hour"`
	ActiveDays         int                        `json:"active_days" yaml:"active_days"`
}

// Aggregator computes rollups on demand. Each call issues independent reads;
// a concurrent write can yield a torn view across tables.
type Aggregator struct {
	sessions  SessionSource
	tasks     TaskSource
	dailyGoal int
}

func NewAggregator(sessions SessionSource, tasks TaskSource, dailyGoal int) *Aggregator {
	if dailyGoal < 1 {
		dailyGoal = constants.DefaultDailyGoal
	}
	return &Aggregator{sessions: sessions, tasks: tasks, dailyGoal: dailyGoal}
}

// Score blends daily goal attainment with task completion into 0-100.
func Score(completedPomodoros, dailyGoal int, completionRate float64) int {
	if dailyGoal < 1 {
		dailyGoal = constants.DefaultDailyGoal
	}
	goal := math.Min(1, float64(completedPomodoros)/float64(dailyGoal))
	raw := constants.ScorePomodoroWeight*goal + constants.ScoreCompletionWeight*completionRate
	return int(math.Round(raw * 100))
}

// firstMax returns the index of the first largest positive value, or -1.
func firstMax(values []int) int {
	best, bestIdx := 0, -1
	for i, v := range values {
		if v > best {
			best, bestIdx = v, i
		}
	}
	return bestIdx
}

// load fetches both tables for [start, end] and groups rows by date.
func (a *Aggregator) load(ctx context.Context, start, end string) (map[string][]models.Session, map[string][]models.Task, error) {
	sessions, err := a.sessions.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("load sessions %s..%s: %w", start, end, err)
	}
	tasks, err := a.tasks.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("load tasks %s..%s: %w", start, end, err)
	}

	byDateS := make(map[string][]models.Session)
	for _, s := range sessions {
		byDateS[s.Date] = append(byDateS[s.Date], s)
	}
	byDateT := make(map[string][]models.Task)
	for _, t := range tasks {
		byDateT[t.Date] = append(byDateT[t.Date], t)
	}
	return byDateS, byDateT, nil
}

func (a *Aggregator) daily(date string, sessions []models.Session, tasks []models.Task) DailyStats {
	d := DailyStats{Date: date}
	for _, s := range sessions {
		if s.IsWork() {
			d.TotalPomodoros++
			d.TotalFocusSeconds += s.DurationSeconds
			if s.Completed {
				d.CompletedPomodoros++
				d.Hourly[s.Hour]++
			}
			continue
		}
		d.BreakSeconds += s.DurationSeconds
	}
	for _, t := range tasks {
		d.Tasks.Total++
		if t.Completed {
			d.Tasks.Completed++
		}
	}
	d.CompletionRate = d.Tasks.CompletionRate()
	d.MostProductiveHour = firstMax(d.Hourly[:])
	d.Score = Score(d.CompletedPomodoros, a.dailyGoal, d.CompletionRate)
	return d
}

// Daily rolls up the sessions and tasks dated date.
func (a *Aggregator) Daily(ctx context.Context, date string) (DailyStats, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return DailyStats{}, err
	}
	sessions, tasks, err := a.load(ctx, date, date)
	if err != nil {
		return DailyStats{}, err
	}
	return a.daily(date, sessions[date], tasks[date]), nil
}

func (a *Aggregator) week(dates []string, sessions map[string][]models.Session, tasks map[string][]models.Task) WeeklyStats {
	w := WeeklyStats{Start: dates[0], End: dates[len(dates)-1]}
	completed := make([]int, len(dates))
	var scoreSum int
	for i, date := range dates {
		d := a.daily(date, sessions[date], tasks[date])
		w.Days = append(w.Days, d)
		w.Totals = w.Totals.add(d.Totals)
		completed[i] = d.CompletedPomodoros
		scoreSum += d.Score
	}
	w.CompletionRate = w.Tasks.CompletionRate()
	if idx := firstMax(completed); idx >= 0 {
		w.MostProductiveDay = dates[idx]
	}
	w.Score = int(math.Round(float64(scoreSum) / float64(len(dates))))
	return w
}

// Weekly sums the seven dailies of the Sunday-based week containing date.
func (a *Aggregator) Weekly(ctx context.Context, date string) (WeeklyStats, error) {
	dates, err := utils.WeekDates(date)
	if err != nil {
		return WeeklyStats{}, err
	}
	sessions, tasks, err := a.load(ctx, dates[0], dates[len(dates)-1])
	if err != nil {
		return WeeklyStats{}, err
	}
	return a.week(dates, sessions, tasks), nil
}

// Monthly aggregates each week bucket of the month, clipped to the month's days.
func (a *Aggregator) Monthly(ctx context.Context, year int, month time.Month) (MonthlyStats, error) {
	buckets, err := utils.WeeksOfMonth(year, month)
	if err != nil {
		return MonthlyStats{}, err
	}
	first := buckets[0].Start
	last := buckets[len(buckets)-1].End
	sessions, tasks, err := a.load(ctx, first, last)
	if err != nil {
		return MonthlyStats{}, err
	}

	m := MonthlyStats{Year: year, Month: month}
	completed := make([]int, len(buckets))
	for i, b := range buckets {
		w := a.week(b.Dates, sessions, tasks)
		m.Weeks = append(m.Weeks, w)
		m.Totals = m.Totals.add(w.Totals)
		completed[i] = w.CompletedPomodoros
	}
	m.CompletionRate = m.Tasks.CompletionRate()
	m.TopWeek = firstMax(completed)
	return m, nil
}

// Range computes hour-of-day productivity between start and end inclusive.
func (a *Aggregator) Range(ctx context.Context, start, end string) (RangeStats, error) {
	dates, err := utils.DateRange(start, end)
	if err != nil {
		return RangeStats{}, err
	}
	sessions, tasks, err := a.load(ctx, start, end)
	if err != nil {
		return RangeStats{}, err
	}

	r := RangeStats{Start: start, End: end}
	for _, date := range dates {
		d := a.daily(date, sessions[date], tasks[date])
		r.Totals = r.Totals.add(d.Totals)
		for h, n := range d.Hourly {
			r.Hourly[h] += n
		}
		if d.CompletedPomodoros > 0 {
			r.ActiveDays++
		}
	}
	r.CompletionRate = r.Tasks.CompletionRate()
	r.MostProductiveHour = firstMax(r.Hourly[:])
	return r, nil
}

// Streak counts consecutive days with a completed work session, ending on
// today or, when today has none yet, on the day before.
func (a *Aggregator) Streak(ctx context.Context, today string) (int, error) {
	active, err := a.sessions.ActiveDates(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active dates: %w", err)
	}
	return StreakFrom(active, today)
}

// StreakFrom computes the streak from distinct active dates.
func StreakFrom(active []string, today string) (int, error) {
	set := make(map[string]bool, len(active))
	for _, d := range active {
		set[d] = true
	}

	cursor := today
	if !set[cursor] {
		prev, err := utils.AddDays(today, -1)
		if err != nil {
			return 0, err
		}
		cursor = prev
	}

	streak := 0
	for set[cursor] {
		streak++
		prev, err := utils.AddDays(cursor, -1)
		if err != nil {
			return 0, err
		}
		cursor = prev
	}
	return streak, nil
}
