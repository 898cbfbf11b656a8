// Package schedule resolves which projects are active on a calendar date
// and lays projects out on a Monday-first month grid.
package schedule

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/erazemk/magacin/internal/model"
)

// ProjectDirectory lists every known project.
type ProjectDirectory interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
}

// Index answers date queries over a ProjectDirectory. It keeps no state of
// its own, so every query sees the current projects.
type Index struct {
	projects ProjectDirectory
}

// NewIndex returns an Index over projects.
func NewIndex(projects ProjectDirectory) *Index {
	return &Index{projects: projects}
}

// ProjectsActiveOn returns the projects whose inclusive date range covers
// date.
func (x *Index) ProjectsActiveOn(ctx context.Context, date civil.Date) ([]model.Project, error) {
	if !date.IsValid() {
		return nil, model.Invalid("date", "%q is not a calendar date", date.String())
	}
	projects, err := x.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return activeOn(projects, date), nil
}

func activeOn(projects []model.Project, date civil.Date) []model.Project {
	active := []model.Project{}
	for _, p := range projects {
		if p.ActiveOn(date) {
			active = append(active, p)
		}
	}
	return active
}

// Day is one cell of a month grid.
type Day struct {
	Date     civil.Date      `json:"date"`
	Weekday  time.Weekday    `json:"weekday"`
	Projects []model.Project `json:"projects"`
}

// MonthGrid is a month laid out on Monday-first weeks.
type MonthGrid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	// Offset is the number of blank cells before the first day.
	Offset int   `json:"offset"`
	Days   []Day `json:"days"`
	// Legend lists every project, active this month or not.
	Legend []model.Project `json:"legend"`
}

// Month builds the grid for the given month.
func (x *Index) Month(ctx context.Context, year int, month time.Month) (*MonthGrid, error) {
	if month < time.January || month > time.December {
		return nil, model.Invalid("month", "%d is not a month", month)
	}
	projects, err := x.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if projects == nil {
		projects = []model.Project{}
	}

	first := civil.Date{Year: year, Month: month, Day: 1}
	grid := &MonthGrid{
		Year:   year,
		Month:  month,
		Offset: LeadingBlanks(first),
		Legend: projects,
	}
	for d := range DaysIn(year, month) {
		date := first.AddDays(d)
		grid.Days = append(grid.Days, Day{
			Date:     date,
			Weekday:  date.In(time.UTC).Weekday(),
			Projects: activeOn(projects, date),
		})
	}
	return grid, nil
}

// LeadingBlanks returns how many cells precede date's weekday in a week
// that starts on Monday.
func LeadingBlanks(date civil.Date) int {
	return (int(date.In(time.UTC).Weekday()) + 6) % 7
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextMonth returns the first day of the month after d's.
func NextMonth(d civil.Date) civil.Date {
	t := time.Date(d.Year, d.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return civil.DateOf(t)
}

// PrevMonth returns the first day of the month before d's.
func PrevMonth(d civil.Date) civil.Date {
	t := time.Date(d.Year, d.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return civil.DateOf(t)
}
