// Package workitem defines the tracked ticket model shared by every stage of a
// sprintstat run: work items, their classification fields, and iterations.
package workitem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// dateLayout is the ISO calendar date layout used for run ids and day labels.
const dateLayout = time.DateOnly

// ErrNegativeDuration is returned when an iteration spans a negative number of days.
var ErrNegativeDuration = errors.New("iteration duration must be non-negative")

// Field is a named classification option, such as a status or a team.
// Two fields are equal when their values match; color is presentation only.
type Field struct {
	Value string `json:"value"           yaml:"value"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Equal reports whether both fields carry the same value.
func (f Field) Equal(other Field) bool {
	return f.Value == other.Value
}

// Item is a single tracked ticket. Absent classification fields are nil.
type Item struct {
	Iteration  *Field  `json:"iteration,omitempty"  yaml:"iteration,omitempty"`
	Team       *Field  `json:"team,omitempty"       yaml:"team,omitempty"`
	Status     *Field  `json:"status,omitempty"     yaml:"status,omitempty"`
	QA         *Field  `json:"qa,omitempty"         yaml:"qa,omitempty"`
	Complexity *Field  `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	Assignees  []Field `json:"assignees,omitempty"  yaml:"assignees,omitempty"`
}

// PrimaryAssignee returns the first assignee, or nil when the item is unassigned.
func (it Item) PrimaryAssignee() *Field {
	if len(it.Assignees) == 0 {
		return nil
	}

	return &it.Assignees[0]
}

// Iteration is a fixed-length time box covering [StartDate, StartDate+Duration] inclusive.
type Iteration struct {
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	Duration  int       `json:"duration"`
}

// Validate checks the iteration invariants.
func (it Iteration) Validate() error {
	if it.Duration < 0 {
		return fmt.Errorf("%w: %s has %d", ErrNegativeDuration, it.Title, it.Duration)
	}

	return nil
}

// Days returns the calendar days of the iteration, Duration+1 entries.
func (it Iteration) Days() []time.Time {
	days := make([]time.Time, 0, it.Duration+1)

	for offset := 0; offset <= it.Duration; offset++ {
		days = append(days, Day(it.StartDate, offset))
	}

	return days
}

// Started reports whether the iteration starts on or before the given day.
func (it Iteration) Started(today time.Time) bool {
	return !Day(it.StartDate, 0).After(Day(today, 0))
}

// Active reports whether today falls inside the iteration's day range.
func (it Iteration) Active(today time.Time) bool {
	day := Day(today, 0)
	end := Day(it.StartDate, it.Duration+1)

	return it.Started(today) && day.Before(end)
}

// Source fetches work items and their field metadata from a project-management backend.
// Implementations fully materialize paginated results before returning.
type Source interface {
	// FetchItems returns every tracked item of the project.
	FetchItems(ctx context.Context) ([]Item, error)
	// FetchIterations returns the project iterations; openOnly drops completed ones.
	FetchIterations(ctx context.Context, openOnly bool) ([]Iteration, error)
	// FetchEnumeration returns the options of a single-select field, in definition order.
	FetchEnumeration(ctx context.Context, fieldName string) ([]Field, error)
}

// Day returns the calendar day offset days after t, normalized to midnight UTC.
// Offsets are whole calendar days, not elapsed durations.
func Day(t time.Time, offset int) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day+offset, 0, 0, 0, 0, time.UTC)
}

// DayLabel formats a day as an ISO calendar date (YYYY-MM-DD).
func DayLabel(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD) as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}

	return t, nil
}

// Clean turns a display name into a path-safe scope name: lowercased, spaces stripped.
func Clean(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}
