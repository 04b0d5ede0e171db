package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/venue-booking/internal/model"
)

// View selects the calendar layout.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewYear  View = "year"
)

const dateLayout = "2006-01-02"

// monthGridDays is six full weeks, enough for any month starting on any weekday.
const monthGridDays = 42

// ParseView accepts month, week or year (case-insensitive); empty means month.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewMonth, nil
	case ViewMonth, ViewWeek, ViewYear:
		return v, nil
	default:
		return "", fmt.Errorf("invalid view %q", s)
	}
}

// Day is one cell of a month or week grid.
type Day struct {
	Date     string        `json:"date"`
	InPeriod bool          `json:"in_period"`
	Events   []model.Event `json:"events"`
}

// Month is one cell of a year view.
type Month struct {
	Month  string        `json:"month"` // YYYY-MM
	Count  int           `json:"count"`
	Events []model.Event `json:"events"`
}

// Calendar is the bucketed view of a period. From is inclusive and To
// exclusive, both as local dates.
type Calendar struct {
	View     View    `json:"view"`
	Timezone string  `json:"timezone"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Days     []Day   `json:"days,omitempty"`
	Months   []Month `json:"months,omitempty"`
}

// Range returns the [from, to) interval a view covers around anchor, in loc.
// Month views start on the Sunday on or before the 1st and span 42 days;
// week views start on the Sunday on or before anchor.
func Range(view View, anchor time.Time, loc *time.Location) (time.Time, time.Time) {
	a := anchor.In(loc)
	switch view {
	case ViewWeek:
		from := startOfWeek(time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc))
		return from, from.AddDate(0, 0, 7)
	case ViewYear:
		from := time.Date(a.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0)
	default:
		from := startOfWeek(time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, loc))
		return from, from.AddDate(0, 0, monthGridDays)
	}
}

// Build buckets events by the local date of their start. Events outside the
// view's range are ignored; within a bucket events are ordered by start.
func Build(view View, anchor time.Time, loc *time.Location, events []model.Event) Calendar {
	from, to := Range(view, anchor, loc)
	cal := Calendar{
		View:     view,
		Timezone: loc.String(),
		From:     from.Format(dateLayout),
		To:       to.Format(dateLayout),
	}

	sorted := make([]model.Event, 0, len(events))
	for _, e := range events {
		if s := e.Start.In(loc); !s.Before(from) && s.Before(to) {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	if view == ViewYear {
		cal.Months = make([]Month, 12)
		for i := range cal.Months {
			cal.Months[i] = Month{Month: from.AddDate(0, i, 0).Format("2006-01"), Events: []model.Event{}}
		}
		for _, e := range sorted {
			m := &cal.Months[int(e.Start.In(loc).Month())-1]
			m.Count++
			m.Events = append(m.Events, e)
		}
		return cal
	}

	anchorMonth := anchor.In(loc).Month()
	index := map[string]int{}
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(cal.Days)
		cal.Days = append(cal.Days, Day{
			Date:     key,
			InPeriod: view == ViewWeek || d.Month() == anchorMonth,
			Events:   []model.Event{},
		})
	}
	for _, e := range sorted {
		if i, ok := index[e.Start.In(loc).Format(dateLayout)]; ok {
			cal.Days[i].Events = append(cal.Days[i].Events, e)
		}
	}
	return cal
}

// ParseDate reads a YYYY-MM-DD anchor in loc; empty means today.
func ParseDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
}

func startOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}
