// Package schedule holds the time rules of the event planner: advisory
// checks on an event's timestamps and calendar bucketing of events.
package schedule

import "time"

// Warning messages. They are advisory; an event is saved regardless.
const (
	WarnEndNotAfterStart = "End time should be after start time"
	WarnDoorsAfterStart  = "Doors open should not be after start time"
	WarnDoorsAfterEnd    = "Doors open should not be after end time"
)

// CheckTimes compares the optional start, end and doors-open times pairwise
// and returns a warning per violated rule, in a fixed order. A nil time
// skips every rule that involves it.
func CheckTimes(start, end, doorsOpen *time.Time) []string {
	warnings := []string{}
	if start != nil && end != nil && !end.After(*start) {
		warnings = append(warnings, WarnEndNotAfterStart)
	}
	if doorsOpen != nil && start != nil && doorsOpen.After(*start) {
		warnings = append(warnings, WarnDoorsAfterStart)
	}
	if doorsOpen != nil && end != nil && doorsOpen.After(*end) {
		warnings = append(warnings, WarnDoorsAfterEnd)
	}
	return warnings
}
