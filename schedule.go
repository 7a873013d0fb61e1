package main

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const dateLayout = "2006-01-02"

var weekdayLabels = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
	"SUN": time.Sunday,
}

// ScheduledDate is a publish date paired with its weekday label
type ScheduledDate struct {
	Date  time.Time
	Label string
}

// ParseWeekdays maps configured labels (MON..SUN) to weekdays
func ParseWeekdays(labels []string) (map[time.Weekday]string, error) {
	if len(labels) == 0 {
		return nil, &ConfigError{Field: "schedule.weekdays", Message: "at least one weekday is required"}
	}
	out := make(map[time.Weekday]string, len(labels))
	for _, raw := range labels {
		label := strings.ToUpper(strings.TrimSpace(raw))
		day, ok := weekdayLabels[label]
		if !ok {
			return nil, &ConfigError{Field: "schedule.weekdays", Message: fmt.Sprintf("unknown weekday %q", raw)}
		}
		out[day] = label
	}
	return out, nil
}

// civilDate truncates t to a calendar date. Dates are kept at UTC midnight so
// day arithmetic never crosses a DST transition.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseBaseDate parses an ISO 8601 calendar date
func ParseBaseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &ConfigError{Field: "base-date", Message: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", raw)}
	}
	return t, nil
}

// TodayIn returns the current calendar date in the named time zone
func TodayIn(timezone string, now time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, &ConfigError{Field: "timezone", Message: err.Error()}
	}
	return civilDate(now.In(loc)), nil
}

// NextScheduledDates walks forward from the day after base and returns the
// first count dates whose weekday is configured, in ascending order
func NextScheduledDates(base time.Time, weekdays map[time.Weekday]string, count int) []ScheduledDate {
	if len(weekdays) == 0 || count <= 0 {
		return nil
	}
	out := make([]ScheduledDate, 0, count)
	day := civilDate(base)
	for len(out) < count {
		day = day.AddDate(0, 0, 1)
		if label, ok := weekdays[day.Weekday()]; ok {
			out = append(out, ScheduledDate{Date: day, Label: label})
		}
	}
	return out
}

// SeriesFor picks the series of a slot: the rotation starts at the ISO week
// of anchor and advances by one series per slot
func SeriesFor(anchor time.Time, slotIndex int, series []string) string {
	n := len(series)
	_, week := anchor.ISOWeek()
	return series[(week%n+slotIndex)%n]
}

// BuildSchedule computes the batch of slots following base. Every slot of a
// batch rotates from the ISO week of the first scheduled date, so slots never
// share a series as long as the batch is not larger than the series list.
func BuildSchedule(base time.Time, settings *Settings, series []string) ([]ScheduleSlot, error) {
	weekdays, err := ParseWeekdays(settings.Schedule.Weekdays)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, &ConfigError{Field: "series", Message: "at least one series is required"}
	}

	dates := NextScheduledDates(base, weekdays, settings.Schedule.SlotCount)
	if len(dates) == 0 {
		return nil, nil
	}

	anchor := dates[0].Date
	slots := make([]ScheduleSlot, len(dates))
	for i, d := range dates {
		slots[i] = ScheduleSlot{
			Index:        i,
			PublishDate:  d.Date,
			WeekdayLabel: d.Label,
			Series:       SeriesFor(anchor, i, series),
		}
	}
	return slots, nil
}
