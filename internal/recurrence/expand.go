// Package recurrence expands recurring event templates into concrete
// instances inside a time window. It has no storage or clock dependencies.
package recurrence

import (
	"time"
)

type Type string

const (
	None    Type = "none"
	Daily   Type = "daily"
	Weekly  Type = "weekly"
	Monthly Type = "monthly"
	Yearly  Type = "yearly"
)

// Template is the recurring event definition instances are generated from.
type Template struct {
	ID                 string
	TenantID           string
	TeamID             *string
	Title              string
	Description        string
	Location           string
	StartTime          time.Time
	EndTime            *time.Time
	RecurrenceType     Type
	RecurrenceInterval int
	RecurrenceEndDate  *time.Time
	WeeklyDays         []time.Weekday
	MonthlyDay         *int
}

// Instance is one materialized occurrence. It never recurs itself.
type Instance struct {
	ParentEventID  string
	TenantID       string
	TeamID         *string
	Title          string
	Description    string
	Location       string
	StartTime      time.Time
	EndTime        *time.Time
	RecurrenceType Type
}

// Expand returns the occurrences of t that start in [windowStart, limit],
// where limit is the earlier of windowEnd and t.RecurrenceEndDate. Walking
// starts at windowStart, so occurrence times take windowStart's clock time.
func Expand(t Template, windowStart, windowEnd time.Time) []Instance {
	limit := windowEnd
	if t.RecurrenceEndDate != nil && t.RecurrenceEndDate.Before(limit) {
		limit = *t.RecurrenceEndDate
	}
	if windowStart.After(limit) {
		return nil
	}

	interval := t.RecurrenceInterval
	if interval < 1 {
		interval = 1
	}

	var starts []time.Time
	switch t.RecurrenceType {
	case Daily:
		starts = step(windowStart, limit, func(c time.Time) time.Time { return c.AddDate(0, 0, interval) })
	case Weekly:
		if len(t.WeeklyDays) == 0 {
			starts = step(windowStart, limit, func(c time.Time) time.Time { return c.AddDate(0, 0, 7*interval) })
		} else {
			starts = weeklyOn(windowStart, limit, interval, t.WeeklyDays)
		}
	case Monthly:
		if t.MonthlyDay == nil {
			starts = step(windowStart, limit, func(c time.Time) time.Time { return c.AddDate(0, interval, 0) })
		} else {
			starts = monthlyOn(windowStart, limit, interval, *t.MonthlyDay)
		}
	case Yearly:
		starts = step(windowStart, limit, func(c time.Time) time.Time { return c.AddDate(interval, 0, 0) })
	default:
		starts = []time.Time{windowStart}
	}

	var duration *time.Duration
	if t.EndTime != nil {
		d := t.EndTime.Sub(t.StartTime)
		duration = &d
	}

	instances := make([]Instance, 0, len(starts))
	for _, start := range starts {
		inst := Instance{
			ParentEventID:  t.ID,
			TenantID:       t.TenantID,
			TeamID:         t.TeamID,
			Title:          t.Title,
			Description:    t.Description,
			Location:       t.Location,
			StartTime:      start,
			RecurrenceType: None,
		}
		if duration != nil {
			end := start.Add(*duration)
			inst.EndTime = &end
		}
		instances = append(instances, inst)
	}
	return instances
}

func step(from, limit time.Time, next func(time.Time) time.Time) []time.Time {
	var out []time.Time
	for c := from; !c.After(limit); c = next(c) {
		out = append(out, c)
	}
	return out
}

// weeklyOn walks day by day through every interval-th week, counting weeks
// from windowStart, and keeps the days whose weekday is listed.
func weeklyOn(from, limit time.Time, interval int, days []time.Weekday) []time.Time {
	wanted := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		wanted[d] = true
	}

	var out []time.Time
	for i := 0; ; i++ {
		c := from.AddDate(0, 0, i)
		if c.After(limit) {
			return out
		}
		if (i/7)%interval != 0 {
			continue
		}
		if wanted[c.Weekday()] {
			out = append(out, c)
		}
	}
}

// monthlyOn yields the given day of every interval-th month at from's clock
// time. Months without that day are skipped.
func monthlyOn(from, limit time.Time, interval, day int) []time.Time {
	if day < 1 || day > 31 {
		return nil
	}

	var out []time.Time
	year, month, _ := from.Date()
	for i := 0; ; i += interval {
		first := time.Date(year, month+time.Month(i), 1, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
		if first.After(limit) {
			return out
		}
		c := first.AddDate(0, 0, day-1)
		if c.Month() != first.Month() || c.Before(from) || c.After(limit) {
			continue
		}
		out = append(out, c)
	}
}
