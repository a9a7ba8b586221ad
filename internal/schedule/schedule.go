// Package schedule implements recurrence rules for scheduled transactions.
package schedule

import (
	"fmt"
	"time"
)

// Frequency is the unit a recurrence rule repeats in.
type Frequency string

// Supported rule frequencies.
const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Rule describes a single recurrence: repeat every Interval units of
// Every, optionally pinned to a fixed day of the month.
type Rule struct {
	Every      Frequency `json:"every"`
	Interval   int       `json:"interval,omitempty"`
	DayOfMonth int       `json:"day_of_month,omitempty"`
}

// Schedule is an anchor date plus one or more recurrence rules. A date
// occurs on the schedule if any rule, evaluated relative to the anchor,
// matches it. The anchor date itself always occurs.
type Schedule struct {
	Anchor time.Time `json:"anchor"`
	Rules  []Rule    `json:"rules"`
}

// New creates a schedule anchored at the given date.
func New(anchor time.Time, rules ...Rule) *Schedule {
	return &Schedule{Anchor: anchor, Rules: rules}
}

// Validate checks that every rule is well formed.
func (s *Schedule) Validate() error {
	if s.Anchor.IsZero() {
		return fmt.Errorf("schedule has no anchor date")
	}
	for i, r := range s.Rules {
		switch r.Every {
		case Daily, Weekly, Monthly, Yearly:
		default:
			return fmt.Errorf("rule %d: unknown frequency %q", i, r.Every)
		}
		if r.Interval < 0 {
			return fmt.Errorf("rule %d: negative interval %d", i, r.Interval)
		}
		if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
			return fmt.Errorf("rule %d: invalid day of month %d", i, r.DayOfMonth)
		}
	}
	return nil
}

// OccursOn reports whether the schedule has an occurrence on the calendar
// day of the given date. Time-of-day is ignored.
func (s *Schedule) OccursOn(date time.Time) bool {
	anchor := dayOf(s.Anchor)
	day := dayOf(date)

	if day.Before(anchor) {
		return false
	}
	if day.Equal(anchor) {
		return true
	}

	for _, r := range s.Rules {
		if r.matches(anchor, day) {
			return true
		}
	}
	return false
}

func (r Rule) matches(anchor, day time.Time) bool {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Every {
	case Daily:
		d := daysBetween(anchor, day)
		return d%interval == 0
	case Weekly:
		d := daysBetween(anchor, day)
		return d%7 == 0 && (d/7)%interval == 0
	case Monthly:
		dom := r.DayOfMonth
		if dom == 0 {
			dom = anchor.Day()
		}
		if day.Day() != dom {
			return false
		}
		months := (day.Year()-anchor.Year())*12 + int(day.Month()-anchor.Month())
		return months >= 0 && months%interval == 0
	case Yearly:
		if day.Month() != anchor.Month() || day.Day() != anchor.Day() {
			return false
		}
		years := day.Year() - anchor.Year()
		return years >= 0 && years%interval == 0
	}
	return false
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
