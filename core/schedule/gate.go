// Package schedule decides when the weekly poll fires.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Gate fires at most once per occurrence of the designated weekday.
//
// The gate is consulted on every poll cycle. The first consultation on the
// designated day moves it from pending to fired and returns true; further
// consultations that day return false. The first consultation on any other day
// resets it to pending. There is no catch-up: a day with no consultation is a
// day without a poll.
//
// A Gate is owned by a single goroutine and is not safe for concurrent use.
type Gate struct {
	weekday  time.Weekday
	loc      *time.Location
	firedDay string
	fired    bool
}

// NewGate creates a gate for the given weekday, evaluated in loc.
// A nil loc means time.Local.
func NewGate(weekday time.Weekday, loc *time.Location) *Gate {
	if loc == nil {
		loc = time.Local
	}
	return &Gate{weekday: weekday, loc: loc}
}

// Weekday returns the designated weekday.
func (g *Gate) Weekday() time.Weekday {
	return g.weekday
}

// Consult reports whether the scheduled action should run now.
func (g *Gate) Consult(now time.Time) bool {
	local := now.In(g.loc)
	if local.Weekday() != g.weekday {
		g.fired = false
		g.firedDay = ""
		return false
	}

	// A week-long gap between consultations lands on the next occurrence of
	// the weekday without ever observing another day in between.
	day := local.Format(time.DateOnly)
	if g.fired && g.firedDay == day {
		return false
	}

	g.fired = true
	g.firedDay = day
	return true
}

// Fired reports whether the gate is in the fired state.
func (g *Gate) Fired() bool {
	return g.fired
}

var dayPrefixes = [...]string{
	time.Sunday:    "So",
	time.Monday:    "Mo",
	time.Tuesday:   "Di",
	time.Wednesday: "Mi",
	time.Thursday:  "Do",
	time.Friday:    "Fr",
	time.Saturday:  "Sa",
}

// DayPrefix returns the German two-letter abbreviation of the weekday.
func DayPrefix(d time.Weekday) string {
	return dayPrefixes[d]
}

// PollQuestion builds the scheduled poll's question for the given day,
// e.g. "DoDo" on a Thursday.
func PollQuestion(d time.Weekday) string {
	return "Do" + DayPrefix(d)
}

// ParseWeekday accepts English names ("thursday", "thu"), German prefixes
// ("do") and numbers 0-6 with Sunday as 0.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("weekday is empty")
	}

	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday %d out of range 0-6", n)
		}
		return time.Weekday(n), nil
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] || v == strings.ToLower(dayPrefixes[d]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
