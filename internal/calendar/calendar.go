// Package calendar decides whether alert delivery is permitted at a given
// instant, using a weekly schedule of whole-hour windows in a fixed timezone.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSchedule = errors.New("invalid business hours schedule")

// Window is a half-open [Start, End) range of local hours.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// Schedule maps weekdays to their open window. Missing days are closed.
type Schedule map[time.Weekday]Window

type Calendar struct {
	loc      *time.Location
	schedule Schedule
}

func New(loc *time.Location, schedule Schedule) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	copied := make(Schedule, len(schedule))
	for d, w := range schedule {
		copied[d] = w
	}
	return &Calendar{loc: loc, schedule: copied}
}

// Load resolves the IANA timezone name and parses the weekly schedule.
func Load(timezone, hours string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar: load timezone %q: %w", timezone, err)
	}
	schedule, err := ParseSchedule(hours)
	if err != nil {
		return nil, err
	}
	return New(loc, schedule), nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) Schedule() Schedule {
	out := make(Schedule, len(c.schedule))
	for d, w := range c.schedule {
		out[d] = w
	}
	return out
}

// IsOpen reports whether instant falls inside the configured window for its
// local weekday. Only the hour is considered.
func (c *Calendar) IsOpen(instant time.Time) bool {
	local := instant.In(c.loc)
	w, ok := c.schedule[local.Weekday()]
	if !ok {
		return false
	}
	return w.contains(local.Hour())
}

// DescribeNextOpen returns a human readable hint about the next opening.
func (c *Calendar) DescribeNextOpen(instant time.Time) string {
	if c.IsOpen(instant) {
		return "Currently open"
	}
	local := instant.In(c.loc)
	cursor := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, c.loc)
	for i := 1; i <= 8*24; i++ {
		next := cursor.Add(time.Duration(i) * time.Hour)
		if c.IsOpen(next) {
			return "Next: " + next.Format("Monday 3:04 PM MST")
		}
	}
	return "No business hours configured"
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseSchedule reads entries like "mon-fri=8-22,sat=8-18,sunday=10-14".
// A day range wraps through the week ("fri-mon"). Later entries win.
func ParseSchedule(raw string) (Schedule, error) {
	out := Schedule{}
	raw = strings.ReplaceAll(raw, ";", ",")
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		days, hours, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("%w: entry %q missing '='", ErrInvalidSchedule, entry)
		}
		weekdays, err := parseDays(days)
		if err != nil {
			return nil, err
		}
		w, err := parseWindow(hours)
		if err != nil {
			return nil, err
		}
		for _, d := range weekdays {
			out[d] = w
		}
	}
	return out, nil
}

func parseDays(raw string) ([]time.Weekday, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	from, to, isRange := strings.Cut(raw, "-")
	start, ok := dayNames[strings.TrimSpace(from)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, from)
	}
	if !isRange {
		return []time.Weekday{start}, nil
	}
	end, ok := dayNames[strings.TrimSpace(to)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, to)
	}
	var out []time.Weekday
	for d := start; ; d = (d + 1) % 7 {
		out = append(out, d)
		if d == end {
			break
		}
	}
	return out, nil
}

func parseWindow(raw string) (Window, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return Window{}, fmt.Errorf("%w: hours %q must be start-end", ErrInvalidSchedule, raw)
	}
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return Window{}, fmt.Errorf("%w: start hour %q", ErrInvalidSchedule, from)
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return Window{}, fmt.Errorf("%w: end hour %q", ErrInvalidSchedule, to)
	}
	if start < 0 || end > 24 || start >= end {
		return Window{}, fmt.Errorf("%w: hours %d-%d out of range", ErrInvalidSchedule, start, end)
	}
	return Window{Start: start, End: end}, nil
}

// String renders the schedule in ParseSchedule's format, Monday first.
func (s Schedule) String() string {
	days := make([]time.Weekday, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return (days[i]+6)%7 < (days[j]+6)%7
	})
	parts := make([]string, 0, len(days))
	for _, d := range days {
		w := s[d]
		parts = append(parts, fmt.Sprintf("%s=%d-%d", strings.ToLower(d.String()[:3]), w.Start, w.End))
	}
	return strings.Join(parts, ",")
}
