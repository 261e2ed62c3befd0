package filter

import (
	"strings"
	"time"

	"github.com/rcliao/space-missions/internal/model"
)

// stage is one conditional narrowing step.
type stage struct {
	active bool
	keep   func(model.Launch) bool
}

// Apply returns the launches matching c, in input order. Active dimensions
// combine with AND. launches is never modified; when no dimension is
// active the input slice itself is returned. loc selects the zone used to
// derive a launch's calendar year and defaults to time.Local.
func Apply(launches []model.Launch, c model.Criteria, loc *time.Location) []model.Launch {
	if launches == nil {
		return []model.Launch{}
	}
	if loc == nil {
		loc = time.Local
	}

	stages := []stage{
		{active: c.Keywords != "", keep: keywordMatcher(c.Keywords)},
		{active: c.LaunchPad != model.Any, keep: padMatcher(c.LaunchPad)},
		// Only the lower bound gates the year stage; an Any upper bound
		// fails to parse and then matches nothing.
		{active: c.MinYear != model.Any, keep: yearMatcher(c.MinYear, c.MaxYear, loc)},
	}

	out := launches
	owned := false
	for _, st := range stages {
		if !st.active {
			continue
		}
		if !owned {
			next := make([]model.Launch, 0, len(out))
			for _, l := range out {
				if st.keep(l) {
					next = append(next, l)
				}
			}
			out = next
			owned = true
			continue
		}
		n := 0
		for _, l := range out {
			if st.keep(l) {
				out[n] = l
				n++
			}
		}
		out = out[:n]
	}
	return out
}

// keywordMatcher matches the flight number, the rocket name or the
// primary payload id. Text comparisons are case-sensitive substring checks.
func keywordMatcher(keywords string) func(model.Launch) bool {
	flight, numeric := parseLeadingInt(keywords)
	return func(l model.Launch) bool {
		if numeric && l.FlightNumber == flight {
			return true
		}
		if strings.Contains(l.Rocket.RocketName, keywords) {
			return true
		}
		if id, ok := l.PrimaryPayloadID(); ok && strings.Contains(id, keywords) {
			return true
		}
		return false
	}
}

func padMatcher(siteID string) func(model.Launch) bool {
	return func(l model.Launch) bool {
		return l.LaunchSite.SiteID == siteID
	}
}

// yearMatcher keeps launches whose year lies in [minYear, maxYear].
// A bound that does not parse makes every comparison against it false.
func yearMatcher(minYear, maxYear string, loc *time.Location) func(model.Launch) bool {
	lo, loOK := parseLeadingInt(minYear)
	hi, hiOK := parseLeadingInt(maxYear)
	return func(l model.Launch) bool {
		if !loOK || !hiOK {
			return false
		}
		year := LaunchYear(l, loc)
		return year >= lo && year <= hi
	}
}

// LaunchYear is the calendar year of the launch date in loc.
func LaunchYear(l model.Launch, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return l.LaunchDateLocal.In(loc).Year()
}
