// Package state holds the page data in an explicit container: reads go
// through selectors over immutable snapshots, writes go through actions
// processed by a reducer.
package state

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/space-missions/internal/model"
)

// State is one snapshot of the page data. Snapshots are never modified
// after they are published.
type State struct {
	Loading        bool
	Launches       []model.Launch
	LaunchPads     []model.LaunchPad
	AvailableYears []int
	Err            error
	RequestID      string
	LoadedAt       time.Time
}

// Initial returns the state before any data has been requested.
// Collections are empty, never nil.
func Initial() State {
	return State{
		Launches:       []model.Launch{},
		LaunchPads:     []model.LaunchPad{},
		AvailableYears: []int{},
	}
}

// Action is an intent dispatched to the store.
type Action interface {
	Type() string
}

// RequestPageData asks for launches and launch pads to be (re)loaded.
type RequestPageData struct {
	RequestID string
}

// PageDataLoaded carries a successful load.
type PageDataLoaded struct {
	RequestID      string
	Launches       []model.Launch
	LaunchPads     []model.LaunchPad
	AvailableYears []int
	LoadedAt       time.Time
}

// PageDataFailed reports a failed load.
type PageDataFailed struct {
	RequestID string
	Err       error
}

func (RequestPageData) Type() string { return "spacemissions/REQUEST_PAGE_DATA" }
func (PageDataLoaded) Type() string  { return "spacemissions/PAGE_DATA_LOADED" }
func (PageDataFailed) Type() string  { return "spacemissions/PAGE_DATA_FAILED" }

// NewRequestID returns a fresh id for a RequestPageData action.
func NewRequestID() string {
	return ulid.Make().String()
}

// Reducer computes the next state from the current one and an action.
type Reducer func(State, Action) State

// Reduce is the page-data reducer. Results for anything other than the
// latest request are ignored.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case RequestPageData:
		s.Loading = true
		s.Err = nil
		s.RequestID = a.RequestID
	case PageDataLoaded:
		if a.RequestID != s.RequestID {
			return s
		}
		s.Loading = false
		s.Err = nil
		s.Launches = orEmpty(a.Launches)
		s.LaunchPads = orEmpty(a.LaunchPads)
		s.AvailableYears = orEmpty(a.AvailableYears)
		s.LoadedAt = a.LoadedAt
	case PageDataFailed:
		if a.RequestID != s.RequestID {
			return s
		}
		s.Loading = false
		s.Err = a.Err
	}
	return s
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// SelectLoading reports whether a load is in flight.
func SelectLoading(s State) bool { return s.Loading }

// SelectLaunches returns the loaded launches.
func SelectLaunches(s State) []model.Launch { return orEmpty(s.Launches) }

// SelectLaunchPads returns the loaded launch pads.
func SelectLaunchPads(s State) []model.LaunchPad { return orEmpty(s.LaunchPads) }

// SelectAvailableYears returns the years present in the loaded launches.
func SelectAvailableYears(s State) []int { return orEmpty(s.AvailableYears) }

// SelectError returns the last load error, if any.
func SelectError(s State) error { return s.Err }
