// Package view implements the space missions search page: it owns the
// filter criteria, triggers the page-data load on activation and derives
// the filtered launch list from the latest store snapshot.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/space-missions/internal/effects"
	"github.com/rcliao/space-missions/internal/filter"
	"github.com/rcliao/space-missions/internal/model"
	"github.com/rcliao/space-missions/internal/state"
)

// ErrInactive is returned when waiting on a view that is not active.
var ErrInactive = errors.New("view is not active")

// Options configures a SpaceMissions view.
type Options struct {
	// Location is the zone launch years are derived in. Defaults to time.Local.
	Location *time.Location
	Logger   *zap.Logger
}

// Props is what the page renders.
type Props struct {
	Filters          model.Criteria    `json:"filters"`
	LaunchPads       []model.LaunchPad `json:"launchpads"`
	AvailableYears   []int             `json:"available_years"`
	FilteredLaunches []model.Launch    `json:"launches"`
	Loading          bool              `json:"loading"`
	Err              error             `json:"-"`
}

// selectors are the snapshot reads the page is connected to.
type selectors struct {
	loading    func(state.State) bool
	launches   func(state.State) []model.Launch
	launchPads func(state.State) []model.LaunchPad
	years      func(state.State) []int
	err        func(state.State) error
}

// SpaceMissions is the search page container.
type SpaceMissions struct {
	store  *state.Store
	loader *effects.Loader
	loc    *time.Location
	logger *zap.Logger
	sel    selectors

	mu        sync.Mutex
	active    bool
	filters   filter.Holder
	requestID string
	// done is closed by Deactivate to release waiters of the current
	// activation.
	done chan struct{}
}

// New wires the view to store and loader. Initialization runs as ordered
// steps: bind the store, connect selectors, then attach the loader.
func New(store *state.Store, loader *effects.Loader, opts Options) (*SpaceMissions, error) {
	v := &SpaceMissions{
		store:  store,
		loader: loader,
		loc:    opts.Location,
		logger: opts.Logger,
	}
	if v.loc == nil {
		v.loc = time.Local
	}
	if v.logger == nil {
		v.logger = zap.NewNop()
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"store", v.bindStore},
		{"connect", v.connect},
		{"effects", v.attachEffects},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
		v.logger.Debug("view init step done", zap.String("step", step.name))
	}
	return v, nil
}

func (v *SpaceMissions) bindStore() error {
	if v.store == nil {
		return errors.New("store is required")
	}
	return nil
}

// connect maps the page props onto the state selectors.
func (v *SpaceMissions) connect() error {
	v.sel = selectors{
		loading:    state.SelectLoading,
		launches:   state.SelectLaunches,
		launchPads: state.SelectLaunchPads,
		years:      state.SelectAvailableYears,
		err:        state.SelectError,
	}
	return nil
}

func (v *SpaceMissions) attachEffects() error {
	if v.loader == nil {
		return nil
	}
	v.store.Use(v.loader.Middleware())
	return nil
}

// Activate resets the filters and requests page data. Further calls are
// no-ops until Deactivate.
func (v *SpaceMissions) Activate(ctx context.Context) {
	v.mu.Lock()
	if v.active {
		v.mu.Unlock()
		return
	}
	v.active = true
	v.filters.Initialize()
	v.requestID = state.NewRequestID()
	v.done = make(chan struct{})
	id := v.requestID
	v.mu.Unlock()

	if v.loader != nil {
		v.loader.Start(ctx)
	}
	v.logger.Debug("view activated", zap.String("request_id", id))
	v.store.Dispatch(state.RequestPageData{RequestID: id})
}

// Deactivate cancels any in-flight load and discards the filters.
func (v *SpaceMissions) Deactivate() {
	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return
	}
	v.active = false
	v.filters = filter.Holder{}
	v.requestID = ""
	close(v.done)
	v.done = nil
	v.mu.Unlock()

	if v.loader != nil {
		v.loader.Stop()
	}
	v.logger.Debug("view deactivated")
}

// ApplyFilters replaces the current criteria with c.
func (v *SpaceMissions) ApplyFilters(c model.Criteria) {
	v.mu.Lock()
	v.filters.Replace(c)
	v.mu.Unlock()
}

// Filters returns the current criteria.
func (v *SpaceMissions) Filters() model.Criteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Criteria()
}

// Render derives the page props from the latest snapshot.
func (v *SpaceMissions) Render() Props {
	return v.render(v.store.Snapshot())
}

func (v *SpaceMissions) render(snap state.State) Props {
	criteria := v.Filters()
	return Props{
		Filters:          criteria,
		LaunchPads:       v.sel.launchPads(snap),
		AvailableYears:   v.sel.years(snap),
		FilteredLaunches: filter.Apply(v.sel.launches(snap), criteria, v.loc),
		Loading:          v.sel.loading(snap),
		Err:              v.sel.err(snap),
	}
}

// WaitLoaded blocks until the load started by Activate settles and returns
// the rendered props along with the load error, if any. It returns
// ErrInactive when the view is deactivated before the load settles.
func (v *SpaceMissions) WaitLoaded(ctx context.Context) (Props, error) {
	ch, cancel := v.store.Subscribe()
	defer cancel()

	v.mu.Lock()
	active, id, done := v.active, v.requestID, v.done
	v.mu.Unlock()
	if !active {
		return Props{}, ErrInactive
	}

	for {
		snap := v.store.Snapshot()
		if snap.RequestID == id && !snap.Loading {
			p := v.render(snap)
			return p, p.Err
		}

		select {
		case <-ch:
		case <-done:
			return Props{}, ErrInactive
		case <-ctx.Done():
			return Props{}, ctx.Err()
		}
	}
}
