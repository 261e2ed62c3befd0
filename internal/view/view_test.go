package view

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rcliao/space-missions/internal/catalog"
	"github.com/rcliao/space-missions/internal/effects"
	"github.com/rcliao/space-missions/internal/model"
	"github.com/rcliao/space-missions/internal/spacex"
	"github.com/rcliao/space-missions/internal/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

type countingSource struct {
	calls atomic.Int32
	data  spacex.PageData
	gate  chan struct{}
}

func (s *countingSource) FetchPageData(ctx context.Context) (spacex.PageData, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return spacex.PageData{}, ctx.Err()
		}
	}
	return s.data, nil
}

func pageData() spacex.PageData {
	return spacex.PageData{
		Launches: []model.Launch{
			{
				FlightNumber:    1,
				Rocket:          model.Rocket{RocketName: "Falcon 1"},
				Payloads:        []model.Payload{{PayloadID: "DemoSat"}},
				LaunchSite:      model.LaunchSite{SiteID: "Kwajalein"},
				LaunchDateLocal: time.Date(2006, 3, 24, 12, 0, 0, 0, time.UTC),
			},
			{
				FlightNumber:    20,
				Rocket:          model.Rocket{RocketName: "Falcon 9"},
				Payloads:        []model.Payload{{PayloadID: "CRS-8"}},
				LaunchSite:      model.LaunchSite{SiteID: "CCAFS"},
				LaunchDateLocal: time.Date(2016, 4, 8, 12, 0, 0, 0, time.UTC),
			},
		},
		LaunchPads: []model.LaunchPad{{SiteID: "Kwajalein"}, {SiteID: "CCAFS"}},
	}
}

type fixture struct {
	view     *SpaceMissions
	store    *state.Store
	source   *countingSource
	requests *atomic.Int32
}

func newFixture(t *testing.T, src *countingSource) fixture {
	t.Helper()
	cat, err := catalog.Open("", time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	store := state.NewStore(state.Reduce, nil)
	requests := &atomic.Int32{}
	store.Use(func(_ *state.Store, a state.Action) {
		if _, ok := a.(state.RequestPageData); ok {
			requests.Add(1)
		}
	})

	loader := effects.NewLoader(src, cat, nil)
	v, err := New(store, loader, Options{Location: time.UTC})
	require.NoError(t, err)
	t.Cleanup(v.Deactivate)

	return fixture{view: v, store: store, source: src, requests: requests}
}

func waitLoaded(t *testing.T, v *SpaceMissions) Props {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p, err := v.WaitLoaded(ctx)
	require.NoError(t, err)
	return p
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil, nil, Options{})
	require.Error(t, err)
}

func TestActivate_RequestsDataOnce(t *testing.T) {
	f := newFixture(t, &countingSource{data: pageData()})

	f.view.Activate(context.Background())
	f.view.Activate(context.Background())
	waitLoaded(t, f.view)

	for i := 0; i < 10; i++ {
		f.view.Render()
	}
	require.EqualValues(t, 1, f.requests.Load())
	require.EqualValues(t, 1, f.source.calls.Load())
}

func TestActivate_AgainAfterDeactivate(t *testing.T) {
	f := newFixture(t, &countingSource{data: pageData()})

	f.view.Activate(context.Background())
	waitLoaded(t, f.view)
	f.view.Deactivate()

	f.view.Activate(context.Background())
	waitLoaded(t, f.view)

	require.EqualValues(t, 2, f.requests.Load())
}

func TestRender_BeforeDataArrives(t *testing.T) {
	src := &countingSource{data: pageData(), gate: make(chan struct{})}
	f := newFixture(t, src)

	f.view.Activate(context.Background())
	p := f.view.Render()
	require.True(t, p.Loading)
	require.NotNil(t, p.FilteredLaunches)
	require.Empty(t, p.FilteredLaunches)
	require.Equal(t, model.DefaultCriteria(), p.Filters)

	close(src.gate)
	p = waitLoaded(t, f.view)
	require.False(t, p.Loading)
	require.Len(t, p.FilteredLaunches, 2)
	require.Equal(t, []int{2006, 2016}, p.AvailableYears)
	require.Len(t, p.LaunchPads, 2)
}

func TestApplyFilters(t *testing.T) {
	f := newFixture(t, &countingSource{data: pageData()})
	f.view.Activate(context.Background())
	waitLoaded(t, f.view)

	f.view.ApplyFilters(model.Criteria{Keywords: "Falcon 9", LaunchPad: model.Any, MinYear: model.Any, MaxYear: model.Any})
	p := f.view.Render()
	require.Len(t, p.FilteredLaunches, 1)
	require.Equal(t, 20, p.FilteredLaunches[0].FlightNumber)

	f.view.ApplyFilters(model.Criteria{Keywords: "", LaunchPad: model.Any, MinYear: "2010", MaxYear: "2020"})
	p = f.view.Render()
	require.Len(t, p.FilteredLaunches, 1)
	require.Equal(t, 20, p.FilteredLaunches[0].FlightNumber)

	// Filtering never requests data again.
	require.EqualValues(t, 1, f.requests.Load())
}

func TestDeactivate_DiscardsFilters(t *testing.T) {
	f := newFixture(t, &countingSource{data: pageData()})
	f.view.Activate(context.Background())
	f.view.ApplyFilters(model.Criteria{Keywords: "Dragon", LaunchPad: "CCAFS", MinYear: model.Any, MaxYear: model.Any})
	f.view.Deactivate()

	require.Equal(t, model.DefaultCriteria(), f.view.Filters())
}

func TestWaitLoaded_Inactive(t *testing.T) {
	f := newFixture(t, &countingSource{data: pageData()})
	_, err := f.view.WaitLoaded(context.Background())
	require.ErrorIs(t, err, ErrInactive)
}

func TestWaitLoaded_DeactivatedMidLoad(t *testing.T) {
	src := &countingSource{data: pageData(), gate: make(chan struct{})}
	f := newFixture(t, src)
	f.view.Activate(context.Background())
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, 5*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		_, err := f.view.WaitLoaded(ctx)
		errc <- err
	}()

	f.view.Deactivate()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrInactive)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitLoaded did not return after Deactivate")
	}
	require.True(t, f.store.Snapshot().Loading, "a canceled load dispatches nothing")
}

func TestRender_ReadsConnectedSelectors(t *testing.T) {
	store := state.NewStore(state.Reduce, nil)
	v, err := New(store, nil, Options{Location: time.UTC})
	require.NoError(t, err)

	data := pageData()
	store.Dispatch(state.RequestPageData{RequestID: "r1"})
	require.True(t, v.Render().Loading)

	store.Dispatch(state.PageDataLoaded{
		RequestID:      "r1",
		Launches:       data.Launches,
		LaunchPads:     data.LaunchPads,
		AvailableYears: []int{2006, 2016},
	})
	p := v.Render()
	require.False(t, p.Loading)
	require.NoError(t, p.Err)
	require.Len(t, p.FilteredLaunches, 2)
	require.Equal(t, data.LaunchPads, p.LaunchPads)
	require.Equal(t, []int{2006, 2016}, p.AvailableYears)

	store.Dispatch(state.PageDataFailed{RequestID: "r1", Err: context.DeadlineExceeded})
	require.ErrorIs(t, v.Render().Err, context.DeadlineExceeded)
}
