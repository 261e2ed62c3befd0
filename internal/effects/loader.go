// Package effects runs the asynchronous work triggered by store actions.
package effects

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/space-missions/internal/catalog"
	"github.com/rcliao/space-missions/internal/spacex"
	"github.com/rcliao/space-missions/internal/state"
)

// Loader answers RequestPageData by fetching from a Source, indexing the
// result in the catalog and dispatching PageDataLoaded or PageDataFailed.
type Loader struct {
	source  spacex.Source
	catalog *catalog.Catalog
	logger  *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader creates a Loader. cat must not be nil.
func NewLoader(source spacex.Source, cat *catalog.Catalog, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{source: source, catalog: cat, logger: logger}
}

// Start scopes subsequent loads to parent. It is a no-op while already
// started.
func (l *Loader) Start(parent context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx != nil {
		return
	}
	l.ctx, l.cancel = context.WithCancel(parent)
}

// Stop cancels in-flight loads and waits for them to return. Canceled
// loads dispatch nothing.
func (l *Loader) Stop() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.ctx, l.cancel = nil, nil
	l.mu.Unlock()

	l.wg.Wait()
}

// Middleware hooks the loader into a store.
func (l *Loader) Middleware() state.Middleware {
	return func(s *state.Store, a state.Action) {
		if req, ok := a.(state.RequestPageData); ok {
			l.spawn(s, req)
		}
	}
}

func (l *Loader) spawn(s *state.Store, req state.RequestPageData) {
	l.mu.Lock()
	if l.ctx == nil {
		l.ctx, l.cancel = context.WithCancel(context.Background())
	}
	ctx := l.ctx
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()

		action, err := l.load(ctx, req.RequestID)
		if ctx.Err() != nil {
			l.logger.Debug("page data load canceled", zap.String("request_id", req.RequestID))
			return
		}
		if err != nil {
			l.logger.Warn("page data load failed",
				zap.String("request_id", req.RequestID),
				zap.Error(err))
			s.Dispatch(state.PageDataFailed{RequestID: req.RequestID, Err: err})
			return
		}
		s.Dispatch(action)
	}()
}

func (l *Loader) load(ctx context.Context, requestID string) (state.PageDataLoaded, error) {
	start := time.Now()

	data, err := l.source.FetchPageData(ctx)
	if err != nil {
		return state.PageDataLoaded{}, fmt.Errorf("fetch page data: %w", err)
	}

	snapshot, err := l.catalog.Load(ctx, data.Launches, data.LaunchPads)
	if err != nil {
		return state.PageDataLoaded{}, fmt.Errorf("index page data: %w", err)
	}

	// The snapshot is read back from the catalog so the store and the
	// catalog-backed commands see the same records.
	launches, err := l.catalog.Launches(ctx)
	if err != nil {
		return state.PageDataLoaded{}, fmt.Errorf("read launches: %w", err)
	}
	pads, err := l.catalog.LaunchPads(ctx)
	if err != nil {
		return state.PageDataLoaded{}, fmt.Errorf("read launch pads: %w", err)
	}
	years, err := l.catalog.AvailableYears(ctx)
	if err != nil {
		return state.PageDataLoaded{}, fmt.Errorf("available years: %w", err)
	}

	l.logger.Info("page data loaded",
		zap.String("request_id", requestID),
		zap.String("snapshot", snapshot),
		zap.Int("launches", len(launches)),
		zap.Int("launch_pads", len(pads)),
		zap.Duration("elapsed", time.Since(start)))

	return state.PageDataLoaded{
		RequestID:      requestID,
		Launches:       launches,
		LaunchPads:     pads,
		AvailableYears: years,
		LoadedAt:       time.Now().UTC(),
	}, nil
}
