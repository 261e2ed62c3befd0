package state

import (
	"sync"

	"go.uber.org/zap"
)

// Middleware observes every action after it has been reduced. It runs
// outside the store lock and may dispatch further actions.
type Middleware func(s *Store, a Action)

// Store owns the current State. It is passed explicitly to whoever needs
// it; there is no package-level instance.
type Store struct {
	mu         sync.Mutex
	state      State
	reduce     Reducer
	middleware []Middleware
	subs       map[int]chan State
	nextSub    int
	logger     *zap.Logger
}

// NewStore creates a store starting from Initial().
func NewStore(reduce Reducer, logger *zap.Logger) *Store {
	if reduce == nil {
		reduce = Reduce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:  Initial(),
		reduce: reduce,
		subs:   map[int]chan State{},
		logger: logger,
	}
}

// Use appends a middleware.
func (s *Store) Use(m Middleware) {
	s.mu.Lock()
	s.middleware = append(s.middleware, m)
	s.mu.Unlock()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a, notifies subscribers and then runs middleware.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = s.reduce(s.state, a)
	next := s.state
	for _, ch := range s.subs {
		publish(ch, next)
	}
	mws := append([]Middleware(nil), s.middleware...)
	s.mu.Unlock()

	s.logger.Debug("dispatch",
		zap.String("action", a.Type()),
		zap.Bool("loading", next.Loading),
		zap.Int("launches", len(next.Launches)))

	for _, m := range mws {
		m(s, a)
	}
}

// Subscribe returns a channel that always holds the most recent state
// published after the call. Call cancel to stop receiving.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// publish replaces any unread state in ch with st.
func publish(ch chan State, st State) {
	select {
	case <-ch:
	default:
	}
	ch <- st
}
