package workbench

import (
	"sort"
	"sync"

	"github.com/solatis/vizcore/internal/charts"
)

// Sessions maps editing session names to their dispatchers.
// Safe for concurrent use.
type Sessions struct {
	renderer *charts.Renderer

	mu          sync.Mutex
	dispatchers map[string]*Dispatcher
}

// NewSessions creates an empty session table. Every dispatcher it creates
// renders with renderer.
func NewSessions(renderer *charts.Renderer) *Sessions {
	return &Sessions{
		renderer:    renderer,
		dispatchers: map[string]*Dispatcher{},
	}
}

// Dispatcher returns the session's dispatcher, creating it on first use.
func (s *Sessions) Dispatcher(session string) *Dispatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dispatchers[session]
	if !ok {
		d = NewDispatcher(s.renderer)
		s.dispatchers[session] = d
	}
	return d
}

// Lookup returns the session's dispatcher without creating one.
func (s *Sessions) Lookup(session string) (*Dispatcher, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dispatchers[session]
	return d, ok
}

// Close disposes the session's dispatcher and forgets it.
// Reports whether the session existed.
func (s *Sessions) Close(session string) bool {
	s.mu.Lock()
	d, ok := s.dispatchers[session]
	delete(s.dispatchers, session)
	s.mu.Unlock()

	if ok {
		d.Dispose()
	}
	return ok
}

// CloseAll disposes every dispatcher.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	all := s.dispatchers
	s.dispatchers = map[string]*Dispatcher{}
	s.mu.Unlock()

	for _, d := range all {
		d.Dispose()
	}
}

// Names returns the open session names, sorted.
func (s *Sessions) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.dispatchers))
	for name := range s.dispatchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
