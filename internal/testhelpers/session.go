package testhelpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
)

// FakePage scripts what the registry answers for one identifier
type FakePage struct {
	Markup string
	// FailLookup keeps the browser on the query form.
	FailLookup bool
	// MissingMarker reaches the result URL but never renders the marker.
	MissingMarker bool
	// PanicOnMarkup makes reading the result page panic.
	PanicOnMarkup bool
}

// FakeSessionFactory hands out scripted sessions. Identifiers without a page
// fail their lookup.
type FakeSessionFactory struct {
	Pages map[string]FakePage
	// Err makes NewSession fail with a *services.SessionInitError.
	Err error
	// Gate, when set, blocks every navigation until closed or ctx ends.
	Gate chan struct{}

	mu       sync.Mutex
	sessions []*FakeSession
	started  int64
	failed   int64
}

// NewFakeSessionFactory creates a factory serving pages
func NewFakeSessionFactory(pages map[string]FakePage) *FakeSessionFactory {
	if pages == nil {
		pages = map[string]FakePage{}
	}
	return &FakeSessionFactory{Pages: pages}
}

// NewSession implements services.SessionFactory
func (f *FakeSessionFactory) NewSession(ctx context.Context) (services.Session, error) {
	if f.Err != nil {
		atomic.AddInt64(&f.failed, 1)
		return nil, &services.SessionInitError{Err: f.Err}
	}

	s := &FakeSession{factory: f}
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	atomic.AddInt64(&f.started, 1)
	return s, nil
}

// Sessions returns every session handed out so far
func (f *FakeSessionFactory) Sessions() []*FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeSession(nil), f.sessions...)
}

// Stats reports session counters
func (f *FakeSessionFactory) Stats() models.BrowserMetrics {
	var active int64
	for _, s := range f.Sessions() {
		if s.CloseCount() == 0 {
			active++
		}
	}
	return models.BrowserMetrics{
		ActiveSessions: active,
		StartedTotal:   atomic.LoadInt64(&f.started),
		FailedStarts:   atomic.LoadInt64(&f.failed),
	}
}

// Health reports a fixed healthy status
func (f *FakeSessionFactory) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy", "fake": true}
}

// FakeSession follows the query form flow without a browser
type FakeSession struct {
	factory *FakeSessionFactory

	mu        sync.Mutex
	current   string
	submitted bool
	queried   []string
	closed    int64
}

func (s *FakeSession) page() (FakePage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.factory.Pages[s.current]
	return p, ok
}

// Navigate opens the query form
func (s *FakeSession) Navigate(ctx context.Context, address string) error {
	if gate := s.factory.Gate; gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	s.current = ""
	s.submitted = false
	s.mu.Unlock()
	return nil
}

// WaitFor resolves conditions against the scripted page
func (s *FakeSession) WaitFor(ctx context.Context, cond services.Condition, timeout time.Duration) error {
	s.mu.Lock()
	submitted := s.submitted
	s.mu.Unlock()

	page, known := s.page()
	switch cond.Kind {
	case services.URLContains:
		if !submitted || !known || page.FailLookup {
			return fmt.Errorf("wait for %s: %w", cond, context.DeadlineExceeded)
		}
	case services.ElementPresent:
		if submitted && page.MissingMarker {
			return fmt.Errorf("wait for %s: %w", cond, context.DeadlineExceeded)
		}
	}
	return nil
}

// Fill records the identifier typed into the form
func (s *FakeSession) Fill(ctx context.Context, target services.Locator, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = value
	s.queried = append(s.queried, value)
	return nil
}

// Click submits the form
func (s *FakeSession) Click(ctx context.Context, target services.Locator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return errors.New("nothing to submit")
	}
	s.submitted = true
	return nil
}

// CurrentMarkup returns the scripted result page
func (s *FakeSession) CurrentMarkup(ctx context.Context) (string, error) {
	page, _ := s.page()
	if page.PanicOnMarkup {
		panic("renderer crashed")
	}
	return page.Markup, nil
}

// Close counts disposals
func (s *FakeSession) Close() error {
	atomic.AddInt64(&s.closed, 1)
	return nil
}

// CloseCount returns how many times Close was called
func (s *FakeSession) CloseCount() int64 {
	return atomic.LoadInt64(&s.closed)
}

// Queried returns the identifiers typed into the form, in order
func (s *FakeSession) Queried() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queried...)
}
