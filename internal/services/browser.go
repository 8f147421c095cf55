package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/config"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

const urlPollInterval = 100 * time.Millisecond

// ChromeSessionFactory starts one headless Chrome per session
type ChromeSessionFactory struct {
	config config.BrowserConfig
	logger *logrus.Logger

	active       int64
	startedTotal int64
	failedStarts int64
}

// ChromeSession implements Session on top of chromedp
type ChromeSession struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	factory *ChromeSessionFactory
	once    sync.Once
}

// NewChromeSessionFactory creates a session factory
func NewChromeSessionFactory(cfg config.BrowserConfig, logger *logrus.Logger) *ChromeSessionFactory {
	return &ChromeSessionFactory{
		config: cfg,
		logger: logger,
	}
}

func (f *ChromeSessionFactory) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(f.config.WindowWidth, f.config.WindowHeight),
	)

	if f.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.config.UserAgent))
	}
	if f.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.config.ExecPath))
	}
	if !f.config.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	return opts
}

// NewSession starts Chrome and waits until it answers a blank navigation.
// The session outlives ctx; only Close stops the browser.
func (f *ChromeSessionFactory) NewSession(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), f.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	session := &ChromeSession{
		id:      uuid.New().String(),
		ctx:     browserCtx,
		cancel:  func() { browserCancel(); allocCancel() },
		factory: f,
	}

	// The first Run starts the browser and binds it to browserCtx, so it must
	// not run under a timeout-derived context.
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(browserCtx, chromedp.Navigate("about:blank"))
	}()

	var err error
	select {
	case err = <-started:
	case <-time.After(f.config.StartTimeout):
		err = fmt.Errorf("browser did not start within %s", f.config.StartTimeout)
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		session.cancel()
		atomic.AddInt64(&f.failedStarts, 1)
		f.logger.WithError(err).Error("Failed to start browser session")
		return nil, &SessionInitError{Err: err}
	}

	atomic.AddInt64(&f.active, 1)
	atomic.AddInt64(&f.startedTotal, 1)
	f.logger.WithField("session_id", session.id).Debug("Browser session started")
	return session, nil
}

// Stats returns session counters
func (f *ChromeSessionFactory) Stats() models.BrowserMetrics {
	return models.BrowserMetrics{
		ActiveSessions: atomic.LoadInt64(&f.active),
		StartedTotal:   atomic.LoadInt64(&f.startedTotal),
		FailedStarts:   atomic.LoadInt64(&f.failedStarts),
	}
}

// Health returns browser health status. Sessions start on demand, so a
// failed start after a success only degrades the service.
func (f *ChromeSessionFactory) Health() map[string]interface{} {
	stats := f.Stats()

	status := "healthy"
	if stats.FailedStarts > 0 {
		status = "degraded"
		if stats.StartedTotal == 0 {
			status = "unhealthy"
		}
	}

	return map[string]interface{}{
		"status":          status,
		"active_sessions": stats.ActiveSessions,
		"started_total":   stats.StartedTotal,
		"failed_starts":   stats.FailedStarts,
		"headless":        f.config.Headless,
	}
}

// run executes actions on the browser with a deadline, aborting early if ctx ends
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func queryOption(l Locator) chromedp.QueryOption {
	if l.Kind == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// Navigate loads address
func (s *ChromeSession) Navigate(ctx context.Context, address string) error {
	return s.run(ctx, s.factory.config.ActionTimeout, chromedp.Navigate(address))
}

// WaitFor blocks until cond holds or timeout elapses
func (s *ChromeSession) WaitFor(ctx context.Context, cond Condition, timeout time.Duration) error {
	var err error
	switch cond.Kind {
	case ElementPresent:
		err = s.run(ctx, timeout, chromedp.WaitReady(cond.Target.Expr, queryOption(cond.Target)))
	case ElementClickable:
		err = s.run(ctx, timeout,
			chromedp.WaitVisible(cond.Target.Expr, queryOption(cond.Target)),
			chromedp.WaitEnabled(cond.Target.Expr, queryOption(cond.Target)),
		)
	case URLContains:
		err = s.run(ctx, timeout, chromedp.ActionFunc(func(runCtx context.Context) error {
			return pollLocation(runCtx, cond.Fragment)
		}))
	default:
		err = fmt.Errorf("unsupported condition %d", cond.Kind)
	}

	if err != nil {
		return fmt.Errorf("wait for %s: %w", cond, err)
	}
	return nil
}

func pollLocation(ctx context.Context, fragment string) error {
	ticker := time.NewTicker(urlPollInterval)
	defer ticker.Stop()

	for {
		var location string
		if err := chromedp.Location(&location).Do(ctx); err != nil {
			return err
		}
		if strings.Contains(location, fragment) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Fill clears the target input and types value
func (s *ChromeSession) Fill(ctx context.Context, target Locator, value string) error {
	by := queryOption(target)
	return s.run(ctx, s.factory.config.ActionTimeout,
		chromedp.Clear(target.Expr, by),
		chromedp.SendKeys(target.Expr, value, by),
	)
}

// Click clicks the target element
func (s *ChromeSession) Click(ctx context.Context, target Locator) error {
	return s.run(ctx, s.factory.config.ActionTimeout,
		chromedp.Click(target.Expr, queryOption(target), chromedp.NodeVisible),
	)
}

// CurrentMarkup returns the rendered document
func (s *ChromeSession) CurrentMarkup(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, s.factory.config.ActionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Close stops the browser process
func (s *ChromeSession) Close() error {
	s.once.Do(func() {
		s.cancel()
		atomic.AddInt64(&s.factory.active, -1)
		s.factory.logger.WithField("session_id", s.id).Debug("Browser session closed")
	})
	return nil
}
