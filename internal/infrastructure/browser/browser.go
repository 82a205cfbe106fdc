// Package browser adapts go-rod headless Chrome to the rendering port used
// by portals that serve JS-only shells.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"tenderscan/internal/ports"
)

// Rod launches one Chrome process on first use and opens a fresh page per
// session. The process is shared across sessions; pages are not.
type Rod struct {
	headless bool
	timeout  time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	cleanup func()
}

func New(headless bool, timeout time.Duration, log *slog.Logger) *Rod {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Rod{headless: headless, timeout: timeout, log: log}
}

func (r *Rod) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(r.headless)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect chrome: %w", err)
	}

	r.browser = b
	r.cleanup = l.Cleanup
	return b, nil
}

// NewSession opens a blank page bound to ctx.
func (r *Rod) NewSession(ctx context.Context) (ports.BrowserSession, error) {
	b, err := r.connect()
	if err != nil {
		return nil, err
	}
	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return &session{page: page, timeout: r.timeout}, nil
}

// Shutdown closes the Chrome process. Sessions opened earlier become invalid.
func (r *Rod) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		if err := r.browser.Close(); err != nil && r.log != nil {
			r.log.Warn("browser close failed", "error", err)
		}
		r.browser = nil
	}
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
}

type session struct {
	page    *rod.Page
	timeout time.Duration
}

func (s *session) Navigate(url, waitSelector string) error {
	page := s.page.Timeout(s.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	if waitSelector != "" {
		if _, err := page.Element(waitSelector); err != nil {
			return fmt.Errorf("wait for %q: %w", waitSelector, err)
		}
	}
	return nil
}

func (s *session) FillAndSubmit(selector, text string) error {
	page := s.page.Timeout(s.timeout)
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	// SelectAllText makes Input replace any prefilled value.
	_ = el.SelectAllText()
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into %q: %w", selector, err)
	}
	if err := page.Keyboard.Press(input.Enter); err != nil {
		return fmt.Errorf("submit %q: %w", selector, err)
	}
	// Results swap in asynchronously after submit.
	return page.WaitStable(500 * time.Millisecond)
}

func (s *session) Click(selector string) error {
	page := s.page.Timeout(s.timeout)
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return page.WaitStable(500 * time.Millisecond)
}

func (s *session) HTML() (string, error) {
	return s.page.Timeout(s.timeout).HTML()
}

func (s *session) Close() error {
	return s.page.Close()
}
