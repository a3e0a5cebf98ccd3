package browser

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"
)

// Snapshot is the rendered state of a page after navigation settled.
type Snapshot struct {
	HTML     string
	FinalURL string
	Title    string
}

// VisibleQuery describes an element to wait for on a page.
type VisibleQuery struct {
	Selector string
	Property string        // DOM property read once visible, e.g. "src"
	Settle   time.Duration // idle time after load before looking
	Timeout  time.Duration // how long the element may take to become visible
}

// Render navigates to target and returns the rendered HTML.
func (m *Manager) Render(ctx context.Context, target string) (*Snapshot, error) {
	var snap *Snapshot
	err := m.Visit(ctx, target, func(p *rod.Page) error {
		html, err := p.HTML()
		if err != nil {
			return CategorizeError(err, "failed to extract page HTML")
		}
		snap = &Snapshot{
			HTML:     html,
			FinalURL: evalStringOrEmpty(p, `() => window.location.href`),
			Title:    evalStringOrEmpty(p, `() => document.title`),
		}
		if snap.FinalURL == "" {
			snap.FinalURL = target
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// WaitVisible navigates to target, waits for q.Selector to become visible
// and returns q.Property of that element. If the element is not visible
// within q.Timeout it returns ("", false, nil).
func (m *Manager) WaitVisible(ctx context.Context, target string, q VisibleQuery) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := m.Visit(ctx, target, func(p *rod.Page) error {
		if q.Settle > 0 {
			select {
			case <-time.After(q.Settle):
			case <-ctx.Done():
				return CategorizeError(ctx.Err(), "request ended while the page settled")
			}
		}

		wait := p.Timeout(q.Timeout)
		defer wait.CancelTimeout()

		el, err := wait.Element(q.Selector)
		if err == nil {
			err = el.WaitVisible()
		}
		if err != nil {
			return classifyWaitError(ctx.Err(), err, q.Selector)
		}

		prop, err := el.Property(q.Property)
		if err != nil {
			return CategorizeError(err, "failed to read "+q.Property+" of "+q.Selector)
		}
		value = prop.Str()
		found = value != ""
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

// classifyWaitError decides what a failed element wait means. The element
// not showing up within its own timeout is not an error (nil); the request
// ending, or any other browser failure, is.
func classifyWaitError(ctxErr, err error, selector string) error {
	if ctxErr != nil {
		return CategorizeError(ctxErr, "request ended while waiting for "+selector)
	}
	var notFound *rod.ElementNotFoundError
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &notFound) {
		return nil
	}
	return CategorizeError(err, "failed waiting for "+selector)
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
