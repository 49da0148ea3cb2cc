package renderer

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
	"github.com/ysmood/gson"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/config"
)

// RodRenderer implements Renderer over a rod-controlled browser page.
type RodRenderer struct {
	browser *rod.Browser
	page    *rod.Page
	logger  zerolog.Logger

	loadTimeout time.Duration

	mu         sync.RWMutex
	currentURL string
	loading    bool

	events    chan Event
	stopPump  func()
	closeOnce sync.Once
}

// NewRodRenderer connects to (or launches) a browser and opens a blank page
// ready for Load.
func NewRodRenderer(cfg *config.RendererConfig, logger zerolog.Logger) (*RodRenderer, error) {
	browser := rod.New()
	if cfg.ControlURL != "" {
		browser = browser.ControlURL(cfg.ControlURL)
	}
	if err := browser.Connect(); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to connect to browser")
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, errorwrapper.WrapError(err, "failed to open page")
	}

	if cfg.UserAgent != "" {
		if err := (proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}).Call(page); err != nil {
			logger.Warn().Err(err).Msg("Failed to override user agent")
		}
	}

	r := &RodRenderer{
		browser:     browser,
		page:        page,
		logger:      logger.With().Str("component", "RodRenderer").Logger(),
		loadTimeout: time.Duration(cfg.PageLoadTimeoutSecs) * time.Second,
		events:      make(chan Event, 64),
	}
	r.startEventPump()

	return r, nil
}

// startEventPump translates CDP frame events into renderer Events. Only the
// main frame drives the lifecycle; subframe churn is ignored.
func (r *RodRenderer) startEventPump() {
	mainFrame := r.page.FrameID

	pumpCtx, cancel := context.WithCancel(context.Background())
	r.stopPump = cancel

	wait := r.page.Context(pumpCtx).EachEvent(
		func(e *proto.PageFrameStartedLoading) {
			if e.FrameID != mainFrame {
				return
			}
			r.setLoading(true)
			r.emit(Event{Kind: EventLoadingChanged, URL: r.CurrentURL(), Loading: true})
		},
		func(e *proto.PageFrameStoppedLoading) {
			if e.FrameID != mainFrame {
				return
			}
			r.setLoading(false)
			url := r.CurrentURL()
			r.emit(Event{Kind: EventLoadingChanged, URL: url, Loading: false})
			r.emit(Event{Kind: EventNavigationFinished, URL: url})
		},
		func(e *proto.PageFrameNavigated) {
			if e.Frame.ParentID != "" {
				return
			}
			r.setURL(e.Frame.URL)
			r.emit(Event{Kind: EventURLChanged, URL: e.Frame.URL, Loading: r.IsLoading()})
		},
		func(e *proto.PageNavigatedWithinDocument) {
			if e.FrameID != mainFrame {
				return
			}
			r.setURL(e.URL)
			r.emit(Event{Kind: EventURLChanged, URL: e.URL, Loading: r.IsLoading()})
		},
	)
	go wait()
}

func (r *RodRenderer) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.logger.Warn().Int("kind", int(ev.Kind)).Str("url", ev.URL).Msg("Event buffer full, dropping lifecycle event")
	}
}

func (r *RodRenderer) setURL(url string) {
	r.mu.Lock()
	r.currentURL = url
	r.mu.Unlock()
}

func (r *RodRenderer) setLoading(loading bool) {
	r.mu.Lock()
	r.loading = loading
	r.mu.Unlock()
}

// Load navigates the page to the given URL.
func (r *RodRenderer) Load(ctx context.Context, url string) error {
	r.setURL(url)

	page := r.page.Context(ctx).Timeout(r.loadTimeout)
	if err := page.Navigate(url); err != nil {
		return errorwrapper.NewNetworkError(url, "navigation failed", err)
	}
	return nil
}

// Reload reloads the current page.
func (r *RodRenderer) Reload(ctx context.Context) error {
	return r.page.Context(ctx).Reload()
}

// StopLoading aborts the in-flight navigation, if any.
func (r *RodRenderer) StopLoading(ctx context.Context) error {
	return proto.PageStopLoading{}.Call(r.page.Context(ctx))
}

// GoBack navigates one entry back in the page history.
func (r *RodRenderer) GoBack(ctx context.Context) error {
	return r.navigateHistory(ctx, -1)
}

// GoForward navigates one entry forward in the page history.
func (r *RodRenderer) GoForward(ctx context.Context) error {
	return r.navigateHistory(ctx, 1)
}

func (r *RodRenderer) navigateHistory(ctx context.Context, offset int) error {
	page := r.page.Context(ctx)
	history, err := proto.PageGetNavigationHistory{}.Call(page)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to read navigation history")
	}

	target := history.CurrentIndex + offset
	if target < 0 || target >= len(history.Entries) {
		return errorwrapper.NewError("no history entry at offset %d", offset)
	}

	return proto.PageNavigateToHistoryEntry{EntryID: history.Entries[target].ID}.Call(page)
}

// CurrentURL returns the page URL as last observed from navigation events.
func (r *RodRenderer) CurrentURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentURL
}

// IsLoading reports whether the main frame is currently loading.
func (r *RodRenderer) IsLoading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// CanGoBack reports whether a back history entry exists.
func (r *RodRenderer) CanGoBack(ctx context.Context) bool {
	history, err := proto.PageGetNavigationHistory{}.Call(r.page.Context(ctx))
	if err != nil {
		return false
	}
	return history.CurrentIndex > 0
}

// CanGoForward reports whether a forward history entry exists.
func (r *RodRenderer) CanGoForward(ctx context.Context) bool {
	history, err := proto.PageGetNavigationHistory{}.Call(r.page.Context(ctx))
	if err != nil {
		return false
	}
	return history.CurrentIndex < len(history.Entries)-1
}

// ExecuteScript runs a function-expression script in the page context and
// returns its result as a string. Scrape scripts return JSON.stringify
// output, so the remote value is always a plain string.
func (r *RodRenderer) ExecuteScript(ctx context.Context, js string) (string, error) {
	obj, err := r.page.Context(ctx).Eval(js)
	if err != nil {
		return "", errorwrapper.WrapError(err, "script execution failed")
	}
	return obj.Value.Str(), nil
}

// RegisterMessageChannel exposes window[name] into the page; page scripts
// call it with a string payload to reach the handler.
func (r *RodRenderer) RegisterMessageChannel(name string, handler func(payload string)) error {
	_, err := r.page.Expose(name, func(g gson.JSON) (interface{}, error) {
		handler(g.Str())
		return nil, nil
	})
	if err != nil {
		return errorwrapper.WrapError(err, "failed to expose message channel '"+name+"'")
	}
	return nil
}

// Events returns the lifecycle event stream.
func (r *RodRenderer) Events() <-chan Event {
	return r.events
}

// Close shuts down the page and browser.
func (r *RodRenderer) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.stopPump != nil {
			r.stopPump()
		}
		if pageErr := r.page.Close(); pageErr != nil {
			err = pageErr
		}
		if browserErr := r.browser.Close(); browserErr != nil && err == nil {
			err = browserErr
		}
		close(r.events)
	})
	return err
}
