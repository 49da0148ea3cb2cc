package renderer

import "context"

// EventKind identifies a page lifecycle signal
type EventKind int

const (
	// EventNavigationFinished fires when the main frame finishes loading.
	EventNavigationFinished EventKind = iota
	// EventURLChanged fires when the observable URL changes, including
	// same-document SPA navigations.
	EventURLChanged
	// EventLoadingChanged fires on every loading-state transition.
	EventLoadingChanged
)

// Event is one page lifecycle signal from the embedded renderer
type Event struct {
	Kind    EventKind
	URL     string
	Loading bool
}

// ScriptExecutor runs a script inside the page context and returns its JSON
// string result. This is the sole extraction entry point.
type ScriptExecutor interface {
	ExecuteScript(ctx context.Context, js string) (string, error)
}

// Renderer is the capability contract with the embedded page-rendering
// engine. Everything behind it is an external collaborator; this core only
// observes lifecycle state, runs scripts, and receives message-channel
// signals.
type Renderer interface {
	ScriptExecutor

	Load(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	StopLoading(ctx context.Context) error
	GoBack(ctx context.Context) error
	GoForward(ctx context.Context) error

	CurrentURL() string
	IsLoading() bool
	CanGoBack(ctx context.Context) bool
	CanGoForward(ctx context.Context) bool

	// RegisterMessageChannel exposes a named function into the page context;
	// scripts call it to deliver a payload string to the handler.
	RegisterMessageChannel(name string, handler func(payload string)) error

	// Events delivers lifecycle signals in occurrence order.
	Events() <-chan Event

	Close() error
}
