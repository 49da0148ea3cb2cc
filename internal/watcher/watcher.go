package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/common/timeutils"
	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/renderer"
)

// HeadChangedChannel is the message-channel name the in-page observer posts
// through.
const HeadChangedChannel = "headChanged"

// installScript observes metadata-relevant mutations under the document
// head and posts one signal per qualifying batch. The window guard makes
// re-installation a no-op after SPA navigations that keep the JS context.
const installScript = `() => {
	if (window.__metascopeHeadWatcher) {
		return 'already-installed';
	}
	window.__metascopeHeadWatcher = true;

	const relevant = (node) =>
		node && node.nodeType === 1 && (node.tagName === 'META' || node.tagName === 'LINK');

	const observer = new MutationObserver((mutations) => {
		for (const mutation of mutations) {
			if (mutation.type === 'attributes' && relevant(mutation.target)) {
				window.headChanged('attribute');
				return;
			}
			for (const node of mutation.addedNodes) {
				if (relevant(node)) {
					window.headChanged('added');
					return;
				}
			}
			for (const node of mutation.removedNodes) {
				if (relevant(node)) {
					window.headChanged('removed');
					return;
				}
			}
		}
	});
	observer.observe(document.head, { childList: true, subtree: true, attributes: true });
	return 'installed';
}`

// MessageChannelHost is the slice of the renderer the watcher needs.
type MessageChannelHost interface {
	renderer.ScriptExecutor
	RegisterMessageChannel(name string, handler func(payload string)) error
}

// Watcher installs the head-mutation observer and debounces its signals: a
// burst of mutations collapses into one callback carrying only the final
// settled DOM state.
type Watcher struct {
	host      MessageChannelHost
	debouncer *timeutils.Debouncer
	logger    zerolog.Logger

	mu                sync.Mutex
	channelRegistered bool
	onChanged         func()
}

// NewWatcher creates a Watcher. onChanged runs on a timer goroutine after
// the debounce window closes; it must hand off to the coordination loop
// rather than touching shared state.
func NewWatcher(host MessageChannelHost, cfg *config.WatcherConfig, onChanged func(), logger zerolog.Logger) *Watcher {
	return &Watcher{
		host:      host,
		debouncer: timeutils.NewDebouncer(time.Duration(cfg.DebounceMs) * time.Millisecond),
		onChanged: onChanged,
		logger:    logger.With().Str("component", "MutationWatcher").Logger(),
	}
}

// Install wires the message channel (once per process) and injects the
// observer script (idempotent per page JS context). Call it again after
// every navigation; double installation is guarded on both sides.
func (w *Watcher) Install(ctx context.Context) error {
	if err := w.ensureChannel(); err != nil {
		return err
	}

	result, err := w.host.ExecuteScript(ctx, installScript)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to install head observer")
	}
	w.logger.Debug().Str("result", result).Msg("Head observer install attempted")
	return nil
}

func (w *Watcher) ensureChannel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.channelRegistered {
		return nil
	}
	err := w.host.RegisterMessageChannel(HeadChangedChannel, w.handleSignal)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to register headChanged channel")
	}
	w.channelRegistered = true
	return nil
}

// handleSignal receives one raw in-page signal and resets the debounce
// window.
func (w *Watcher) handleSignal(payload string) {
	w.logger.Debug().Str("mutation", payload).Msg("Head mutation signal")
	w.debouncer.Schedule(w.onChanged)
}

// CancelPending drops a pending debounced callback, e.g. when a navigation
// supersedes the mutation burst.
func (w *Watcher) CancelPending() {
	w.debouncer.Cancel()
}
