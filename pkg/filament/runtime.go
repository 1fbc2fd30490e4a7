package filament

import (
	"context"
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/zoobzio/clockz"
)

// Runtime owns a reactive graph: the tracking stack that wires reads to
// the running computation, batch state, the deferred init queue, and the
// optional live registry. There are no package-level engines; every
// signal, effect, and batch belongs to exactly one Runtime.
//
// A Runtime and its signals form a cooperative unit meant to be driven
// from a single goroutine. The deferred init queue is the only place the
// engine itself crosses goroutines; shared structures are locked so that
// boundary stays safe.
type Runtime struct {
	logger   *slog.Logger
	clock    clockz.Clock
	ctx      context.Context
	observer Observer
	onError  func(error)

	idCounter uint64

	// stack of running computations; the innermost sits on top. A nil
	// entry marks an Untracked frame.
	stack []Listener

	batchDepth int
	pendingIDs mapset.Set[uint64]
	pending    []Listener

	schedMu     sync.Mutex
	scheduled   []func()
	drainQueued bool

	regMu    sync.RWMutex
	registry map[uint64]Inspectable // nil unless WithRegistry
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithClock sets the clock used for deferred init delivery. Defaults to
// clockz.RealClock; tests substitute clockz.NewFakeClock() and drain with
// Flush.
func WithClock(clock clockz.Clock) Option {
	return func(rt *Runtime) {
		if clock != nil {
			rt.clock = clock
		}
	}
}

// WithContext sets the base context handed to stores and telemetry.
func WithContext(ctx context.Context) Option {
	return func(rt *Runtime) {
		if ctx != nil {
			rt.ctx = ctx
		}
	}
}

// WithObserver installs an engine observer. Compose several with
// instrument.Multi.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithErrorHandler installs a callback invoked with every engine error
// after it has been logged and handed to the observer.
func WithErrorHandler(fn func(error)) Option {
	return func(rt *Runtime) { rt.onError = fn }
}

// WithRegistry enables the live signal registry consumed by pkg/inspect.
// Without it, Signals and SignalByID return nothing.
func WithRegistry() Option {
	return func(rt *Runtime) { rt.registry = make(map[uint64]Inspectable) }
}

// New constructs a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:     slog.Default(),
		clock:      clockz.RealClock,
		ctx:        context.Background(),
		observer:   NoOpObserver{},
		pendingIDs: mapset.NewSet[uint64](),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Context returns the runtime's base context.
func (rt *Runtime) Context() context.Context { return rt.ctx }

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// current returns the innermost running computation, or nil when nothing
// is running or the top frame is Untracked.
func (rt *Runtime) current() Listener {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

func (rt *Runtime) pushListener(l Listener) {
	rt.stack = append(rt.stack, l)
}

func (rt *Runtime) popListener() {
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// Untracked runs fn with dependency tracking suspended. Signal reads
// inside fn do not subscribe the enclosing computation.
func (rt *Runtime) Untracked(fn func()) {
	rt.pushListener(nil)
	defer rt.popListener()
	fn()
}

// Untracked runs fn with dependency tracking suspended and returns its
// result. The value-returning form needs a type parameter, so it is a
// free function rather than a method.
func Untracked[T any](rt *Runtime, fn func() T) T {
	rt.pushListener(nil)
	defer rt.popListener()
	return fn()
}

// schedule queues fn for deferred delivery. The queue drains on Flush, at
// the close of the outermost batch, and via a coalesced zero-delay timer,
// whichever comes first.
func (rt *Runtime) schedule(fn func()) {
	rt.schedMu.Lock()
	rt.scheduled = append(rt.scheduled, fn)
	queue := !rt.drainQueued
	if queue {
		rt.drainQueued = true
	}
	rt.schedMu.Unlock()
	if queue {
		rt.clock.AfterFunc(0, rt.Flush)
	}
}

// Flush synchronously drains the deferred queue, including work the
// drained tasks schedule themselves. It is safe to call at any time; an
// empty queue is a no-op.
func (rt *Runtime) Flush() {
	for {
		rt.schedMu.Lock()
		tasks := rt.scheduled
		rt.scheduled = nil
		rt.drainQueued = false
		rt.schedMu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, fn := range tasks {
			fn()
		}
	}
}

// reportError records an engine failure: log first, then the observer,
// then the optional error callback.
func (rt *Runtime) reportError(kind string, err error) {
	rt.logger.Error("filament: "+kind+" failure", "error", err)
	rt.observer.EngineError(kind, err)
	if rt.onError != nil {
		rt.onError(err)
	}
}

func (rt *Runtime) register(s Inspectable) {
	rt.regMu.Lock()
	defer rt.regMu.Unlock()
	if rt.registry == nil {
		return
	}
	rt.registry[s.Info().ID] = s
}

func (rt *Runtime) deregister(id uint64) {
	rt.regMu.Lock()
	defer rt.regMu.Unlock()
	delete(rt.registry, id)
}

// Signals snapshots the live registry. Empty unless WithRegistry was set.
func (rt *Runtime) Signals() []SignalInfo {
	rt.regMu.RLock()
	defer rt.regMu.RUnlock()
	infos := make([]SignalInfo, 0, len(rt.registry))
	for _, s := range rt.registry {
		infos = append(infos, s.Info())
	}
	return infos
}

// SignalByID looks up a live signal in the registry.
func (rt *Runtime) SignalByID(id uint64) (Inspectable, bool) {
	rt.regMu.RLock()
	defer rt.regMu.RUnlock()
	s, ok := rt.registry[id]
	return s, ok
}
