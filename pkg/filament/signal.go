package filament

import (
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// signalBase carries the identity and subscriber bookkeeping shared by
// every signal shape.
type signalBase struct {
	id   uint64
	name string
	kind SignalKind
	rt   *Runtime

	subMu sync.RWMutex
	subs  []Listener

	selMu     sync.Mutex
	selectors map[string]*Computed[any]
}

// subscribe registers a listener, deduplicating by ID. Subscribing an
// already-registered listener is a no-op, so repeated reads from the same
// effect cost one entry.
func (b *signalBase) subscribe(l Listener) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	id := l.ID()
	for _, sub := range b.subs {
		if sub.ID() == id {
			return
		}
	}
	b.subs = append(b.subs, l)
}

// unsubscribe removes a listener by swapping in the last entry. Order of
// the remaining subscribers is not preserved.
func (b *signalBase) unsubscribe(id uint64) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for i, sub := range b.subs {
		if sub.ID() == id {
			last := len(b.subs) - 1
			b.subs[i] = b.subs[last]
			b.subs[last] = nil
			b.subs = b.subs[:last]
			return
		}
	}
}

func (b *signalBase) subscriberCount() int {
	b.subMu.RLock()
	defer b.subMu.RUnlock()
	return len(b.subs)
}

func (b *signalBase) clearSubscribers() {
	b.subMu.Lock()
	b.subs = nil
	b.subMu.Unlock()
}

// notifySubscribers runs or defers every live subscriber. Disposed
// listeners are pruned here, not at disposal time. The subscriber list is
// snapshotted before any listener runs, so re-runs that subscribe or
// unsubscribe do not affect this notification.
func (b *signalBase) notifySubscribers() {
	b.subMu.Lock()
	live := b.subs[:0]
	for _, sub := range b.subs {
		if sub.Disposed() {
			continue
		}
		live = append(live, sub)
	}
	for i := len(live); i < len(b.subs); i++ {
		b.subs[i] = nil
	}
	b.subs = live
	snapshot := make([]Listener, len(live))
	copy(snapshot, live)
	b.subMu.Unlock()

	if b.rt.batching() {
		for _, sub := range snapshot {
			b.rt.queuePending(sub)
		}
		return
	}
	for _, sub := range snapshot {
		sub.Run()
	}
}

// disposeSelectors tears down the cached path views when the owning
// signal is disposed.
func (b *signalBase) disposeSelectors() {
	b.selMu.Lock()
	sels := b.selectors
	b.selectors = nil
	b.selMu.Unlock()
	for _, c := range sels {
		c.Dispose()
	}
}

// handlerEntry preserves registration order so handlers fire in the order
// they were added.
type handlerEntry[T any] struct {
	id uint64
	fn func(Event[T])
}

// Signal is a single reactive cell. Reads inside a running effect or
// computed subscribe it automatically; writes run the full pipeline:
// identity check, transforms, validation, assignment, notification,
// persistence.
type Signal[T any] struct {
	base signalBase

	mu        sync.RWMutex
	value     T
	err       error
	loading   bool
	disposed  bool
	disposing bool

	handlers   map[EventKind][]handlerEntry[T]
	errorDepth int

	equal      func(a, b T) bool
	validator  Validator[T]
	transforms []Transform[T]
	chain      pipz.Chainable[T]
	codec      Codec
	store      Store
	persistKey string
}

// NewSignal constructs a signal owned by rt. When persistence options are
// set and the store holds a value for the key, that value replaces
// initial before the init event is scheduled. The init event is delivered
// asynchronously: by the runtime's zero-delay timer, an explicit Flush,
// or the close of the outermost batch.
func NewSignal[T any](rt *Runtime, initial T, opts ...SignalOption[T]) *Signal[T] {
	cfg := buildConfig(opts)
	s := &Signal[T]{
		base: signalBase{
			id:   rt.nextID(),
			name: cfg.name,
			kind: cfg.kind,
			rt:   rt,
		},
		value:      initial,
		loading:    cfg.loading,
		equal:      cfg.equal,
		validator:  cfg.validator,
		transforms: cfg.transforms,
		chain:      cfg.chain,
		codec:      cfg.codec,
		store:      cfg.store,
		persistKey: cfg.persistKey,
	}
	s.restore()
	rt.register(s)
	rt.observer.SignalCreated(s.Info())
	capitan.Emit(rt.ctx, SignalCreated,
		KeySignalID.Field(int(s.base.id)),
		KeySignalName.Field(s.base.name),
		KeySignalKind.Field(string(s.base.kind)),
	)
	rt.schedule(s.emitInit)
	return s
}

// restore loads the persisted value, if any. Failures keep the initial
// value and are logged, never fatal.
func (s *Signal[T]) restore() {
	if s.store == nil || s.persistKey == "" {
		return
	}
	rt := s.base.rt
	raw, ok, err := s.store.Load(rt.ctx, s.persistKey)
	if err != nil {
		rt.logger.Warn("filament: restore failed",
			"signal", s.base.name, "key", s.persistKey, "error", err)
		return
	}
	if !ok {
		return
	}
	var v T
	if err := s.codec.Unmarshal([]byte(raw), &v); err != nil {
		rt.logger.Warn("filament: restore decode failed",
			"signal", s.base.name, "key", s.persistKey, "error", err)
		return
	}
	s.value = v
}

func (s *Signal[T]) emitInit() {
	s.mu.RLock()
	if s.disposed {
		s.mu.RUnlock()
		return
	}
	v := s.value
	s.mu.RUnlock()
	s.emit(Event[T]{Kind: EventInit, Value: v})
}

// Get returns the current value and subscribes the running computation,
// if one is on the tracking stack.
func (s *Signal[T]) Get() (T, error) {
	s.mu.RLock()
	if s.disposed {
		s.mu.RUnlock()
		var zero T
		return zero, &DisposedError{Signal: s.base.name, Op: "get"}
	}
	v := s.value
	s.mu.RUnlock()

	if l := s.base.rt.current(); l != nil {
		s.base.subscribe(l)
		if t, ok := l.(sourceTracker); ok {
			t.trackSource(&s.base)
		}
	}
	return v, nil
}

// Peek returns the current value without tracking.
func (s *Signal[T]) Peek() (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		var zero T
		return zero, &DisposedError{Signal: s.base.name, Op: "peek"}
	}
	return s.value, nil
}

// Set writes a new value. The pipeline order is fixed: the identity check
// suppresses no-op writes, transforms fold over the value, the validator
// sees the raw value, the raw value is stored, and notification delivers
// the transformed result as the change event's Old. Persistence runs
// last.
func (s *Signal[T]) Set(value T) error {
	s.mu.RLock()
	if s.disposed {
		s.mu.RUnlock()
		return &DisposedError{Signal: s.base.name, Op: "set"}
	}
	current := s.value
	s.mu.RUnlock()

	if s.equal(current, value) {
		return nil
	}

	start := time.Now()
	transformed, err := s.applyTransforms(value)
	if err != nil {
		cerr := &ComputationError{Signal: s.base.name, Err: err}
		s.recordError(cerr, errKindComputation)
		return cerr
	}

	if verdict := s.validate(value); !verdict.Valid {
		verr := &ValidationError{Signal: s.base.name, Reason: verdict.Err, Value: value}
		s.recordError(verr, errKindValidation)
		capitan.Emit(s.base.rt.ctx, WriteRejected,
			KeySignalName.Field(s.base.name),
			KeyError.Field(verdict.Err),
		)
		return verr
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return &DisposedError{Signal: s.base.name, Op: "set"}
	}
	s.value = value
	s.mu.Unlock()

	s.notify(transformed)

	rt := s.base.rt
	rt.observer.SignalWritten(s.Info(), time.Since(start))
	capitan.Emit(rt.ctx, SignalWritten,
		KeySignalID.Field(int(s.base.id)),
		KeySignalName.Field(s.base.name),
		KeySignalKind.Field(string(s.base.kind)),
	)
	return nil
}

// Update applies fn to the current value and writes the result through
// the full pipeline.
func (s *Signal[T]) Update(fn func(T) T) error {
	v, err := s.Peek()
	if err != nil {
		return err
	}
	return s.Set(fn(v))
}

// applyTransforms folds the plain transforms, then the pipz chain. A
// panic in a transform surfaces as the returned error.
func (s *Signal[T]) applyTransforms(value T) (out T, err error) {
	out = value
	if len(s.transforms) == 0 && s.chain == nil {
		return out, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	for _, fn := range s.transforms {
		out = fn(out)
	}
	if s.chain != nil {
		out, err = s.chain.Process(s.base.rt.ctx, out)
	}
	return out, err
}

// validate runs the validator behind a recover; a panicking validator
// counts as a rejection with the panic as the reason.
func (s *Signal[T]) validate(value T) Validation {
	if s.validator == nil {
		return Validation{Valid: true}
	}
	verdict, panicked := func() (v Validation, p error) {
		defer func() {
			if r := recover(); r != nil {
				p = recovered(r)
			}
		}()
		return s.validator(value), nil
	}()
	if panicked != nil {
		return Validation{Err: panicked.Error()}
	}
	return verdict
}

// notify delivers an accepted write: subscribers first, then the change
// event, then persistence.
func (s *Signal[T]) notify(transformed T) {
	s.mu.RLock()
	if s.disposed {
		s.mu.RUnlock()
		return
	}
	value := s.value
	s.mu.RUnlock()

	s.base.notifySubscribers()
	s.emit(Event[T]{Kind: EventChange, Value: value, Old: transformed})
	s.persist(value)
}

func (s *Signal[T]) persist(value T) {
	if s.store == nil || s.persistKey == "" {
		return
	}
	rt := s.base.rt
	data, err := s.codec.Marshal(value)
	if err == nil {
		err = s.store.Save(rt.ctx, s.persistKey, string(data))
	}
	if err != nil {
		rt.reportError(errKindPersistence,
			fmt.Errorf("filament: persist %q for signal %q: %w", s.persistKey, s.base.name, err))
		capitan.Emit(rt.ctx, PersistFailed,
			KeySignalName.Field(s.base.name),
			KeyError.Field(err.Error()),
		)
	}
}

// Rehydrate re-reads the persisted value and writes it through the full
// pipeline. Pair it with a store watcher (store.File.Watch) to pick up
// edits made outside the process. Unlike the silent restore at
// construction, failures are returned: the caller chose to rehydrate and
// should know when it did not happen. Without persistence configured, or
// when the store holds no value, Rehydrate is a no-op. The identity check
// suppresses redundant rehydrations of an unchanged value.
func (s *Signal[T]) Rehydrate() error {
	if s.store == nil || s.persistKey == "" {
		return nil
	}
	rt := s.base.rt
	raw, ok, err := s.store.Load(rt.ctx, s.persistKey)
	if err != nil {
		return fmt.Errorf("filament: rehydrate %q for signal %q: %w", s.persistKey, s.base.name, err)
	}
	if !ok {
		return nil
	}
	var v T
	if err := s.codec.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("filament: rehydrate decode %q for signal %q: %w", s.persistKey, s.base.name, err)
	}
	return s.Set(v)
}

// recordError stores err as the signal's current error, reports it to the
// runtime, and emits an error event.
func (s *Signal[T]) recordError(err error, kind string) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.base.rt.reportError(kind, err)
	s.emitError(err)
}

// emitError fires an error event, bounded by maxErrorDepth for handlers
// that keep failing while handling failures.
func (s *Signal[T]) emitError(err error) {
	s.mu.Lock()
	if s.errorDepth >= maxErrorDepth {
		s.mu.Unlock()
		s.base.rt.logger.Error("filament: error handler depth exceeded",
			"signal", s.base.name, "depth", maxErrorDepth)
		return
	}
	s.errorDepth++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.errorDepth--
		s.mu.Unlock()
	}()

	s.mu.RLock()
	v := s.value
	s.mu.RUnlock()
	s.emit(Event[T]{Kind: EventError, Value: v, Err: err})
}

// On registers a handler for kind and returns its removal func. Handlers
// fire in registration order. Registering on a disposed signal drops the
// handler and returns a no-op removal func.
func (s *Signal[T]) On(kind EventKind, h func(Event[T])) func() {
	if h == nil {
		return func() {}
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return func() {}
	}
	if s.handlers == nil {
		s.handlers = make(map[EventKind][]handlerEntry[T])
	}
	id := s.base.rt.nextID()
	s.handlers[kind] = append(s.handlers[kind], handlerEntry[T]{id: id, fn: h})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		entries := s.handlers[kind]
		for i, e := range entries {
			if e.id == id {
				s.handlers[kind] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// emit snapshots the handlers for kind and invokes each behind a recover,
// so one panicking handler cannot starve the rest.
func (s *Signal[T]) emit(ev Event[T]) {
	s.mu.RLock()
	entries := s.handlers[ev.Kind]
	if len(entries) == 0 {
		s.mu.RUnlock()
		return
	}
	snapshot := make([]handlerEntry[T], len(entries))
	copy(snapshot, entries)
	s.mu.RUnlock()

	for _, e := range snapshot {
		s.invoke(e.fn, ev)
	}
}

func (s *Signal[T]) invoke(h func(Event[T]), ev Event[T]) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		herr := &HandlerError{Signal: s.base.name, Kind: ev.Kind, Err: recovered(r)}
		s.mu.Lock()
		s.err = herr
		s.mu.Unlock()
		rt := s.base.rt
		rt.reportError(errKindHandler, herr)
		capitan.Emit(rt.ctx, HandlerFailed,
			KeySignalName.Field(s.base.name),
			KeyEventKind.Field(ev.Kind.String()),
			KeyError.Field(herr.Err.Error()),
		)
		s.emitError(herr)
	}()
	h(ev)
}

// Dispose terminates the signal. The dispose event fires first, then
// handlers, subscribers, and cached path views are released, then the
// terminal flag is set. Every later call is a no-op, and every later
// operation fails with DisposedError.
func (s *Signal[T]) Dispose() {
	s.mu.Lock()
	if s.disposed || s.disposing {
		s.mu.Unlock()
		return
	}
	s.disposing = true
	v := s.value
	s.mu.Unlock()

	s.emit(Event[T]{Kind: EventDispose, Value: v})

	s.mu.Lock()
	s.handlers = nil
	s.disposed = true
	s.mu.Unlock()

	s.base.clearSubscribers()
	s.base.disposeSelectors()

	rt := s.base.rt
	rt.deregister(s.base.id)
	rt.observer.SignalDisposed(s.Info())
	capitan.Emit(rt.ctx, SignalDisposed,
		KeySignalID.Field(int(s.base.id)),
		KeySignalName.Field(s.base.name),
	)
}

// ID returns the signal's runtime-unique identifier.
func (s *Signal[T]) ID() uint64 { return s.base.id }

// Name returns the configured name, which may be empty.
func (s *Signal[T]) Name() string { return s.base.name }

// Kind returns the signal's classification.
func (s *Signal[T]) Kind() SignalKind { return s.base.kind }

// Err returns the most recent recorded error. Errors are sticky; an
// accepted write does not clear one.
func (s *Signal[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loading reports the loading flag.
func (s *Signal[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLoading sets the loading flag. No notification fires.
func (s *Signal[T]) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Disposed reports whether the signal is terminally disposed.
func (s *Signal[T]) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// Info implements Inspectable.
func (s *Signal[T]) Info() SignalInfo {
	return SignalInfo{
		ID:          s.base.id,
		Name:        s.base.name,
		Kind:        s.base.kind,
		Subscribers: s.base.subscriberCount(),
	}
}

// ValueString implements Inspectable: the current value through the
// signal's codec.
func (s *Signal[T]) ValueString() (string, error) {
	v, err := s.Peek()
	if err != nil {
		return "", err
	}
	data, err := s.codec.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var _ Inspectable = (*Signal[int])(nil)
