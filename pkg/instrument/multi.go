package instrument

import (
	"time"

	"github.com/filament-go/filament/pkg/filament"
)

// Multi fans each observer callback out to every given observer, in
// order. Nil entries are dropped. With no observers left the result is
// a no-op, and a single observer is returned unwrapped.
func Multi(observers ...filament.Observer) filament.Observer {
	kept := make([]filament.Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			kept = append(kept, o)
		}
	}

	switch len(kept) {
	case 0:
		return filament.NoOpObserver{}
	case 1:
		return kept[0]
	}
	return multiObserver(kept)
}

type multiObserver []filament.Observer

func (m multiObserver) SignalCreated(info filament.SignalInfo) {
	for _, o := range m {
		o.SignalCreated(info)
	}
}

func (m multiObserver) SignalWritten(info filament.SignalInfo, dur time.Duration) {
	for _, o := range m {
		o.SignalWritten(info, dur)
	}
}

func (m multiObserver) SignalDisposed(info filament.SignalInfo) {
	for _, o := range m {
		o.SignalDisposed(info)
	}
}

func (m multiObserver) EffectRan(id uint64, dur time.Duration) {
	for _, o := range m {
		o.EffectRan(id, dur)
	}
}

func (m multiObserver) BatchFlushed(pending int) {
	for _, o := range m {
		o.BatchFlushed(pending)
	}
}

func (m multiObserver) EngineError(kind string, err error) {
	for _, o := range m {
		o.EngineError(kind, err)
	}
}

var _ filament.Observer = multiObserver(nil)
