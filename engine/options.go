package engine

import (
	"github.com/darkhz/hotspotctl/api/eventbus"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/bridge"
)

// Option configures an engine.
type Option func(e *Engine)

// WithSource sets the source of state-change signals. Without a source,
// the engine only observes locally confirmed transitions.
func WithSource(source bridge.Source) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithEventBus sets the event stream which the engine publishes to.
// The engine does not close a provided event stream.
func WithEventBus(bus *eventbus.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
		e.ownsBus = false
	}
}

// WithConfiguration sets the access point configuration that is used by the
// next enable, without writing it to the subsystem.
func WithConfiguration(cfg hotspot.AccessPointConfig) Option {
	return func(e *Engine) {
		cfg = cfg.Clone()
		e.config = &cfg
	}
}
