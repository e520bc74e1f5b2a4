package tts

import (
	"fmt"
	"sync"
)

// Availability is the cached probe outcome for one backend. "Not
// installed" is a normal data value here, never an error in flight.
type Availability int

const (
	AvailabilityUnknown Availability = iota
	AvailabilityAvailable
	AvailabilityUnavailable
)

func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Factory constructs a backend. A returned error means the backend cannot
// run in this environment (missing binary, missing credentials); the
// registry records it as unavailable and the error never propagates.
type Factory func() (Engine, error)

// Descriptor is the registry's cached metadata for one backend.
type Descriptor struct {
	Name         string
	Availability Availability
	Capabilities Capabilities

	engine Engine
	reason string
}

// Engine returns the loaded backend handle, or nil when unavailable.
func (d *Descriptor) Engine() Engine {
	return d.engine
}

// Reason describes why an unavailable backend failed its probe.
func (d *Descriptor) Reason() string {
	return d.reason
}

// Registry discovers backends without the caller paying the cost, or the
// risk, of constructing every backend eagerly. Each name is probed at most
// once per registry instance; the descriptor cache is write-once per name
// and read-mostly after the first full probe.
type Registry struct {
	mu          sync.Mutex
	factories   map[string]Factory
	names       []string
	descriptors map[string]*Descriptor
}

// NewRegistry creates an empty registry. Create one per process (or per
// test) and pass it by reference; there is deliberately no package-level
// instance.
func NewRegistry() *Registry {
	return &Registry{
		factories:   make(map[string]Factory),
		descriptors: make(map[string]*Descriptor),
	}
}

// Register adds a backend factory under the given name. Registering a name
// twice replaces the factory but keeps any cached probe result, so register
// everything before first use.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; !ok {
		r.names = append(r.names, name)
	}
	r.factories[name] = f
}

// Engines probes every registered backend once and returns descriptors for
// those that resolved to available.
func (r *Registry) Engines() map[string]*Descriptor {
	r.mu.Lock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	r.mu.Unlock()

	out := make(map[string]*Descriptor)
	for _, name := range names {
		d := r.probe(name)
		if d != nil && d.Availability == AvailabilityAvailable {
			out[name] = d
		}
	}
	return out
}

// Names returns every registered backend name in registration order,
// available or not.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Available reports whether the named backend can run here, probing it if
// it has not been probed yet. Unknown names are simply unavailable.
func (r *Registry) Available(name string) bool {
	d := r.probe(name)
	return d != nil && d.Availability == AvailabilityAvailable
}

// Load returns the backend handle for name. The second return is false for
// both unavailable backends and unknown names; callers must treat the two
// identically so custom backends can be added without touching call sites.
func (r *Registry) Load(name string) (Engine, bool) {
	d := r.probe(name)
	if d == nil || d.Availability != AvailabilityAvailable {
		return nil, false
	}
	return d.engine, true
}

// Describe returns the cached descriptor for name, probing on first use.
// It returns descriptors for unavailable backends too, so callers can show
// the probe failure reason.
func (r *Registry) Describe(name string) (*Descriptor, bool) {
	d := r.probe(name)
	if d == nil {
		return nil, false
	}
	return d, true
}

// probe runs the factory for name at most once and caches the outcome.
// Factory errors and panics both degrade to unavailable; probing touches
// nothing but the registry's own cache.
func (r *Registry) probe(name string) *Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.descriptors[name]; ok {
		return d
	}
	f, ok := r.factories[name]
	if !ok {
		return nil
	}

	d := &Descriptor{Name: name, Availability: AvailabilityUnknown}
	engine, err := runFactory(f)
	switch {
	case err != nil:
		d.Availability = AvailabilityUnavailable
		d.reason = err.Error()
	case !engine.Available():
		d.Availability = AvailabilityUnavailable
		d.reason = "engine reports itself unavailable"
	default:
		d.Availability = AvailabilityAvailable
		d.engine = engine
		d.Capabilities = DetectCapabilities(engine)
	}
	r.descriptors[name] = d
	return d
}

func runFactory(f Factory) (engine Engine, err error) {
	defer func() {
		if p := recover(); p != nil {
			engine = nil
			err = fmt.Errorf("factory panicked: %v", p)
		}
	}()
	return f()
}
