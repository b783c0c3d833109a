package registry

import (
	"sort"
	"sync"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/types"
)

// Renderer is an object renderer bound to one or more (type, backend) pairs.
// Backend families narrow it further: text backends expect a cell renderer,
// structured backends expect a codec encoder.
type Renderer interface {
	// Name identifies the renderer in logs and diagnostics.
	Name() string
}

// RendererFactory builds the renderer for a binding. It is called once per
// resolved (chain, backend) pair and the result is memoised.
type RendererFactory func() Renderer

// Binding is a snapshot of one registered (type, backend) association.
type Binding struct {
	Type     string
	Backend  string
	Renderer string
	// Seq orders registrations; the highest Seq for a pair is the live one.
	Seq int
}

type bindingKey struct {
	typeName string
	backend  string
}

type binding struct {
	factory RendererFactory
	name    string
	seq     int
}

// Renderers is the renderer binding table.
//
// Override policy: registering the same (type, backend) pair twice replaces
// the earlier binding. Later registrations shadow earlier ones so plugin
// renderers can override the built-ins, and the outcome does not depend on
// anything but registration order.
type Renderers struct {
	mu       sync.RWMutex
	bindings map[bindingKey]binding
	answers  map[string][]string
	memo     map[string]Renderer
	seq      int
	sealed   bool
}

// NewRenderers creates an empty binding table.
func NewRenderers() *Renderers {
	return &Renderers{
		bindings: make(map[bindingKey]binding),
		answers:  make(map[string][]string),
		memo:     make(map[string]Renderer),
	}
}

// DeclareBackend records the ordered list of names a backend answers to,
// beyond its own name. A TestRenderer declared with "TextRenderer" uses text
// bindings wherever it has none of its own.
func (r *Renderers) DeclareBackend(name string, answersTo ...string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "backend name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.Newf(errors.ErrConfiguration, "cannot declare backend %s: registry is sealed", name)
	}

	names := []string{name}
	for _, alias := range answersTo {
		if alias != "" && alias != name && !contains(names, alias) {
			names = append(names, alias)
		}
	}
	r.answers[name] = names
	r.memo = make(map[string]Renderer)
	return nil
}

// AnswersTo returns the names backend answers to, its own name first.
func (r *Renderers) AnswersTo(backend string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.answersLocked(backend)...)
}

func (r *Renderers) answersLocked(backend string) []string {
	if names, ok := r.answers[backend]; ok {
		return names
	}
	return []string{backend}
}

// Register binds factory to every (type, backend) combination given.
func (r *Renderers) Register(typeNames, backendNames []string, factory RendererFactory) error {
	if len(typeNames) == 0 || len(backendNames) == 0 {
		return errors.New(errors.ErrInvalidInput, "binding needs at least one type and one backend")
	}
	if factory == nil {
		return errors.New(errors.ErrInvalidInput, "binding needs a renderer factory")
	}
	// A rejected registration must leave no partial bindings behind.
	if contains(typeNames, "") || contains(backendNames, "") {
		return errors.New(errors.ErrInvalidInput, "binding type and backend names cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.New(errors.ErrConfiguration, "cannot register renderer: registry is sealed")
	}

	name := factory().Name()
	logger := logging.GetLogger("registry.Renderers")
	for _, typeName := range typeNames {
		for _, backend := range backendNames {
			key := bindingKey{typeName: typeName, backend: backend}
			if old, exists := r.bindings[key]; exists {
				logger.Debug().
					Str("type", typeName).
					Str("backend", backend).
					Str("previous", old.name).
					Str("renderer", name).
					Msg("Renderer binding overridden")
			}
			r.seq++
			r.bindings[key] = binding{factory: factory, name: name, seq: r.seq}
		}
	}

	r.memo = make(map[string]Renderer)
	return nil
}

// MustRegister registers a binding and panics on failure. Registration
// errors at startup are programming errors.
func (r *Renderers) MustRegister(typeNames, backendNames []string, factory RendererFactory) {
	if err := r.Register(typeNames, backendNames, factory); err != nil {
		panic(err.Error())
	}
}

// Seal ends the initialisation phase. Later registrations fail.
func (r *Renderers) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Renderers) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Resolve walks chain from most specific to most general and returns the
// renderer of the first binding matching one of the names backend answers to.
// BaseType terminates every chain; if even that has no binding for the
// backend the registry is misconfigured.
func (r *Renderers) Resolve(chain types.TypeChain, backend string) (Renderer, error) {
	full := chain.WithBase()
	memoKey := full.String() + "|" + backend

	r.mu.RLock()
	if cached, ok := r.memo[memoKey]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	b, matchedType, ok := r.findLocked(full, backend)
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.ErrConfiguration,
			"no default renderer registered for backend %s", backend).
			WithDetail("chain", full.String()).
			WithDetail("backend", backend)
	}

	renderer := b.factory()

	r.mu.Lock()
	// Another registration may have invalidated the lookup in between; only
	// memoise when the binding is still the live one.
	if cur, live := r.bindings[bindingKey{typeName: matchedType.typeName, backend: matchedType.backend}]; live && cur.seq == b.seq {
		r.memo[memoKey] = renderer
	}
	r.mu.Unlock()

	logger := logging.GetLogger("registry.Renderers")
	logger.Trace().
		Str("chain", full.String()).
		Str("backend", backend).
		Str("matchedType", matchedType.typeName).
		Str("matchedBackend", matchedType.backend).
		Str("renderer", renderer.Name()).
		Msg("Resolved renderer")

	return renderer, nil
}

func (r *Renderers) findLocked(chain types.TypeChain, backend string) (binding, bindingKey, bool) {
	names := r.answersLocked(backend)
	for _, typeName := range chain {
		for _, name := range names {
			key := bindingKey{typeName: typeName, backend: name}
			if b, ok := r.bindings[key]; ok {
				return b, key, true
			}
		}
	}
	return binding{}, bindingKey{}, false
}

// Lookup returns the renderer bound to exactly typeName for backend (or one
// of the names it answers to), without walking any ancestry.
func (r *Renderers) Lookup(typeName, backend string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.answersLocked(backend) {
		if b, ok := r.bindings[bindingKey{typeName: typeName, backend: name}]; ok {
			return b.factory(), true
		}
	}
	return nil, false
}

// Bindings returns a snapshot of the live bindings sorted by backend, then type.
func (r *Renderers) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, 0, len(r.bindings))
	for key, b := range r.bindings {
		out = append(out, Binding{Type: key.typeName, Backend: key.backend, Renderer: b.name, Seq: b.seq})
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Backend != out[k].Backend {
			return out[i].Backend < out[k].Backend
		}
		return out[i].Type < out[k].Type
	})
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
