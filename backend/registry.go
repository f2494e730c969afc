package backend

import (
	"fmt"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/sched"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// Factory creates an adapter bound to a scheduler.
type Factory func(s sched.Scheduler) Adapter

// Descriptor is a registered backend.
type Descriptor struct {
	ID        string
	Name      string
	MimeTypes []string
	// Native backends decode in the host and can deliver the loaded metadata signal.
	Native bool
	New    Factory
}

// Plays reports whether the backend declares mime.
func (d Descriptor) Plays(mime string) bool {
	return slices.Contains(d.MimeTypes, mime)
}

// Registry is the ordered table of available backends.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry creates a registry holding descriptors in order.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{}
	for _, d := range descriptors {
		lo.Must0(r.Register(d))
	}
	return r
}

// Register appends d. Identifiers are unique.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" || d.New == nil {
		return fmt.Errorf("backend descriptor needs an id and a factory")
	}
	if _, ok := r.Get(d.ID); ok {
		return fmt.Errorf("backend %q already registered", d.ID)
	}
	r.descriptors = append(r.descriptors, d)
	return nil
}

// Get returns the backend registered under id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	return lo.Find(r.descriptors, func(d Descriptor) bool { return d.ID == id })
}

// All returns every backend in registration order.
func (r *Registry) All() []Descriptor {
	return slices.Clone(r.descriptors)
}

// Supports reports whether some backend plays mime.
func (r *Registry) Supports(mime string) bool {
	return len(r.For(mime)) > 0
}

// For returns the backends playing mime, the configured preferred backend first
// and the rest in registration order.
func (r *Registry) For(mime string) []Descriptor {
	matching := lo.Filter(r.descriptors, func(d Descriptor, _ int) bool { return d.Plays(mime) })

	preferred := viper.GetString(key.BackendPreferred)
	if preferred == "" {
		return matching
	}

	slices.SortStableFunc(matching, func(a, b Descriptor) int {
		switch {
		case a.ID == preferred && b.ID != preferred:
			return -1
		case b.ID == preferred && a.ID != preferred:
			return 1
		default:
			return 0
		}
	})
	return matching
}

// DefaultFor returns the backend an instance playing mime binds to first.
func (r *Registry) DefaultFor(mime string) mo.Option[Descriptor] {
	candidates := r.For(mime)
	if len(candidates) == 0 {
		return mo.None[Descriptor]()
	}
	return mo.Some(candidates[0])
}

// HasNative reports whether a native backend plays any of mimes.
func (r *Registry) HasNative(mimes []string) bool {
	return lo.SomeBy(mimes, func(mime string) bool {
		return lo.SomeBy(r.For(mime), func(d Descriptor) bool { return d.Native })
	})
}

// Suggest returns the registered identifier closest to name.
func (r *Registry) Suggest(name string) string {
	ids := lo.Map(r.descriptors, func(d Descriptor, _ int) string { return d.ID })
	if len(ids) == 0 {
		return ""
	}
	return lo.MinBy(ids, func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
}

// Default returns the built-in backends: the host decoder first, then mpv and IINA.
func Default(native NativeOptions) *Registry {
	return NewRegistry(
		NativeDescriptor(native),
		MPVDescriptor(),
		IINADescriptor(),
	)
}
