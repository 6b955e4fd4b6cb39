package setting

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"connsettings/internal/wire"
)

const (
	// ConnectionSettingName is the only setting type allowed priority 0
	ConnectionSettingName = "connection"

	// MaxPriority is the highest priority a setting type may declare
	MaxPriority = 4

	// nameProperty is the read-only property every setting exposes
	nameProperty = "name"
)

// TypeInfo identifies a registered setting type
type TypeInfo struct {
	Name        string
	Type        reflect.Type
	Priority    uint32
	ErrorDomain string
}

// Default is the registry concrete setting types register into at init
var Default = NewRegistry()

// Register adds c to the Default registry
func Register(c *Class) error { return Default.Register(c) }

// MustRegister adds c to the Default registry and panics on error
func MustRegister(c *Class) { Default.MustRegister(c) }

type entry struct {
	info  TypeInfo
	class *Class

	once   sync.Once
	schema *Schema
}

// Registry maps setting names, Go types and error domains to each other
// and caches one Schema per type
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*entry
	byType   map[reflect.Type]*entry
	byDomain map[string]*entry

	logger *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*entry),
		byType:   make(map[reflect.Type]*entry),
		byDomain: make(map[string]*entry),
	}
}

// SetLogger sets the logger used for lenient parse warnings. Nil restores
// slog.Default.
func (r *Registry) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

func (r *Registry) log() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Register adds a setting class. Registering an identical
// (name, type, priority, domain) tuple again is a no-op; any conflicting
// registration fails with ErrRegistration.
func (r *Registry) Register(c *Class) error {
	if c == nil {
		return registrationError("nil class")
	}
	if c.Name == "" {
		return registrationError("class has no name")
	}
	if c.New == nil {
		return registrationError("%q has no constructor", c.Name)
	}
	if c.ErrorDomain == "" {
		return registrationError("%q has no error domain", c.Name)
	}
	if c.Priority > MaxPriority {
		return registrationError("%q has priority %d, maximum is %d", c.Name, c.Priority, MaxPriority)
	}
	if c.Priority == 0 && c.Name != ConnectionSettingName {
		return registrationError("priority 0 is reserved for %q, not %q", ConnectionSettingName, c.Name)
	}

	t := reflect.TypeOf(c.New())
	if t == nil {
		return registrationError("%q constructor returned nil", c.Name)
	}
	info := TypeInfo{Name: c.Name, Type: t, Priority: c.Priority, ErrorDomain: c.ErrorDomain}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.byName[c.Name]; ok {
		if e.info == info {
			return nil
		}
		return registrationError("%q already registered as %s (priority %d, domain %q)",
			c.Name, e.info.Type, e.info.Priority, e.info.ErrorDomain)
	}
	if e, ok := r.byType[t]; ok {
		return registrationError("type %s already registered as %q", t, e.info.Name)
	}
	if e, ok := r.byDomain[c.ErrorDomain]; ok {
		return registrationError("error domain %q already used by %q", c.ErrorDomain, e.info.Name)
	}
	if err := checkClass(c); err != nil {
		return err
	}

	e := &entry{info: info, class: c}
	r.byName[c.Name] = e
	r.byType[t] = e
	r.byDomain[c.ErrorDomain] = e
	return nil
}

// MustRegister is Register for init-time use. It panics on error.
func (r *Registry) MustRegister(c *Class) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// checkClass validates the property table of c and its ancestors
func checkClass(c *Class) error {
	chain := c.chain()

	natives := map[string]*Property{nameProperty: nil}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, p := range chain[i].Properties {
			if p == nil || p.Name == "" {
				return registrationError("%q declares an unnamed property", c.Name)
			}
			if _, dup := natives[p.Name]; dup {
				return registrationError("%q declares property %q twice", c.Name, p.Name)
			}
			if p.Kind == wire.KindInvalid || p.Get == nil || p.Set == nil {
				return registrationError("%q property %q needs a kind, getter and setter", c.Name, p.Name)
			}
			if p.Default.IsValid() && p.Default.Kind() != p.Kind {
				return registrationError("%q property %q has a %s default for a %s property",
					c.Name, p.Name, p.Default.Kind(), p.Kind)
			}
			if p.SecretFlags != nil && !p.Flags.Has(Secret) {
				return registrationError("%q property %q has secret flags but is not secret", c.Name, p.Name)
			}
			natives[p.Name] = p
		}
	}
	for name, p := range natives {
		if p == nil || p.SecretFlags == nil {
			continue
		}
		if _, dup := natives[flagsPropertyName(name)]; dup {
			return registrationError("%q property %q collides with the flags of %q",
				c.Name, flagsPropertyName(name), name)
		}
	}

	for _, k := range chain {
		seen := make(map[string]bool, len(k.Overrides))
		for _, o := range k.Overrides {
			if o == nil || o.Name == "" {
				return registrationError("%q declares an unnamed override", c.Name)
			}
			if seen[o.Name] {
				return registrationError("%q overrides property %q twice", c.Name, o.Name)
			}
			seen[o.Name] = true

			if (o.ToWire == nil) != (o.FromWire == nil) {
				return registrationError("%q override %q must declare both wire transforms or neither", c.Name, o.Name)
			}
			if o.WireKind == wire.KindInvalid {
				return registrationError("%q override %q has no wire kind", c.Name, o.Name)
			}
			_, native := natives[o.Name]
			if o.Name == nameProperty {
				return registrationError("%q cannot override %q", c.Name, nameProperty)
			}
			if o.wireOnly && native {
				return registrationError("%q wire-only property %q shadows a native property", c.Name, o.Name)
			}
			if !o.wireOnly && !native {
				return registrationError("%q overrides unknown property %q", c.Name, o.Name)
			}
		}
	}
	return nil
}

func (r *Registry) lookupEntry(t reflect.Type) (*entry, error) {
	r.mu.RLock()
	e, ok := r.byType[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSetting, t)
	}
	return e, nil
}

// LookupByName returns the type registered under name
func (r *Registry) LookupByName(name string) (TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byName[name]; ok {
		return e.info, true
	}
	return TypeInfo{}, false
}

// LookupByType returns the registration of a Go type
func (r *Registry) LookupByType(t reflect.Type) (TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byType[t]; ok {
		return e.info, true
	}
	return TypeInfo{}, false
}

// LookupByErrorDomain returns the type owning an error domain
func (r *Registry) LookupByErrorDomain(domain string) (TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byDomain[domain]; ok {
		return e.info, true
	}
	return TypeInfo{}, false
}

// TypeOf returns the registration of a setting instance
func (r *Registry) TypeOf(s Setting) (TypeInfo, bool) {
	if s == nil {
		return TypeInfo{}, false
	}
	return r.LookupByType(reflect.TypeOf(s))
}

// NameOf returns the registered name of a setting instance, or "" when
// its type is unknown
func (r *Registry) NameOf(s Setting) string {
	info, _ := r.TypeOf(s)
	return info.Name
}

// Types returns every registration ordered by priority, then name
func (r *Registry) Types() []TypeInfo {
	r.mu.RLock()
	out := make([]TypeInfo, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e.info)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// New creates a default instance of the named type
func (r *Registry) New(name string) (Setting, error) {
	r.mu.RLock()
	e, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	return e.class.New(), nil
}

// PriorityOf returns the priority of a registered type
func (r *Registry) PriorityOf(t reflect.Type) (uint32, bool) {
	info, ok := r.LookupByType(t)
	return info.Priority, ok
}

// ComparePriority orders settings by their type's priority. Unregistered
// types sort last.
func (r *Registry) ComparePriority(a, b Setting) int {
	pa, pb := r.priority(a), r.priority(b)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	}
	return 0
}

func (r *Registry) priority(s Setting) uint64 {
	info, ok := r.TypeOf(s)
	if !ok {
		return MaxPriority + 1
	}
	return uint64(info.Priority)
}

// SortByPriority sorts settings in place, hardware settings first. Settings
// of equal priority are ordered by name.
func (r *Registry) SortByPriority(settings []Setting) {
	sort.SliceStable(settings, func(i, j int) bool {
		if c := r.ComparePriority(settings[i], settings[j]); c != 0 {
			return c < 0
		}
		return r.NameOf(settings[i]) < r.NameOf(settings[j])
	})
}
