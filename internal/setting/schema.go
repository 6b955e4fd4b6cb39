package setting

import (
	"reflect"

	"connsettings/internal/wire"
)

// Descriptor is one entry of a type's schema
type Descriptor struct {
	Name string

	// Native is nil for wire-only properties
	Native *Property

	WireKind wire.Kind

	Get    GetFunc
	Set    SetFunc
	NotSet NotSetFunc

	ToWire   ToWireFunc
	FromWire FromWireFunc

	// secretOf is the secret property a companion flags descriptor belongs to
	secretOf *Property
}

// Flags returns the native property's flags, or 0 for wire-only properties
func (d *Descriptor) Flags() PropertyFlags {
	if d.Native == nil {
		return 0
	}
	return d.Native.Flags
}

// IsSecret reports whether the descriptor holds a secret value
func (d *Descriptor) IsSecret() bool {
	return d.Flags().Has(Secret)
}

// IsWritable reports whether the native property accepts values
func (d *Descriptor) IsWritable() bool {
	return d.Flags().Has(Writable)
}

// HasTransform reports whether the descriptor converts values on the wire
func (d *Descriptor) HasTransform() bool {
	return d.ToWire != nil
}

// SecretOf returns the secret property a "-flags" descriptor belongs to
func (d *Descriptor) SecretOf() string {
	if d.secretOf == nil {
		return ""
	}
	return d.secretOf.Name
}

// Schema is the ordered, immutable descriptor list of one setting type
type Schema struct {
	info  TypeInfo
	props []*Descriptor
	index map[string]int
}

// Type returns the registration the schema belongs to
func (s *Schema) Type() TypeInfo { return s.info }

// Properties returns the descriptors in schema order. The slice is shared
// and must not be modified.
func (s *Schema) Properties() []*Descriptor { return s.props }

// Len returns the number of descriptors
func (s *Schema) Len() int { return len(s.props) }

// Find returns the descriptor called name, or nil
func (s *Schema) Find(name string) *Descriptor {
	if i, ok := s.index[name]; ok {
		return s.props[i]
	}
	return nil
}

// Schema returns the schema of a registered type, building it on first use
func (r *Registry) Schema(t reflect.Type) (*Schema, error) {
	e, err := r.lookupEntry(t)
	if err != nil {
		return nil, err
	}
	e.once.Do(func() {
		e.schema = buildSchema(e.info, e.class)
	})
	return e.schema, nil
}

// SchemaOf returns the schema of a setting instance's type
func (r *Registry) SchemaOf(s Setting) (*Schema, error) {
	if s == nil {
		return nil, ErrUnknownSetting
	}
	return r.Schema(reflect.TypeOf(s))
}

// SchemaByName returns the schema of the named type
func (r *Registry) SchemaByName(name string) (*Schema, error) {
	info, ok := r.LookupByName(name)
	if !ok {
		return nil, &PropertyError{Setting: name, Err: ErrUnknownSetting}
	}
	return r.Schema(info.Type)
}

// Find returns the descriptor of property name of type t, or nil
func (r *Registry) Find(t reflect.Type, name string) *Descriptor {
	sch, err := r.Schema(t)
	if err != nil {
		return nil
	}
	return sch.Find(name)
}

// buildSchema merges native properties with overrides. Overrides are
// scanned most-derived first so a derived override shadows an ancestor's.
// Overrides without a native counterpart are appended last.
func buildSchema(info TypeInfo, c *Class) *Schema {
	chain := c.chain()

	var overrides []*Override
	for _, k := range chain {
		overrides = append(overrides, k.Overrides...)
	}

	natives := []*Property{{
		Name:    nameProperty,
		Kind:    wire.KindString,
		Default: wire.String(info.Name),
		Get:     func(Setting) wire.Value { return wire.String(info.Name) },
		Set:     func(Setting, wire.Value) {},
	}}
	for i := len(chain) - 1; i >= 0; i-- {
		natives = append(natives, chain[i].Properties...)
	}

	sch := &Schema{info: info, index: make(map[string]int, len(natives)+len(overrides))}
	add := func(d *Descriptor) {
		sch.index[d.Name] = len(sch.props)
		sch.props = append(sch.props, d)
	}

	for _, p := range natives {
		d := &Descriptor{Name: p.Name, Native: p, WireKind: p.Kind}
		for _, o := range overrides {
			if o.Name != p.Name || o.wireOnly {
				continue
			}
			d.WireKind = o.WireKind
			d.Get, d.Set, d.NotSet = o.Get, o.Set, o.NotSet
			d.ToWire, d.FromWire = o.ToWire, o.FromWire
			break
		}
		add(d)

		if p.SecretFlags != nil {
			add(flagsDescriptor(p))
		}
	}

	for _, o := range overrides {
		if !o.wireOnly {
			continue
		}
		if _, shadowed := sch.index[o.Name]; shadowed {
			continue
		}
		add(&Descriptor{
			Name:     o.Name,
			WireKind: o.WireKind,
			Get:      o.Get,
			Set:      o.Set,
			NotSet:   o.NotSet,
		})
	}
	return sch
}

func flagsPropertyName(secret string) string {
	return secret + "-flags"
}

// flagsDescriptor exposes the flags field of secret property p on the wire
func flagsDescriptor(p *Property) *Descriptor {
	field := p.SecretFlags
	native := &Property{
		Name:  flagsPropertyName(p.Name),
		Kind:  wire.KindUint32,
		Flags: Writable,
		Get:   func(s Setting) wire.Value { return wire.Uint32(uint32(field.Get(s))) },
		Set:   func(s Setting, v wire.Value) { field.Set(s, SecretFlags(v.AsUint32())) },
	}
	return &Descriptor{
		Name:     native.Name,
		Native:   native,
		WireKind: wire.KindUint32,
		Set: func(hc *HookContext, v wire.Value) error {
			if v.Kind() != wire.KindUint32 {
				return NewPropertyError(hc.Type, hc.Property, ErrPropertyTypeMismatch,
					"expected %s, got %s", wire.KindUint32, v.Kind())
			}
			f := SecretFlags(v.AsUint32())
			if f&^SecretFlagsAll != 0 {
				return NewPropertyError(hc.Type, hc.Property, ErrInvalidSecretFlags, "invalid secret flags %d", f)
			}
			field.Set(hc.Setting, f)
			return nil
		},
		secretOf: p,
	}
}
