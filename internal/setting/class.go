package setting

import (
	"connsettings/internal/wire"
)

// Class describes a setting type. Concrete classes set New; abstract
// ancestors referenced through Parent leave it nil and are never registered.
type Class struct {
	Name        string
	Priority    uint32
	ErrorDomain string

	// Parent is the abstract ancestor whose properties and overrides are
	// inherited. Nil means the implicit root.
	Parent *Class

	New func() Setting

	// Properties are the native properties declared by this class, in
	// schema order
	Properties []*Property

	// Overrides customize native properties of this class or its
	// ancestors, or declare wire-only properties
	Overrides []*Override
}

// chain returns c followed by its ancestors, most-derived first
func (c *Class) chain() []*Class {
	var out []*Class
	for k := c; k != nil; k = k.Parent {
		out = append(out, k)
	}
	return out
}

// Property is a native property bound to a field of a concrete setting
type Property struct {
	Name string
	Kind wire.Kind

	// Default is the value a new instance holds. Invalid means the zero
	// value of Kind.
	Default wire.Value

	Flags PropertyFlags

	Get func(s Setting) wire.Value
	Set func(s Setting, v wire.Value)

	// SecretFlags is the flags field owned by a secret property
	SecretFlags *SecretFlagsField
}

// SecretFlagsField reads and writes the secret flags stored next to a
// secret value
type SecretFlagsField struct {
	Get func(s Setting) SecretFlags
	Set func(s Setting, f SecretFlags)
}

// DefaultValue returns the property's declared default
func (p *Property) DefaultValue() wire.Value {
	if p.Default.IsValid() {
		return p.Default.Clone()
	}
	return wire.Zero(p.Kind)
}

// IsDefault reports whether v equals the declared default
func (p *Property) IsDefault(v wire.Value) bool {
	if p.Default.IsValid() {
		return wire.Equal(v, p.Default)
	}
	return wire.Equal(v, wire.Zero(p.Kind))
}

// WithDefault sets the declared default
func (p *Property) WithDefault(v wire.Value) *Property {
	p.Default = v
	return p
}

// WithFlags adds flags
func (p *Property) WithFlags(f PropertyFlags) *Property {
	p.Flags |= f
	return p
}

// ReadOnly clears the writable flag
func (p *Property) ReadOnly() *Property {
	p.Flags &^= Writable
	return p
}

// Secret marks the property secret. A non-nil field stores its flags.
func (p *Property) Secret(field *SecretFlagsField) *Property {
	p.Flags |= Secret
	p.SecretFlags = field
	return p
}

// FlagsOf binds a SecretFlagsField to a struct field of S
func FlagsOf[S Setting](field func(S) *SecretFlags) *SecretFlagsField {
	return &SecretFlagsField{
		Get: func(s Setting) SecretFlags { return *field(s.(S)) },
		Set: func(s Setting, f SecretFlags) { *field(s.(S)) = f },
	}
}

func bind[S Setting, T any](name string, kind wire.Kind, field func(S) *T, get func(T) wire.Value, set func(wire.Value) T) *Property {
	return &Property{
		Name:  name,
		Kind:  kind,
		Flags: Writable,
		Get:   func(s Setting) wire.Value { return get(*field(s.(S))) },
		Set:   func(s Setting, v wire.Value) { *field(s.(S)) = set(v) },
	}
}

func BoolProperty[S Setting](name string, field func(S) *bool) *Property {
	return bind(name, wire.KindBool, field, wire.Bool, wire.Value.AsBool)
}

func ByteProperty[S Setting](name string, field func(S) *uint8) *Property {
	return bind(name, wire.KindByte, field, wire.Byte, wire.Value.AsByte)
}

func Int32Property[S Setting](name string, field func(S) *int32) *Property {
	return bind(name, wire.KindInt32, field, wire.Int32, wire.Value.AsInt32)
}

func Uint32Property[S Setting](name string, field func(S) *uint32) *Property {
	return bind(name, wire.KindUint32, field, wire.Uint32, wire.Value.AsUint32)
}

func Int64Property[S Setting](name string, field func(S) *int64) *Property {
	return bind(name, wire.KindInt64, field, wire.Int64, wire.Value.AsInt64)
}

func Uint64Property[S Setting](name string, field func(S) *uint64) *Property {
	return bind(name, wire.KindUint64, field, wire.Uint64, wire.Value.AsUint64)
}

func DoubleProperty[S Setting](name string, field func(S) *float64) *Property {
	return bind(name, wire.KindDouble, field, wire.Double, wire.Value.AsDouble)
}

func StringProperty[S Setting](name string, field func(S) *string) *Property {
	return bind(name, wire.KindString, field, wire.String, wire.Value.AsString)
}

func BytesProperty[S Setting](name string, field func(S) *[]byte) *Property {
	return bind(name, wire.KindBytes, field, wire.Bytes, wire.Value.AsBytes)
}

func StringsProperty[S Setting](name string, field func(S) *[]string) *Property {
	return bind(name, wire.KindStrings, field, wire.Strings, wire.Value.AsStrings)
}

// StringMapProperty binds a map[string]string field to a dict property.
// Non-string scalars in an incoming dict are stored as their text form.
func StringMapProperty[S Setting](name string, field func(S) *map[string]string) *Property {
	return bind(name, wire.KindDict, field, stringMapToWire, stringMapFromWire)
}

func stringMapToWire(m map[string]string) wire.Value {
	d := make(wire.Map, len(m))
	for k, v := range m {
		d[k] = wire.String(v)
	}
	return wire.Dict(d)
}

func stringMapFromWire(v wire.Value) map[string]string {
	d := v.AsDict()
	if len(d) == 0 {
		return nil
	}
	out := make(map[string]string, len(d))
	for k, el := range d {
		out[k] = el.Text()
	}
	return out
}

// HookContext is passed to override hooks
type HookContext struct {
	Setting  Setting
	Type     TypeInfo
	Property string

	// Connection is the owning aggregate during ToWire. May be nil.
	Connection Connection

	// Wire is the whole incoming connection during FromWire. May be nil.
	Wire wire.Connection
}

// InvalidProperty returns an ErrInvalidProperty error in the setting
// type's own error domain
func (hc *HookContext) InvalidProperty(format string, args ...any) error {
	return NewPropertyError(hc.Type, hc.Property, ErrInvalidProperty, format, args...)
}

type (
	// GetFunc produces a property's wire value. Returning false omits it.
	GetFunc func(hc *HookContext) (wire.Value, bool)
	// SetFunc consumes a property's wire value. An error aborts FromWire.
	SetFunc func(hc *HookContext, v wire.Value) error
	// NotSetFunc runs when the wire map lacks the property
	NotSetFunc func(hc *HookContext) error
	// ToWireFunc converts a native value into its wire form
	ToWireFunc func(v wire.Value) wire.Value
	// FromWireFunc converts a wire value into its native form
	FromWireFunc func(v wire.Value) (wire.Value, error)
)

// Override customizes the wire behaviour of one property
type Override struct {
	Name     string
	WireKind wire.Kind

	Get    GetFunc
	Set    SetFunc
	NotSet NotSetFunc

	ToWire   ToWireFunc
	FromWire FromWireFunc

	// wireOnly overrides have no native counterpart
	wireOnly bool
}

// WireOnlyProperty declares a property that exists only on the wire
func WireOnlyProperty(name string, kind wire.Kind, get GetFunc, set SetFunc) *Override {
	return &Override{Name: name, WireKind: kind, Get: get, Set: set, wireOnly: true}
}

// OverrideProperty replaces the wire handling of a native property with
// custom hooks. Any hook may be nil.
func OverrideProperty(name string, kind wire.Kind, get GetFunc, set SetFunc, notSet NotSetFunc) *Override {
	return &Override{Name: name, WireKind: kind, Get: get, Set: set, NotSet: notSet}
}

// TransformProperty gives a native property a different wire kind through
// a pair of conversions
func TransformProperty(name string, kind wire.Kind, to ToWireFunc, from FromWireFunc) *Override {
	return &Override{Name: name, WireKind: kind, ToWire: to, FromWire: from}
}

// IsWireOnly reports whether the override has no native counterpart
func (o *Override) IsWireOnly() bool { return o.wireOnly }
