package setting

import (
	"errors"

	"connsettings/internal/wire"
)

// ToWire converts s into its wire map. conn is the aggregate s belongs to
// and may be nil. Properties holding their default value are omitted unless
// a custom get hook produces them.
func (r *Registry) ToWire(s Setting, conn Connection, mode SerializeMode) (wire.Map, error) {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return nil, err
	}

	out := make(wire.Map)
	for _, d := range sch.props {
		if d.Native == nil && d.Get == nil {
			continue
		}
		if d.Native != nil && !d.IsWritable() {
			continue
		}
		if mode == SerializeNoSecrets && d.IsSecret() {
			continue
		}
		if mode == SerializeOnlySecrets && !d.IsSecret() {
			continue
		}

		if d.Get != nil {
			hc := &HookContext{Setting: s, Type: sch.info, Property: d.Name, Connection: conn}
			v, ok := d.Get(hc)
			if !ok || !v.IsValid() {
				continue
			}
			out[d.Name] = v
			continue
		}

		v := d.Native.Get(s)
		if d.Native.IsDefault(v) {
			continue
		}
		if d.ToWire != nil {
			v = d.ToWire(v)
		}
		out[d.Name] = v
	}
	return out, nil
}

// FromWire builds a setting of the named type from its wire map. conn is
// the whole incoming connection and may be nil. Unknown keys are logged and
// skipped. A failing set hook or a kind mismatch discards the setting and
// returns the error.
func (r *Registry) FromWire(name string, m wire.Map, conn wire.Connection) (Setting, error) {
	sch, err := r.SchemaByName(name)
	if err != nil {
		return nil, err
	}
	e, err := r.lookupEntry(sch.info.Type)
	if err != nil {
		return nil, err
	}

	for _, key := range m.Keys() {
		if sch.Find(key) == nil {
			r.log().Warn("ignoring unknown setting property", "setting", name, "property", key)
		}
	}

	s := e.class.New()
	for _, d := range sch.props {
		v, present := m[d.Name]
		hc := &HookContext{Setting: s, Type: sch.info, Property: d.Name, Wire: conn}

		switch {
		case present && d.Set != nil:
			if err := d.Set(hc, v); err != nil {
				return nil, hookError(hc, err)
			}
		case !present && d.NotSet != nil:
			if err := d.NotSet(hc); err != nil {
				return nil, hookError(hc, err)
			}
		case present && d.Native != nil:
			if !d.IsWritable() {
				continue
			}
			if err := assignFromWire(hc, d, v); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func assignFromWire(hc *HookContext, d *Descriptor, v wire.Value) error {
	if v.Kind() != d.WireKind {
		return NewPropertyError(hc.Type, d.Name, ErrPropertyTypeMismatch,
			"expected %s, got %s", d.WireKind, v.Kind())
	}
	if d.FromWire != nil {
		nv, err := d.FromWire(v)
		if err != nil {
			return hookError(hc, err)
		}
		v = nv
	}
	if v.Kind() != d.Native.Kind {
		return NewPropertyError(hc.Type, d.Name, ErrPropertyTypeMismatch,
			"expected %s, got %s", d.Native.Kind, v.Kind())
	}
	d.Native.Set(hc.Setting, v)
	return nil
}

// hookError attributes a plain hook error to the property in the setting
// type's domain. Property and missing-setting errors pass through.
func hookError(hc *HookContext, err error) error {
	var pe *PropertyError
	var me *MissingSettingError
	if errors.As(err, &pe) || errors.As(err, &me) {
		return err
	}
	return &PropertyError{
		Domain:   hc.Type.ErrorDomain,
		Setting:  hc.Type.Name,
		Property: hc.Property,
		Err:      ErrInvalidProperty,
		Message:  err.Error(),
	}
}
