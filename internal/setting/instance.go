package setting

import (
	"fmt"
	"strings"

	"connsettings/internal/wire"
)

// Visitor receives one native property during Enumerate
type Visitor func(s Setting, name string, v wire.Value, flags PropertyFlags)

// Enumerate calls fn for every native property of s in schema order.
// Wire-only properties have no stored value and are not visited.
func (r *Registry) Enumerate(s Setting, fn Visitor) error {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return err
	}
	for _, d := range sch.props {
		if d.Native == nil {
			continue
		}
		fn(s, d.Name, d.Native.Get(s), d.Native.Flags)
	}
	return nil
}

// Duplicate returns a deep copy of s holding every writable property
func (r *Registry) Duplicate(s Setting) (Setting, error) {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return nil, err
	}
	e, err := r.lookupEntry(sch.info.Type)
	if err != nil {
		return nil, err
	}

	dup := e.class.New()
	err = r.Enumerate(s, func(_ Setting, name string, v wire.Value, flags PropertyFlags) {
		if flags&(Writable|ConstructOnly) == 0 {
			return
		}
		sch.Find(name).Native.Set(dup, v.Clone())
	})
	return dup, err
}

// Dump renders s for debugging. Secrets are included. Each property is
// followed by (s) or, when it holds its default, (sd).
func (r *Registry) Dump(s Setting) string {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return fmt.Sprintf("<%v>\n", err)
	}

	var b strings.Builder
	b.WriteString(sch.info.Name)
	b.WriteByte('\n')
	for _, d := range sch.props {
		if d.Native == nil || d.Name == nameProperty {
			continue
		}
		v := d.Native.Get(s)
		marker := "s"
		if d.Native.IsDefault(v) {
			marker = "sd"
		}
		fmt.Fprintf(&b, "\t%s : %s (%s)\n", d.Name, v, marker)
	}
	b.WriteByte('\n')
	return b.String()
}

// VerifySetting runs the type's verify hook against the other settings of
// its connection. Types without a hook always succeed.
func (r *Registry) VerifySetting(s Setting, all []Setting) (VerifyResult, error) {
	info, ok := r.TypeOf(s)
	if !ok {
		return VerifyError, ErrUnknownSetting
	}
	v, ok := s.(Verifier)
	if !ok {
		return VerifySuccess, nil
	}
	res, err := v.Verify(r, all)
	switch res {
	case VerifySuccess:
		return VerifySuccess, nil
	case VerifyNormalizable:
		return res, err
	}
	if err == nil {
		err = NewPropertyError(info, "", ErrVerify, "verification failed")
	}
	return VerifyError, err
}

// Verify is VerifySetting that treats a normalizable result as success
func (r *Registry) Verify(s Setting, all []Setting) error {
	res, err := r.VerifySetting(s, all)
	if res == VerifyNormalizable {
		return nil
	}
	return err
}
