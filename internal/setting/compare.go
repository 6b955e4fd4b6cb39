package setting

import (
	"reflect"

	"connsettings/internal/wire"
)

// Compare reports whether a and b are equal under flags. Settings of
// different types are never equal.
func (r *Registry) Compare(a, b Setting, flags CompareFlags) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	sch, err := r.SchemaOf(a)
	if err != nil {
		return false
	}

	for _, d := range sch.props {
		if d.Native == nil {
			continue
		}
		pf := d.Flags()
		if flags&CompareFuzzy != 0 && (pf.Has(FuzzyIgnore) || pf.Has(Secret)) {
			continue
		}
		if flags&CompareInferrable != 0 && !pf.Has(Inferrable) {
			continue
		}
		if flags&CompareIgnoreSecrets != 0 && pf.Has(Secret) {
			continue
		}
		if !r.compareProperty(sch, a, b, d, flags) {
			return false
		}
	}
	return true
}

func (r *Registry) compareProperty(sch *Schema, a, b Setting, d *Descriptor, flags CompareFlags) bool {
	if c, ok := a.(PropertyComparer); ok {
		if equal, handled := c.CompareProperty(b, d, flags); handled {
			return equal
		}
	}
	return r.defaultCompareProperty(sch, a, b, d, flags)
}

// DefaultCompareProperty is the engine's comparison of one property. Secret
// flags are compared first: differing flags make the property unequal
// whatever the ignore options say.
func (r *Registry) DefaultCompareProperty(a, b Setting, d *Descriptor, flags CompareFlags) bool {
	sch, err := r.SchemaOf(a)
	if err != nil {
		return false
	}
	return r.defaultCompareProperty(sch, a, b, d, flags)
}

func (r *Registry) defaultCompareProperty(sch *Schema, a, b Setting, d *Descriptor, flags CompareFlags) bool {
	if d.IsSecret() {
		af := r.secretFlags(sch, a, d.Name)
		bf := r.secretFlags(sch, b, d.Name)
		if af != bf {
			return false
		}
		if flags&CompareIgnoreAgentOwnedSecrets != 0 && af.Has(SecretFlagAgentOwned) {
			return true
		}
		if flags&CompareIgnoreNotSavedSecrets != 0 && af.Has(SecretFlagNotSaved) {
			return true
		}
	}

	av, bv := d.Native.Get(a), d.Native.Get(b)
	if d.ToWire != nil {
		av, bv = d.ToWire(av), d.ToWire(bv)
	}
	return wire.Equal(av, bv)
}

// shouldCompare applies the flag-driven skip rules shared by Diff
func (r *Registry) shouldCompare(sch *Schema, s Setting, d *Descriptor, flags CompareFlags) bool {
	pf := d.Flags()
	if flags&CompareFuzzy != 0 && (pf.Has(FuzzyIgnore) || pf.Has(Secret)) {
		return false
	}
	if flags&CompareInferrable != 0 && !pf.Has(Inferrable) {
		return false
	}
	if pf.Has(Secret) {
		if flags&CompareIgnoreSecrets != 0 {
			return false
		}
		sf := r.secretFlags(sch, s, d.Name)
		if flags&CompareIgnoreAgentOwnedSecrets != 0 && sf.Has(SecretFlagAgentOwned) {
			return false
		}
		if flags&CompareIgnoreNotSavedSecrets != 0 && sf.Has(SecretFlagNotSaved) {
			return false
		}
	}
	if flags&CompareIgnoreID != 0 && sch.info.Name == ConnectionSettingName && d.Name == "id" {
		return false
	}
	return true
}

// Diff lists the properties in which a and b differ. b may be nil, in
// which case every compared property of a is reported in A. When invert is
// set the InA and InB roles are swapped, so that
//
//	MergeDiff(r.Diff(a, b, f, false), r.Diff(b, a, f, true))
//
// yields a symmetric result. A b of another type is treated as nil. No
// differences yield nil.
func (r *Registry) Diff(a, b Setting, flags CompareFlags, invert bool) DiffResult {
	sch, err := r.SchemaOf(a)
	if err != nil {
		return nil
	}
	if b != nil && reflect.TypeOf(a) != reflect.TypeOf(b) {
		b = nil
	}

	inA, inB := DiffInA, DiffInB
	if invert {
		inA, inB = DiffInB, DiffInA
	}

	var out DiffResult
	for _, d := range sch.props {
		if d.Native == nil || d.Name == nameProperty {
			continue
		}
		if !r.shouldCompare(sch, a, d, flags) {
			continue
		}

		res := DiffUnknown
		if b != nil {
			if r.compareProperty(sch, a, b, d, flags) {
				continue
			}
			if !d.Native.IsDefault(d.Native.Get(a)) {
				res |= inA
			}
			if !d.Native.IsDefault(d.Native.Get(b)) {
				res |= inB
			}
		} else {
			res = inA
		}

		if out == nil {
			out = make(DiffResult)
		}
		out[d.Name] |= res
	}
	return out
}
