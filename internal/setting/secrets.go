package setting

import (
	"connsettings/internal/wire"
)

// secretFlags reads the flags of a secret without verifying the name
func (r *Registry) secretFlags(sch *Schema, s Setting, name string) SecretFlags {
	if acc, ok := s.(SecretFlagsAccessor); ok {
		if f, handled := acc.SecretFlags(name); handled {
			return f
		}
	}
	d := sch.Find(name)
	if d == nil || d.Native == nil || d.Native.SecretFlags == nil {
		return SecretFlagNone
	}
	return d.Native.SecretFlags.Get(s)
}

// secretDescriptor returns the secret descriptor called name or a
// PropertyNotFound / PropertyNotSecret error
func secretDescriptor(sch *Schema, name string) (*Descriptor, error) {
	d := sch.Find(name)
	if d == nil {
		return nil, NewPropertyError(sch.info, name, ErrPropertyNotFound, "secret not found")
	}
	if !d.IsSecret() {
		return nil, NewPropertyError(sch.info, name, ErrPropertyNotSecret, "not a secret property")
	}
	return d, nil
}

// GetSecretFlags returns the flags of secret name
func (r *Registry) GetSecretFlags(s Setting, name string) (SecretFlags, error) {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return SecretFlagNone, err
	}
	if acc, ok := s.(SecretFlagsAccessor); ok {
		if f, handled := acc.SecretFlags(name); handled {
			return f, nil
		}
	}
	d, err := secretDescriptor(sch, name)
	if err != nil {
		return SecretFlagNone, err
	}
	if d.Native.SecretFlags == nil {
		return SecretFlagNone, nil
	}
	return d.Native.SecretFlags.Get(s), nil
}

// SetSecretFlags stores the flags of secret name
func (r *Registry) SetSecretFlags(s Setting, name string, flags SecretFlags) error {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return err
	}
	if flags&^SecretFlagsAll != 0 {
		return NewPropertyError(sch.info, name, ErrInvalidSecretFlags, "invalid secret flags %d", flags)
	}
	if acc, ok := s.(SecretFlagsAccessor); ok {
		if acc.SetSecretFlags(name, flags) {
			return nil
		}
	}
	d, err := secretDescriptor(sch, name)
	if err != nil {
		return err
	}
	if d.Native.SecretFlags == nil {
		return NewPropertyError(sch.info, name, ErrInvalidSecretFlags, "secret has no flags")
	}
	d.Native.SecretFlags.Set(s, flags)
	return nil
}

// ClearSecrets resets every non-default secret to its default and reports
// whether anything changed
func (r *Registry) ClearSecrets(s Setting) bool {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return false
	}
	changed := false
	for _, d := range sch.props {
		if d.Native == nil || !d.IsSecret() {
			continue
		}
		if d.Native.IsDefault(d.Native.Get(s)) {
			continue
		}
		d.Native.Set(s, d.Native.DefaultValue())
		changed = true
	}
	return changed
}

// ClearSecretsWithFlags resets the secrets for which fn returns true
func (r *Registry) ClearSecretsWithFlags(s Setting, fn SecretPredicate) bool {
	sch, err := r.SchemaOf(s)
	if err != nil || fn == nil {
		return false
	}
	clearer, _ := s.(SecretClearer)

	changed := false
	for _, d := range sch.props {
		if d.Native == nil || !d.IsSecret() {
			continue
		}
		if clearer != nil {
			if c, handled := clearer.ClearSecretsWithFlags(d, fn); handled {
				changed = changed || c
				continue
			}
		}
		if r.clearSecretWithFlags(sch, s, d, fn) {
			changed = true
		}
	}
	return changed
}

func (r *Registry) clearSecretWithFlags(sch *Schema, s Setting, d *Descriptor, fn SecretPredicate) bool {
	if !fn(s, d.Name, r.secretFlags(sch, s, d.Name)) {
		return false
	}
	if d.Native.IsDefault(d.Native.Get(s)) {
		return false
	}
	d.Native.Set(s, d.Native.DefaultValue())
	return true
}

// UpdateSecrets applies a map of secret values. Entries are applied in key
// order. An unknown name or a kind mismatch stops the batch and returns the
// error; entries applied before it stay applied. Non-secret properties are
// ignored.
func (r *Registry) UpdateSecrets(s Setting, secrets wire.Map) (UpdateResult, error) {
	sch, err := r.SchemaOf(s)
	if err != nil {
		return UpdateUnchanged, err
	}
	updater, _ := s.(SecretUpdater)

	result := UpdateUnchanged
	for _, name := range secrets.Keys() {
		v := secrets[name]

		var res UpdateResult
		handled := false
		if updater != nil {
			res, handled, err = updater.UpdateSecret(name, v)
		}
		if !handled {
			res, err = updateOneSecret(sch, s, name, v)
		}
		if err != nil {
			return result, err
		}
		if res == UpdateModified {
			result = UpdateModified
		}
	}
	return result, nil
}

func updateOneSecret(sch *Schema, s Setting, name string, v wire.Value) (UpdateResult, error) {
	d := sch.Find(name)
	if d == nil {
		return UpdateUnchanged, NewPropertyError(sch.info, name, ErrPropertyNotFound, "secret not found")
	}
	if d.Native == nil || !d.IsSecret() {
		return UpdateUnchanged, nil
	}
	if v.Kind() != d.Native.Kind {
		return UpdateUnchanged, NewPropertyError(sch.info, name, ErrPropertyTypeMismatch,
			"expected %s, got %s", d.Native.Kind, v.Kind())
	}
	if d.Native.Kind == wire.KindString && wire.Equal(d.Native.Get(s), v) {
		return UpdateUnchanged, nil
	}
	d.Native.Set(s, v.Clone())
	return UpdateModified, nil
}

// NeedSecrets returns the secret properties s still needs, if its type
// knows how to tell
func (r *Registry) NeedSecrets(s Setting) []string {
	if n, ok := s.(SecretsNeeder); ok {
		return n.NeedSecrets()
	}
	return nil
}
