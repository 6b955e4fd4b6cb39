package setting

import "connsettings/internal/wire"

// Optional interfaces a concrete setting implements to replace engine
// defaults. Methods returning handled=false fall back to the default for
// that call.

// PropertyComparer customizes comparison of individual properties
type PropertyComparer interface {
	CompareProperty(other Setting, d *Descriptor, flags CompareFlags) (equal, handled bool)
}

// SecretUpdater customizes how one entry of a secrets map is applied
type SecretUpdater interface {
	UpdateSecret(name string, v wire.Value) (result UpdateResult, handled bool, err error)
}

// SecretFlagsAccessor stores secret flags somewhere other than a
// property's flags field, typically for secrets nested inside a dict
type SecretFlagsAccessor interface {
	SecretFlags(name string) (flags SecretFlags, handled bool)
	SetSecretFlags(name string, flags SecretFlags) (handled bool)
}

// SecretPredicate decides whether a secret with the given flags is cleared
type SecretPredicate func(s Setting, name string, flags SecretFlags) bool

// SecretClearer customizes ClearSecretsWithFlags for one secret property
type SecretClearer interface {
	ClearSecretsWithFlags(d *Descriptor, fn SecretPredicate) (changed, handled bool)
}

// Verifier validates a setting in the context of the whole connection.
// r is the registry the connection's settings belong to.
type Verifier interface {
	Verify(r *Registry, all []Setting) (VerifyResult, error)
}

// Normalizer corrects the defects its Verify reported as normalizable.
// It returns whether anything changed.
type Normalizer interface {
	Normalize(r *Registry, all []Setting) bool
}

// SecretsNeeder lists the secret properties still required to activate
type SecretsNeeder interface {
	NeedSecrets() []string
}
