package setting

import (
	"fmt"
	"strings"
)

// PropertyFlags describe how a property takes part in serialization,
// comparison and secret handling
type PropertyFlags uint32

const (
	Writable PropertyFlags = 1 << iota
	// ConstructOnly properties are only set when a setting is built or copied
	ConstructOnly
	Secret
	FuzzyIgnore
	Inferrable
)

// Has reports whether all bits of x are set
func (f PropertyFlags) Has(x PropertyFlags) bool { return f&x == x }

// SecretFlags govern how a secret value is stored and requested
type SecretFlags uint32

const (
	SecretFlagNone SecretFlags = 0
	// SecretFlagAgentOwned means a user secret agent stores the secret
	SecretFlagAgentOwned SecretFlags = 1 << 0
	// SecretFlagNotSaved means the secret is requested every time and never stored
	SecretFlagNotSaved SecretFlags = 1 << 1
	// SecretFlagNotRequired means the secret may legitimately be empty
	SecretFlagNotRequired SecretFlags = 1 << 2

	SecretFlagsAll = SecretFlagAgentOwned | SecretFlagNotSaved | SecretFlagNotRequired
)

// Has reports whether all bits of x are set
func (f SecretFlags) Has(x SecretFlags) bool { return f&x == x }

// String renders the set flags joined by "|"
func (f SecretFlags) String() string {
	if f == SecretFlagNone {
		return "none"
	}
	var parts []string
	if f.Has(SecretFlagAgentOwned) {
		parts = append(parts, "agent-owned")
	}
	if f.Has(SecretFlagNotSaved) {
		parts = append(parts, "not-saved")
	}
	if f.Has(SecretFlagNotRequired) {
		parts = append(parts, "not-required")
	}
	if f&^SecretFlagsAll != 0 {
		parts = append(parts, "invalid")
	}
	return strings.Join(parts, "|")
}

// CompareFlags modify Compare and Diff
type CompareFlags uint32

const (
	CompareExact CompareFlags = 0
	// CompareFuzzy skips secrets and fuzzy-ignore properties
	CompareFuzzy CompareFlags = 1 << 0
	// CompareIgnoreID skips the connection setting's id
	CompareIgnoreID CompareFlags = 1 << 1
	// CompareIgnoreSecrets skips every secret property
	CompareIgnoreSecrets CompareFlags = 1 << 2
	// CompareIgnoreAgentOwnedSecrets skips secrets flagged agent-owned
	CompareIgnoreAgentOwnedSecrets CompareFlags = 1 << 3
	// CompareIgnoreNotSavedSecrets skips secrets flagged not-saved
	CompareIgnoreNotSavedSecrets CompareFlags = 1 << 4
	// CompareInferrable only compares inferrable properties
	CompareInferrable CompareFlags = 1 << 5
)

var compareFlagNames = []struct {
	name string
	flag CompareFlags
}{
	{"fuzzy", CompareFuzzy},
	{"ignore-id", CompareIgnoreID},
	{"ignore-secrets", CompareIgnoreSecrets},
	{"ignore-agent-owned-secrets", CompareIgnoreAgentOwnedSecrets},
	{"ignore-not-saved-secrets", CompareIgnoreNotSavedSecrets},
	{"inferrable", CompareInferrable},
}

// ParseCompareFlags ORs together flags given by name, as in "ignore-id".
// "exact" and the empty string are accepted as no flag.
func ParseCompareFlags(names ...string) (CompareFlags, error) {
	var out CompareFlags
outer:
	for _, n := range names {
		if n == "" || n == "exact" {
			continue
		}
		for _, c := range compareFlagNames {
			if c.name == n {
				out |= c.flag
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown compare flag %q", n)
	}
	return out, nil
}

// DiffFlags record on which side of a diff a differing property holds a
// non-default value
type DiffFlags uint32

const (
	DiffUnknown DiffFlags = 0
	DiffInA     DiffFlags = 1 << 0
	DiffInB     DiffFlags = 1 << 1
)

func (f DiffFlags) String() string {
	switch f {
	case DiffInA:
		return "a"
	case DiffInB:
		return "b"
	case DiffInA | DiffInB:
		return "a|b"
	}
	return "unknown"
}

// DiffResult maps property names to diff flags
type DiffResult map[string]DiffFlags

// MergeDiff ORs src into dst, allocating dst when needed. It returns nil
// when both are empty.
func MergeDiff(dst, src DiffResult) DiffResult {
	if len(src) == 0 {
		if len(dst) == 0 {
			return nil
		}
		return dst
	}
	if dst == nil {
		dst = make(DiffResult, len(src))
	}
	for name, f := range src {
		dst[name] |= f
	}
	return dst
}

// SerializeMode selects which properties ToWire emits
type SerializeMode uint8

const (
	SerializeAll SerializeMode = iota
	SerializeNoSecrets
	SerializeOnlySecrets
)

// UpdateResult reports whether UpdateSecrets changed anything
type UpdateResult uint8

const (
	UpdateUnchanged UpdateResult = iota
	UpdateModified
)

// VerifyResult is the outcome of a verify hook
type VerifyResult uint8

const (
	VerifySuccess VerifyResult = iota
	VerifyError
	// VerifyNormalizable reports a defect the caller can correct and re-verify
	VerifyNormalizable
)

func (r VerifyResult) String() string {
	switch r {
	case VerifySuccess:
		return "success"
	case VerifyError:
		return "error"
	case VerifyNormalizable:
		return "normalizable"
	}
	return "unknown"
}
