package settings

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

const ifNameSize = 16

func errorDomain(name string) string {
	return "connsettings-" + name + "-error"
}

func propertyError(settingName, prop string, sentinel error, format string, args ...any) *setting.PropertyError {
	return &setting.PropertyError{
		Domain:   errorDomain(settingName),
		Setting:  settingName,
		Property: prop,
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
	}
}

func invalidProperty(settingName, prop string, format string, args ...any) (setting.VerifyResult, error) {
	return setting.VerifyError, propertyError(settingName, prop, setting.ErrInvalidProperty, format, args...)
}

func missingProperty(settingName, prop string) (setting.VerifyResult, error) {
	return setting.VerifyError, propertyError(settingName, prop, setting.ErrMissingProperty, "property is missing")
}

// find returns the first setting of type T in all
func find[T setting.Setting](all []setting.Setting) (T, bool) {
	for _, s := range all {
		if t, ok := s.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// ValidInterfaceName reports whether name is usable as a kernel interface
// name
func ValidInterfaceName(name string) bool {
	if name == "" || len(name) >= ifNameSize || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		if r == '/' || r == ':' || r <= ' ' || r == 0x7f {
			return false
		}
	}
	return true
}

// normalizeHardwareAddress parses a colon or dash separated hardware
// address and returns it upper-cased with colons
func normalizeHardwareAddress(s string) (string, bool) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return "", false
	}
	return strings.ToUpper(hw.String()), true
}

// hwAddrToWire sends a hardware address string as raw bytes. Invalid
// addresses become an empty byte sequence.
func hwAddrToWire(v wire.Value) wire.Value {
	hw, err := net.ParseMAC(v.AsString())
	if err != nil {
		return wire.Zero(wire.KindBytes)
	}
	return wire.Bytes(hw)
}

func hwAddrFromWire(v wire.Value) (wire.Value, error) {
	b := v.AsBytes()
	if len(b) == 0 {
		return wire.String(""), nil
	}
	if len(b) != 6 && len(b) != 8 && len(b) != 20 {
		return wire.Value{}, fmt.Errorf("invalid hardware address length %d", len(b))
	}
	return wire.String(strings.ToUpper(net.HardwareAddr(b).String())), nil
}

func hwAddrProperty(name string) *setting.Override {
	return setting.TransformProperty(name, wire.KindBytes, hwAddrToWire, hwAddrFromWire)
}

func verifyHardwareAddress(settingName, prop, value string) (setting.VerifyResult, error) {
	if value == "" {
		return setting.VerifySuccess, nil
	}
	if _, ok := normalizeHardwareAddress(value); !ok {
		return invalidProperty(settingName, prop, "'%s' is not a valid MAC address", value)
	}
	return setting.VerifySuccess, nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func parseAddr(s string, want6 bool) (netip.Addr, bool) {
	a, err := netip.ParseAddr(s)
	if err != nil || a.Zone() != "" {
		return netip.Addr{}, false
	}
	if want6 {
		return a, a.Is6() && !a.Is4In6()
	}
	return a, a.Is4()
}

// first returns the first non-success verify result of checks
func first(checks ...func() (setting.VerifyResult, error)) (setting.VerifyResult, error) {
	for _, check := range checks {
		if res, err := check(); res != setting.VerifySuccess {
			return res, err
		}
	}
	return setting.VerifySuccess, nil
}
