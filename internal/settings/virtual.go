package settings

import (
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// virtualInterface is the abstract ancestor of software interface types.
// Their interface name lives in the connection setting; older peers still
// send and expect a per-type "interface-name", which is mirrored on the
// wire only.
var virtualInterface = &setting.Class{
	Name: "virtual-interface",
	Overrides: []*setting.Override{
		setting.WireOnlyProperty("interface-name", wire.KindString,
			getVirtualInterfaceName, setVirtualInterfaceName),
	},
}

func getVirtualInterfaceName(hc *setting.HookContext) (wire.Value, bool) {
	if hc.Connection == nil {
		return wire.Value{}, false
	}
	con, ok := hc.Connection.SettingByName(ConnectionSettingName).(*Connection)
	if !ok || con.InterfaceName == "" {
		return wire.Value{}, false
	}
	return wire.String(con.InterfaceName), true
}

// setVirtualInterfaceName only validates: the connection setting's
// interface-name is authoritative
func setVirtualInterfaceName(hc *setting.HookContext, v wire.Value) error {
	if v.Kind() != wire.KindString {
		return setting.NewPropertyError(hc.Type, hc.Property, setting.ErrPropertyTypeMismatch,
			"expected %s, got %s", wire.KindString, v.Kind())
	}
	name := v.AsString()
	if name == "" || ValidInterfaceName(name) {
		return nil
	}
	return hc.InvalidProperty("invalid value in compatibility property")
}

// verifyVirtualInterfaceName requires the connection setting to carry the
// interface name of a software device
func verifyVirtualInterfaceName(all []setting.Setting) (setting.VerifyResult, error) {
	con, ok := find[*Connection](all)
	if !ok || con.InterfaceName == "" {
		return missingProperty(ConnectionSettingName, "interface-name")
	}
	return setting.VerifySuccess, nil
}
