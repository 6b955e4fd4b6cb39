package settings

import (
	"sort"
	"strconv"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// VPNSettingName names the VPN setting
const VPNSettingName = "vpn"

const vpnSecretsProperty = "secrets"

// VPN holds the plugin-specific configuration of a VPN connection. Data
// carries the plugin's options; Secrets its passwords and keys. The flags
// of each secret are stored in Data under "<key>-flags".
type VPN struct {
	setting.Base

	ServiceType string
	UserName    string
	Persistent  bool
	Timeout     uint32
	Data        map[string]string
	Secrets     map[string]string
}

func NewVPN() *VPN { return &VPN{} }

var vpnClass = &setting.Class{
	Name:        VPNSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(VPNSettingName),
	New:         func() setting.Setting { return NewVPN() },
	Properties: []*setting.Property{
		setting.StringProperty("service-type", func(s *VPN) *string { return &s.ServiceType }),
		setting.StringProperty("user-name", func(s *VPN) *string { return &s.UserName }),
		setting.BoolProperty("persistent", func(s *VPN) *bool { return &s.Persistent }),
		setting.Uint32Property("timeout", func(s *VPN) *uint32 { return &s.Timeout }),
		setting.StringMapProperty("data", func(s *VPN) *map[string]string { return &s.Data }),
		setting.StringMapProperty(vpnSecretsProperty, func(s *VPN) *map[string]string { return &s.Secrets }).
			Secret(nil),
	},
}

var vpnProperties = []string{"service-type", "user-name", "persistent", "timeout", "data"}

func (v *VPN) Verify(*setting.Registry, []setting.Setting) (setting.VerifyResult, error) {
	if v.ServiceType == "" {
		return missingProperty(VPNSettingName, "service-type")
	}
	if v.UserName == "" && v.Data != nil {
		if _, ok := v.Data["user-name"]; ok {
			return invalidProperty(VPNSettingName, "user-name", "user name belongs in its own property")
		}
	}
	return setting.VerifySuccess, nil
}

func vpnFlagsKey(key string) string { return key + "-flags" }

// ownsFlags reports whether flags for name live in Data: the secrets map
// itself and any key inside it
func (v *VPN) ownsFlags(name string) bool {
	return name == vpnSecretsProperty || !oneOf(name, vpnProperties...)
}

// SecretFlags reads the flags of a secret from Data
func (v *VPN) SecretFlags(name string) (setting.SecretFlags, bool) {
	if !v.ownsFlags(name) {
		return 0, false
	}
	raw, ok := v.Data[vpnFlagsKey(name)]
	if !ok {
		return setting.SecretFlagNone, true
	}
	f, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return setting.SecretFlagNone, true
	}
	return setting.SecretFlags(f), true
}

// SetSecretFlags stores the flags of a secret in Data. No flags remove the
// entry.
func (v *VPN) SetSecretFlags(name string, flags setting.SecretFlags) bool {
	if !v.ownsFlags(name) {
		return false
	}
	if flags == setting.SecretFlagNone {
		delete(v.Data, vpnFlagsKey(name))
		return true
	}
	if v.Data == nil {
		v.Data = make(map[string]string)
	}
	v.Data[vpnFlagsKey(name)] = strconv.FormatUint(uint64(flags), 10)
	return true
}

// UpdateSecret merges a secrets dict into Secrets key by key
func (v *VPN) UpdateSecret(name string, val wire.Value) (setting.UpdateResult, bool, error) {
	if name != vpnSecretsProperty {
		return setting.UpdateUnchanged, false, nil
	}
	if val.Kind() != wire.KindDict {
		return setting.UpdateUnchanged, true, propertyError(VPNSettingName, name, setting.ErrPropertyTypeMismatch,
			"expected %s, got %s", wire.KindDict, val.Kind())
	}
	d := val.AsDict()
	res := setting.UpdateUnchanged
	for _, k := range d.Keys() {
		s := d[k]
		if s.Kind() != wire.KindString {
			return res, true, propertyError(VPNSettingName, name, setting.ErrPropertyTypeMismatch,
				"secret '%s' is %s, not %s", k, s.Kind(), wire.KindString)
		}
		if v.Secrets == nil {
			v.Secrets = make(map[string]string)
		}
		if old, ok := v.Secrets[k]; ok && old == s.AsString() {
			continue
		}
		v.Secrets[k] = s.AsString()
		res = setting.UpdateModified
	}
	return res, true, nil
}

// ClearSecretsWithFlags drops the individual secrets fn selects
func (v *VPN) ClearSecretsWithFlags(d *setting.Descriptor, fn setting.SecretPredicate) (bool, bool) {
	if d.Name != vpnSecretsProperty {
		return false, false
	}
	keys := make([]string, 0, len(v.Secrets))
	for k := range v.Secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changed := false
	for _, k := range keys {
		flags, _ := v.SecretFlags(k)
		if fn(v, k, flags) {
			delete(v.Secrets, k)
			changed = true
		}
	}
	if len(v.Secrets) == 0 {
		v.Secrets = nil
	}
	return changed, true
}

// NeedSecrets asks for secrets until the plugin has received some
func (v *VPN) NeedSecrets() []string {
	if len(v.Secrets) > 0 {
		return nil
	}
	return []string{vpnSecretsProperty}
}
