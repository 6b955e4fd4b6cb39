package settings

import (
	"encoding/hex"

	"connsettings/internal/setting"
)

// WirelessSecuritySettingName names the Wi-Fi security setting
const WirelessSecuritySettingName = "802-11-wireless-security"

// WirelessSecurity holds the key management and keys of a Wi-Fi network
type WirelessSecurity struct {
	setting.Base

	KeyMgmt string
	AuthAlg string
	Proto   []string

	PSK      string
	PSKFlags setting.SecretFlags

	WEPKey0      string
	WEPKeyFlags  setting.SecretFlags
	WEPTxKeyIdx  uint32
	LEAPUsername string

	LEAPPassword      string
	LEAPPasswordFlags setting.SecretFlags
}

func NewWirelessSecurity() *WirelessSecurity { return &WirelessSecurity{} }

var wirelessSecurityClass = &setting.Class{
	Name:        WirelessSecuritySettingName,
	Priority:    2,
	ErrorDomain: errorDomain(WirelessSecuritySettingName),
	New:         func() setting.Setting { return NewWirelessSecurity() },
	Properties: []*setting.Property{
		setting.StringProperty("key-mgmt", func(s *WirelessSecurity) *string { return &s.KeyMgmt }),
		setting.StringProperty("auth-alg", func(s *WirelessSecurity) *string { return &s.AuthAlg }),
		setting.StringsProperty("proto", func(s *WirelessSecurity) *[]string { return &s.Proto }),
		setting.StringProperty("psk", func(s *WirelessSecurity) *string { return &s.PSK }).
			Secret(setting.FlagsOf(func(s *WirelessSecurity) *setting.SecretFlags { return &s.PSKFlags })),
		setting.StringProperty("wep-key0", func(s *WirelessSecurity) *string { return &s.WEPKey0 }).
			Secret(setting.FlagsOf(func(s *WirelessSecurity) *setting.SecretFlags { return &s.WEPKeyFlags })),
		setting.Uint32Property("wep-tx-keyidx", func(s *WirelessSecurity) *uint32 { return &s.WEPTxKeyIdx }),
		setting.StringProperty("leap-username", func(s *WirelessSecurity) *string { return &s.LEAPUsername }),
		setting.StringProperty("leap-password", func(s *WirelessSecurity) *string { return &s.LEAPPassword }).
			Secret(setting.FlagsOf(func(s *WirelessSecurity) *setting.SecretFlags { return &s.LEAPPasswordFlags })),
	},
}

// ValidPSK reports whether psk is a WPA passphrase (8 to 63 characters) or
// a raw 64 digit hex key
func ValidPSK(psk string) bool {
	switch {
	case len(psk) == 64:
		_, err := hex.DecodeString(psk)
		return err == nil
	case len(psk) >= 8 && len(psk) <= 63:
		return true
	}
	return false
}

// ValidWEPKey reports whether key is a 40 or 104 bit WEP key in hex or
// ASCII form
func ValidWEPKey(key string) bool {
	switch len(key) {
	case 10, 26:
		_, err := hex.DecodeString(key)
		return err == nil
	case 5, 13:
		return true
	}
	return false
}

func (ws *WirelessSecurity) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	if _, ok := find[*Wireless](all); !ok {
		return setting.VerifyError, &setting.MissingSettingError{Name: WirelessSettingName}
	}
	return first(
		func() (setting.VerifyResult, error) {
			if ws.KeyMgmt == "" {
				return missingProperty(WirelessSecuritySettingName, "key-mgmt")
			}
			if !oneOf(ws.KeyMgmt, "none", "ieee8021x", "wpa-none", "wpa-psk", "wpa-eap") {
				return invalidProperty(WirelessSecuritySettingName, "key-mgmt", "'%s' is not a valid value for the property", ws.KeyMgmt)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if !oneOf(ws.AuthAlg, "", "open", "shared", "leap") {
				return invalidProperty(WirelessSecuritySettingName, "auth-alg", "'%s' is not a valid value for the property", ws.AuthAlg)
			}
			if ws.AuthAlg == "leap" && ws.KeyMgmt != "ieee8021x" {
				return invalidProperty(WirelessSecuritySettingName, "auth-alg", "'leap' authentication requires 'ieee8021x' key management")
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			for _, p := range ws.Proto {
				if !oneOf(p, "wpa", "rsn") {
					return invalidProperty(WirelessSecuritySettingName, "proto", "'%s' is not a valid value for the property", p)
				}
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if ws.PSK != "" && !ValidPSK(ws.PSK) {
				return invalidProperty(WirelessSecuritySettingName, "psk", "property is invalid")
			}
			if ws.WEPKey0 != "" && !ValidWEPKey(ws.WEPKey0) {
				return invalidProperty(WirelessSecuritySettingName, "wep-key0", "property is invalid")
			}
			if ws.WEPTxKeyIdx > 3 {
				return invalidProperty(WirelessSecuritySettingName, "wep-tx-keyidx", "'%d' value is out of range <0-3>", ws.WEPTxKeyIdx)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if ws.AuthAlg == "leap" && ws.LEAPUsername == "" {
				return missingProperty(WirelessSecuritySettingName, "leap-username")
			}
			return setting.VerifySuccess, nil
		},
	)
}

// NeedSecrets reports the key the configured key management still lacks.
// Secrets flagged not-required are never requested.
func (ws *WirelessSecurity) NeedSecrets() []string {
	need := func(value string, flags setting.SecretFlags, valid func(string) bool) bool {
		return !flags.Has(setting.SecretFlagNotRequired) && !valid(value)
	}
	switch {
	case ws.KeyMgmt == "wpa-psk" || ws.KeyMgmt == "wpa-none":
		if need(ws.PSK, ws.PSKFlags, ValidPSK) {
			return []string{"psk"}
		}
	case ws.AuthAlg == "leap":
		if need(ws.LEAPPassword, ws.LEAPPasswordFlags, func(s string) bool { return s != "" }) {
			return []string{"leap-password"}
		}
	case ws.KeyMgmt == "none":
		if need(ws.WEPKey0, ws.WEPKeyFlags, ValidWEPKey) {
			return []string{"wep-key0"}
		}
	}
	return nil
}
