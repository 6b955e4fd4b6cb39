package settings

import (
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// WirelessSettingName names the Wi-Fi setting
const WirelessSettingName = "802-11-wireless"

const maxSSIDLen = 32

// Wireless describes a Wi-Fi network and how to join it
type Wireless struct {
	setting.Base

	SSID             []byte
	Mode             string
	Band             string
	Channel          uint32
	BSSID            string
	MACAddress       string
	ClonedMACAddress string
	MTU              uint32
	Hidden           bool
	SeenBSSIDs       []string
}

func NewWireless() *Wireless { return &Wireless{} }

var wirelessClass = &setting.Class{
	Name:        WirelessSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(WirelessSettingName),
	New:         func() setting.Setting { return NewWireless() },
	Properties: []*setting.Property{
		setting.BytesProperty("ssid", func(s *Wireless) *[]byte { return &s.SSID }),
		setting.StringProperty("mode", func(s *Wireless) *string { return &s.Mode }),
		setting.StringProperty("band", func(s *Wireless) *string { return &s.Band }),
		setting.Uint32Property("channel", func(s *Wireless) *uint32 { return &s.Channel }),
		setting.StringProperty("bssid", func(s *Wireless) *string { return &s.BSSID }),
		setting.StringProperty("mac-address", func(s *Wireless) *string { return &s.MACAddress }),
		setting.StringProperty("cloned-mac-address", func(s *Wireless) *string { return &s.ClonedMACAddress }),
		setting.Uint32Property("mtu", func(s *Wireless) *uint32 { return &s.MTU }).
			WithFlags(setting.FuzzyIgnore),
		setting.BoolProperty("hidden", func(s *Wireless) *bool { return &s.Hidden }),
		setting.StringsProperty("seen-bssids", func(s *Wireless) *[]string { return &s.SeenBSSIDs }).
			WithFlags(setting.FuzzyIgnore),
	},
	Overrides: []*setting.Override{
		hwAddrProperty("bssid"),
		hwAddrProperty("mac-address"),
		hwAddrProperty("cloned-mac-address"),
		// Legacy peers name the security setting here
		setting.WireOnlyProperty("security", wire.KindString, getWirelessSecurity, setWirelessSecurity),
	},
}

func getWirelessSecurity(hc *setting.HookContext) (wire.Value, bool) {
	if hc.Connection == nil || hc.Connection.SettingByName(WirelessSecuritySettingName) == nil {
		return wire.Value{}, false
	}
	return wire.String(WirelessSecuritySettingName), true
}

// setWirelessSecurity accepts the legacy pointer only when it names a
// security setting present in the same connection
func setWirelessSecurity(hc *setting.HookContext, v wire.Value) error {
	name := v.Text()
	if name == "" {
		return nil
	}
	if name != WirelessSecuritySettingName {
		return hc.InvalidProperty("'%s' is not a valid security setting", name)
	}
	if hc.Wire != nil {
		if _, ok := hc.Wire[name]; !ok {
			return &setting.MissingSettingError{Name: name, Prefix: WirelessSettingName + ".security"}
		}
	}
	return nil
}

// channels lists the valid channels per band
var channels = map[string]func(uint32) bool{
	"bg": func(c uint32) bool { return c >= 1 && c <= 14 },
	"a": func(c uint32) bool {
		return (c >= 7 && c <= 16 && c%4 == 0) || (c >= 34 && c <= 196 && c%2 == 0)
	},
}

func (w *Wireless) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	return first(
		func() (setting.VerifyResult, error) {
			if len(w.SSID) == 0 {
				return missingProperty(WirelessSettingName, "ssid")
			}
			if len(w.SSID) > maxSSIDLen {
				return invalidProperty(WirelessSettingName, "ssid", "SSID length is out of range <1-32> bytes")
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if !oneOf(w.Mode, "", "infrastructure", "adhoc", "ap") {
				return invalidProperty(WirelessSettingName, "mode", "'%s' is not a valid Wi-Fi mode", w.Mode)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if w.Band == "" {
				if w.Channel != 0 {
					return invalidProperty(WirelessSettingName, "channel", "'%d' is not valid without a band", w.Channel)
				}
				return setting.VerifySuccess, nil
			}
			valid, ok := channels[w.Band]
			if !ok {
				return invalidProperty(WirelessSettingName, "band", "'%s' is not a valid band", w.Band)
			}
			if w.Channel != 0 && !valid(w.Channel) {
				return invalidProperty(WirelessSettingName, "channel", "'%d' is not a valid channel", w.Channel)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			return verifyHardwareAddress(WirelessSettingName, "bssid", w.BSSID)
		},
		func() (setting.VerifyResult, error) {
			return verifyHardwareAddress(WirelessSettingName, "mac-address", w.MACAddress)
		},
		func() (setting.VerifyResult, error) {
			return verifyHardwareAddress(WirelessSettingName, "cloned-mac-address", w.ClonedMACAddress)
		},
		func() (setting.VerifyResult, error) {
			for _, b := range w.SeenBSSIDs {
				if _, ok := normalizeHardwareAddress(b); !ok {
					return invalidProperty(WirelessSettingName, "seen-bssids", "'%s' is not a valid MAC address", b)
				}
			}
			return setting.VerifySuccess, nil
		},
	)
}

// AddSeenBSSID records bssid as seen and reports whether it was new
func (w *Wireless) AddSeenBSSID(bssid string) bool {
	norm, ok := normalizeHardwareAddress(bssid)
	if !ok {
		return false
	}
	for _, b := range w.SeenBSSIDs {
		if b == norm {
			return false
		}
	}
	w.SeenBSSIDs = append(w.SeenBSSIDs, norm)
	return true
}
