package settings

import (
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// WiredSettingName names the Ethernet setting
const WiredSettingName = "802-3-ethernet"

// Wired describes an Ethernet link
type Wired struct {
	setting.Base

	Port             string
	Speed            uint32
	Duplex           string
	AutoNegotiate    bool
	MACAddress       string
	ClonedMACAddress string
	MTU              uint32
	S390Options      map[string]string
}

// NewWired returns an Ethernet setting with its defaults
func NewWired() *Wired {
	return &Wired{AutoNegotiate: true}
}

var wiredClass = &setting.Class{
	Name:        WiredSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(WiredSettingName),
	New:         func() setting.Setting { return NewWired() },
	Properties: []*setting.Property{
		setting.StringProperty("port", func(s *Wired) *string { return &s.Port }),
		setting.Uint32Property("speed", func(s *Wired) *uint32 { return &s.Speed }),
		setting.StringProperty("duplex", func(s *Wired) *string { return &s.Duplex }),
		setting.BoolProperty("auto-negotiate", func(s *Wired) *bool { return &s.AutoNegotiate }).
			WithDefault(wire.Bool(true)),
		setting.StringProperty("mac-address", func(s *Wired) *string { return &s.MACAddress }),
		setting.StringProperty("cloned-mac-address", func(s *Wired) *string { return &s.ClonedMACAddress }),
		setting.Uint32Property("mtu", func(s *Wired) *uint32 { return &s.MTU }).
			WithFlags(setting.FuzzyIgnore),
		setting.StringMapProperty("s390-options", func(s *Wired) *map[string]string { return &s.S390Options }),
	},
	Overrides: []*setting.Override{
		hwAddrProperty("mac-address"),
		hwAddrProperty("cloned-mac-address"),
	},
}

var s390Options = []string{
	"portno", "layer2", "portname", "protocol", "priority_queueing",
	"buffer_count", "isolation", "total", "inter", "inter_jumbo", "route2",
	"route4", "route6", "fake_broadcast", "broadcast_mode", "canonical_macaddr",
	"checksumming", "sniffer", "large_send", "ipato_enable", "ipato_invert4",
	"ipato_add4", "ipato_invert6", "ipato_add6", "vipa_add4", "vipa_add6",
	"rxip_add4", "rxip_add6", "lancmd_timeout", "ctcprot",
}

func (w *Wired) Verify(*setting.Registry, []setting.Setting) (setting.VerifyResult, error) {
	return first(
		func() (setting.VerifyResult, error) {
			if !oneOf(w.Port, "", "tp", "aui", "bnc", "mii") {
				return invalidProperty(WiredSettingName, "port", "'%s' is not a valid Ethernet port value", w.Port)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if !oneOf(w.Duplex, "", "half", "full") {
				return invalidProperty(WiredSettingName, "duplex", "'%s' is not a valid duplex value", w.Duplex)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			return verifyHardwareAddress(WiredSettingName, "mac-address", w.MACAddress)
		},
		func() (setting.VerifyResult, error) {
			return verifyHardwareAddress(WiredSettingName, "cloned-mac-address", w.ClonedMACAddress)
		},
		func() (setting.VerifyResult, error) {
			for k, v := range w.S390Options {
				if !oneOf(k, s390Options...) || v == "" {
					return invalidProperty(WiredSettingName, "s390-options", "invalid '%s' or its value '%s'", k, v)
				}
			}
			return setting.VerifySuccess, nil
		},
	)
}
