package settings

import (
	"fmt"
	"strconv"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// IPTunnelSettingName names the IP tunnel setting
const IPTunnelSettingName = "ip-tunnel"

// TunnelMode is the encapsulation of an IP tunnel
type TunnelMode uint32

const (
	TunnelModeUnknown TunnelMode = iota
	TunnelModeIPIP
	TunnelModeGRE
	TunnelModeSIT
	TunnelModeISATAP
	TunnelModeVTI
	TunnelModeIP6IP6
	TunnelModeIPIP6
	TunnelModeIP6GRE
	TunnelModeVTI6
)

var tunnelModeNames = [...]string{
	TunnelModeUnknown: "unknown",
	TunnelModeIPIP:    "ipip",
	TunnelModeGRE:     "gre",
	TunnelModeSIT:     "sit",
	TunnelModeISATAP:  "isatap",
	TunnelModeVTI:     "vti",
	TunnelModeIP6IP6:  "ip6ip6",
	TunnelModeIPIP6:   "ipip6",
	TunnelModeIP6GRE:  "ip6gre",
	TunnelModeVTI6:    "vti6",
}

func (m TunnelMode) String() string {
	if int(m) < len(tunnelModeNames) {
		return tunnelModeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint32(m))
}

// IsIPv6 reports whether the tunnel endpoints are IPv6 addresses
func (m TunnelMode) IsIPv6() bool {
	switch m {
	case TunnelModeIP6IP6, TunnelModeIPIP6, TunnelModeIP6GRE, TunnelModeVTI6:
		return true
	}
	return false
}

// HasKeys reports whether the mode carries GRE input and output keys
func (m TunnelMode) HasKeys() bool {
	return m == TunnelModeGRE || m == TunnelModeIP6GRE
}

func (m TunnelMode) valid() bool {
	return m > TunnelModeUnknown && m <= TunnelModeVTI6
}

// IPTunnel describes an IP-in-IP, GRE, SIT or VTI tunnel
type IPTunnel struct {
	setting.Base

	Parent             string
	Mode               uint32
	Local              string
	Remote             string
	TTL                uint32
	TOS                uint32
	PathMTUDiscovery   bool
	InputKey           string
	OutputKey          string
	EncapsulationLimit uint32
	FlowLabel          uint32
	MTU                uint32
}

// NewIPTunnel returns a tunnel setting with path MTU discovery enabled
func NewIPTunnel() *IPTunnel {
	return &IPTunnel{PathMTUDiscovery: true}
}

var ipTunnelClass = &setting.Class{
	Name:        IPTunnelSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(IPTunnelSettingName),
	Parent:      virtualInterface,
	New:         func() setting.Setting { return NewIPTunnel() },
	Properties: []*setting.Property{
		setting.StringProperty("parent", func(s *IPTunnel) *string { return &s.Parent }),
		setting.Uint32Property("mode", func(s *IPTunnel) *uint32 { return &s.Mode }),
		setting.StringProperty("local", func(s *IPTunnel) *string { return &s.Local }),
		setting.StringProperty("remote", func(s *IPTunnel) *string { return &s.Remote }),
		setting.Uint32Property("ttl", func(s *IPTunnel) *uint32 { return &s.TTL }),
		setting.Uint32Property("tos", func(s *IPTunnel) *uint32 { return &s.TOS }),
		setting.BoolProperty("path-mtu-discovery", func(s *IPTunnel) *bool { return &s.PathMTUDiscovery }).
			WithDefault(wire.Bool(true)),
		setting.StringProperty("input-key", func(s *IPTunnel) *string { return &s.InputKey }),
		setting.StringProperty("output-key", func(s *IPTunnel) *string { return &s.OutputKey }),
		setting.Uint32Property("encapsulation-limit", func(s *IPTunnel) *uint32 { return &s.EncapsulationLimit }),
		setting.Uint32Property("flow-label", func(s *IPTunnel) *uint32 { return &s.FlowLabel }),
		setting.Uint32Property("mtu", func(s *IPTunnel) *uint32 { return &s.MTU }).
			WithFlags(setting.FuzzyIgnore),
	},
}

const maxFlowLabel = 0xfffff

func validTunnelKey(key string) bool {
	if key == "" {
		return true
	}
	_, err := strconv.ParseUint(key, 10, 32)
	return err == nil
}

func (t *IPTunnel) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	mode := TunnelMode(t.Mode)
	return first(
		func() (setting.VerifyResult, error) {
			if !mode.valid() {
				return invalidProperty(IPTunnelSettingName, "mode", "'%d' is not a valid tunnel mode", t.Mode)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if t.Parent != "" && !ValidInterfaceName(t.Parent) {
				return invalidProperty(IPTunnelSettingName, "parent", "'%s' is not a valid interface name", t.Parent)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if t.Local != "" {
				if _, ok := parseAddr(t.Local, mode.IsIPv6()); !ok {
					return invalidProperty(IPTunnelSettingName, "local", "'%s' is not a valid IPv%c address", t.Local, family(mode))
				}
			}
			if t.Remote == "" {
				return missingProperty(IPTunnelSettingName, "remote")
			}
			if _, ok := parseAddr(t.Remote, mode.IsIPv6()); !ok {
				return invalidProperty(IPTunnelSettingName, "remote", "'%s' is not a valid IPv%c address", t.Remote, family(mode))
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			keys := [...]struct{ prop, key string }{{"input-key", t.InputKey}, {"output-key", t.OutputKey}}
			for _, k := range keys {
				prop, key := k.prop, k.key
				if key == "" {
					continue
				}
				if !mode.HasKeys() {
					return invalidProperty(IPTunnelSettingName, prop, "tunnel keys can only be specified for GRE tunnels")
				}
				if !validTunnelKey(key) {
					return invalidProperty(IPTunnelSettingName, prop, "'%s' is not a valid tunnel key", key)
				}
			}
			return setting.VerifySuccess, nil
		},
		checkRange(IPTunnelSettingName, "ttl", t.TTL, 0, 255),
		checkRange(IPTunnelSettingName, "tos", t.TOS, 0, 255),
		func() (setting.VerifyResult, error) {
			if t.TTL != 0 && !t.PathMTUDiscovery {
				return invalidProperty(IPTunnelSettingName, "ttl", "a fixed TTL is allowed only when path MTU discovery is enabled")
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if mode.IsIPv6() {
				return first(
					checkRange(IPTunnelSettingName, "encapsulation-limit", t.EncapsulationLimit, 0, 255),
					checkRange(IPTunnelSettingName, "flow-label", t.FlowLabel, 0, maxFlowLabel),
				)
			}
			if t.EncapsulationLimit != 0 {
				return invalidProperty(IPTunnelSettingName, "encapsulation-limit", "only valid for IPv6 tunnels")
			}
			if t.FlowLabel != 0 {
				return invalidProperty(IPTunnelSettingName, "flow-label", "only valid for IPv6 tunnels")
			}
			return setting.VerifySuccess, nil
		},
	)
}

func family(m TunnelMode) rune {
	if m.IsIPv6() {
		return '6'
	}
	return '4'
}
