package settings

import (
	"fmt"
	"net/netip"
	"strconv"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// IPv4SettingName names the IPv4 configuration setting
const IPv4SettingName = "ipv4"

// IPv4 configuration methods
const (
	IPv4MethodAuto      = "auto"
	IPv4MethodLinkLocal = "link-local"
	IPv4MethodManual    = "manual"
	IPv4MethodShared    = "shared"
	IPv4MethodDisabled  = "disabled"
)

// IPv4 configures addressing, routing and DNS for IPv4. Addresses are
// prefixes in CIDR form, e.g. "192.0.2.10/24".
type IPv4 struct {
	setting.Base

	Method           string
	Addresses        []string
	Gateway          string
	DNS              []string
	DNSSearch        []string
	IgnoreAutoRoutes bool
	IgnoreAutoDNS    bool
	NeverDefault     bool
	MayFail          bool
	RouteMetric      int64
	DHCPHostname     string
	DHCPSendHostname bool
	DHCPClientID     string
}

// NewIPv4 returns an IPv4 setting with DHCP-friendly defaults and no method
func NewIPv4() *IPv4 {
	return &IPv4{MayFail: true, RouteMetric: -1, DHCPSendHostname: true}
}

var ipv4Class = &setting.Class{
	Name:        IPv4SettingName,
	Priority:    4,
	ErrorDomain: errorDomain(IPv4SettingName),
	New:         func() setting.Setting { return NewIPv4() },
	Properties: []*setting.Property{
		setting.StringProperty("method", func(s *IPv4) *string { return &s.Method }).
			WithFlags(setting.Inferrable),
		setting.StringsProperty("addresses", func(s *IPv4) *[]string { return &s.Addresses }).
			WithFlags(setting.Inferrable),
		setting.StringProperty("gateway", func(s *IPv4) *string { return &s.Gateway }).
			WithFlags(setting.Inferrable),
		setting.StringsProperty("dns", func(s *IPv4) *[]string { return &s.DNS }).
			WithFlags(setting.Inferrable),
		setting.StringsProperty("dns-search", func(s *IPv4) *[]string { return &s.DNSSearch }).
			WithFlags(setting.Inferrable),
		setting.BoolProperty("ignore-auto-routes", func(s *IPv4) *bool { return &s.IgnoreAutoRoutes }),
		setting.BoolProperty("ignore-auto-dns", func(s *IPv4) *bool { return &s.IgnoreAutoDNS }),
		setting.BoolProperty("never-default", func(s *IPv4) *bool { return &s.NeverDefault }),
		setting.BoolProperty("may-fail", func(s *IPv4) *bool { return &s.MayFail }).
			WithDefault(wire.Bool(true)).WithFlags(setting.FuzzyIgnore),
		setting.Int64Property("route-metric", func(s *IPv4) *int64 { return &s.RouteMetric }).
			WithDefault(wire.Int64(-1)),
		setting.StringProperty("dhcp-hostname", func(s *IPv4) *string { return &s.DHCPHostname }),
		setting.BoolProperty("dhcp-send-hostname", func(s *IPv4) *bool { return &s.DHCPSendHostname }).
			WithDefault(wire.Bool(true)),
		setting.StringProperty("dhcp-client-id", func(s *IPv4) *string { return &s.DHCPClientID }),
	},
	Overrides: []*setting.Override{
		setting.TransformProperty("addresses", wire.KindDictList, addressesToWire, addressesFromWire),
	},
}

// addressesToWire sends each address as {"address": s, "prefix": u}.
// Entries that do not parse are dropped.
func addressesToWire(v wire.Value) wire.Value {
	var out []wire.Map
	for _, a := range v.AsStrings() {
		p, err := netip.ParsePrefix(a)
		if err != nil {
			continue
		}
		out = append(out, wire.Map{
			"address": wire.String(p.Addr().String()),
			"prefix":  wire.Uint32(uint32(p.Bits())),
		})
	}
	return wire.DictList(out)
}

func addressesFromWire(v wire.Value) (wire.Value, error) {
	list := v.AsDictList()
	out := make([]string, 0, len(list))
	for i, d := range list {
		addr, ok := d["address"]
		if !ok {
			return wire.Value{}, fmt.Errorf("address %d has no 'address'", i)
		}
		prefix, ok := d["prefix"]
		if !ok {
			return wire.Value{}, fmt.Errorf("address %d has no 'prefix'", i)
		}
		bits, err := strconv.ParseUint(prefix.Text(), 10, 8)
		if err != nil {
			return wire.Value{}, fmt.Errorf("address %d has invalid prefix '%s'", i, prefix.Text())
		}
		out = append(out, fmt.Sprintf("%s/%d", addr.Text(), bits))
	}
	if len(out) == 0 {
		return wire.Zero(wire.KindStrings), nil
	}
	return wire.Strings(out), nil
}

func (ip *IPv4) Verify(*setting.Registry, []setting.Setting) (setting.VerifyResult, error) {
	for _, a := range ip.Addresses {
		p, err := netip.ParsePrefix(a)
		if err != nil || !p.Addr().Is4() || p.Bits() == 0 {
			return invalidProperty(IPv4SettingName, "addresses", "'%s' is not a valid IPv4 address", a)
		}
	}
	if ip.Gateway != "" {
		if _, ok := parseAddr(ip.Gateway, false); !ok {
			return invalidProperty(IPv4SettingName, "gateway", "'%s' is not a valid IPv4 address", ip.Gateway)
		}
		if len(ip.Addresses) == 0 {
			return invalidProperty(IPv4SettingName, "gateway", "gateway cannot be set if there are no addresses configured")
		}
	}
	for _, d := range ip.DNS {
		if _, ok := parseAddr(d, false); !ok {
			return invalidProperty(IPv4SettingName, "dns", "'%s' is not a valid IPv4 address", d)
		}
	}

	switch ip.Method {
	case "":
		return setting.VerifyNormalizable, propertyError(IPv4SettingName, "method", setting.ErrMissingProperty, "property is missing")
	case IPv4MethodManual:
		if len(ip.Addresses) == 0 {
			return missingProperty(IPv4SettingName, "addresses")
		}
	case IPv4MethodLinkLocal, IPv4MethodShared, IPv4MethodDisabled:
		if len(ip.DNS) > 0 {
			return invalidProperty(IPv4SettingName, "dns", "this property is not allowed for '%s=%s'", "method", ip.Method)
		}
		if len(ip.DNSSearch) > 0 {
			return invalidProperty(IPv4SettingName, "dns-search", "this property is not allowed for '%s=%s'", "method", ip.Method)
		}
		if ip.Method != IPv4MethodShared && len(ip.Addresses) > 0 {
			return invalidProperty(IPv4SettingName, "addresses", "this property is not allowed for '%s=%s'", "method", ip.Method)
		}
	case IPv4MethodAuto:
	default:
		return invalidProperty(IPv4SettingName, "method", "property is invalid")
	}

	if ip.DHCPClientID == "" && ip.DHCPHostname != "" && !ip.DHCPSendHostname {
		return invalidProperty(IPv4SettingName, "dhcp-hostname", "requires 'dhcp-send-hostname'")
	}
	return setting.VerifySuccess, nil
}

// Normalize picks manual configuration when addresses are present and
// automatic configuration otherwise
func (ip *IPv4) Normalize(*setting.Registry, []setting.Setting) bool {
	if ip.Method != "" {
		return false
	}
	if len(ip.Addresses) > 0 {
		ip.Method = IPv4MethodManual
	} else {
		ip.Method = IPv4MethodAuto
	}
	return true
}
