package settings

import (
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// Bridge and bridge port setting names
const (
	BridgeSettingName     = "bridge"
	BridgePortSettingName = "bridge-port"
)

// Bridge configures a software bridge and its spanning tree
type Bridge struct {
	setting.Base

	MACAddress   string
	STP          bool
	Priority     uint32
	ForwardDelay uint32
	HelloTime    uint32
	MaxAge       uint32
	AgeingTime   uint32
}

// NewBridge returns a bridge with spanning tree enabled and the kernel's
// default timers
func NewBridge() *Bridge {
	return &Bridge{
		STP:          true,
		Priority:     0x8000,
		ForwardDelay: 15,
		HelloTime:    2,
		MaxAge:       20,
		AgeingTime:   300,
	}
}

var bridgeClass = &setting.Class{
	Name:        BridgeSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(BridgeSettingName),
	Parent:      virtualInterface,
	New:         func() setting.Setting { return NewBridge() },
	Properties: []*setting.Property{
		setting.StringProperty("mac-address", func(s *Bridge) *string { return &s.MACAddress }),
		setting.BoolProperty("stp", func(s *Bridge) *bool { return &s.STP }).
			WithDefault(wire.Bool(true)),
		setting.Uint32Property("priority", func(s *Bridge) *uint32 { return &s.Priority }).
			WithDefault(wire.Uint32(0x8000)),
		setting.Uint32Property("forward-delay", func(s *Bridge) *uint32 { return &s.ForwardDelay }).
			WithDefault(wire.Uint32(15)),
		setting.Uint32Property("hello-time", func(s *Bridge) *uint32 { return &s.HelloTime }).
			WithDefault(wire.Uint32(2)),
		setting.Uint32Property("max-age", func(s *Bridge) *uint32 { return &s.MaxAge }).
			WithDefault(wire.Uint32(20)),
		setting.Uint32Property("ageing-time", func(s *Bridge) *uint32 { return &s.AgeingTime }).
			WithDefault(wire.Uint32(300)),
	},
	Overrides: []*setting.Override{
		hwAddrProperty("mac-address"),
	},
}

func checkRange(settingName, prop string, v, lo, hi uint32) func() (setting.VerifyResult, error) {
	return func() (setting.VerifyResult, error) {
		if v < lo || v > hi {
			return invalidProperty(settingName, prop, "value '%d' is out of range <%d-%d>", v, lo, hi)
		}
		return setting.VerifySuccess, nil
	}
}

func (b *Bridge) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	return first(
		func() (setting.VerifyResult, error) { return verifyVirtualInterfaceName(all) },
		func() (setting.VerifyResult, error) {
			return verifyHardwareAddress(BridgeSettingName, "mac-address", b.MACAddress)
		},
		checkRange(BridgeSettingName, "priority", b.Priority, 0, 0xffff),
		checkRange(BridgeSettingName, "forward-delay", b.ForwardDelay, 2, 30),
		checkRange(BridgeSettingName, "hello-time", b.HelloTime, 1, 10),
		checkRange(BridgeSettingName, "max-age", b.MaxAge, 6, 40),
		checkRange(BridgeSettingName, "ageing-time", b.AgeingTime, 0, 1000000),
	)
}

// BridgePort configures one port of a bridge
type BridgePort struct {
	setting.Base

	Priority    uint32
	PathCost    uint32
	HairpinMode bool
}

func NewBridgePort() *BridgePort {
	return &BridgePort{Priority: 32, PathCost: 100}
}

var bridgePortClass = &setting.Class{
	Name:        BridgePortSettingName,
	Priority:    3,
	ErrorDomain: errorDomain(BridgePortSettingName),
	New:         func() setting.Setting { return NewBridgePort() },
	Properties: []*setting.Property{
		setting.Uint32Property("priority", func(s *BridgePort) *uint32 { return &s.Priority }).
			WithDefault(wire.Uint32(32)),
		setting.Uint32Property("path-cost", func(s *BridgePort) *uint32 { return &s.PathCost }).
			WithDefault(wire.Uint32(100)),
		setting.BoolProperty("hairpin-mode", func(s *BridgePort) *bool { return &s.HairpinMode }),
	},
}

func (p *BridgePort) Verify(*setting.Registry, []setting.Setting) (setting.VerifyResult, error) {
	return first(
		checkRange(BridgePortSettingName, "priority", p.Priority, 0, 63),
		checkRange(BridgePortSettingName, "path-cost", p.PathCost, 0, 65535),
	)
}
