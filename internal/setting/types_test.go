package setting

import (
	"strings"
	"testing"

	"connsettings/internal/wire"
)

type testConnection struct {
	Base
	ID        string
	UUID      string
	Timestamp uint64
}

type testWired struct {
	Base
	Port          string
	MAC           string
	MTU           uint32
	Speed         uint32
	Password      string
	PasswordFlags SecretFlags
	PIN           string

	verifyResult VerifyResult
	normalized   bool
}

func (w *testWired) Verify(_ *Registry, all []Setting) (VerifyResult, error) {
	switch w.verifyResult {
	case VerifyNormalizable:
		return VerifyNormalizable, &PropertyError{Setting: "wired", Property: "mtu", Err: ErrInvalidProperty, Message: "fixable"}
	case VerifyError:
		return VerifyError, nil
	}
	return VerifySuccess, nil
}

func (w *testWired) NeedSecrets() []string {
	if w.Password == "" {
		return []string{"password"}
	}
	return nil
}

type testPPP struct {
	Base
	MRU uint32
}

type testPPPoE struct {
	Base
	Service string
}

type testBridgePort struct{ Base }

type testTeamPort struct{ Base }

type testVirtual struct {
	Base
	Parent string
	Tags   []string
}

var connectionClass = &Class{
	Name:        ConnectionSettingName,
	Priority:    0,
	ErrorDomain: "test-connection-error",
	New:         func() Setting { return &testConnection{} },
	Properties: []*Property{
		StringProperty("id", func(s *testConnection) *string { return &s.ID }).WithFlags(Inferrable),
		StringProperty("uuid", func(s *testConnection) *string { return &s.UUID }),
		Uint64Property("timestamp", func(s *testConnection) *uint64 { return &s.Timestamp }).WithFlags(FuzzyIgnore),
	},
}

// upperBytes compares MAC strings case-insensitively through the wire form
func upperBytes(v wire.Value) wire.Value {
	return wire.Bytes([]byte(strings.ToUpper(v.AsString())))
}

func bytesToString(v wire.Value) (wire.Value, error) {
	return wire.String(string(v.AsBytes())), nil
}

var wiredClass = &Class{
	Name:        "wired",
	Priority:    1,
	ErrorDomain: "test-wired-error",
	New:         func() Setting { return &testWired{MTU: 1500} },
	Properties: []*Property{
		StringProperty("port", func(s *testWired) *string { return &s.Port }),
		StringProperty("mac", func(s *testWired) *string { return &s.MAC }).WithFlags(Inferrable),
		Uint32Property("mtu", func(s *testWired) *uint32 { return &s.MTU }).
			WithDefault(wire.Uint32(1500)).WithFlags(FuzzyIgnore),
		Uint32Property("speed", func(s *testWired) *uint32 { return &s.Speed }).ReadOnly(),
		StringProperty("password", func(s *testWired) *string { return &s.Password }).
			Secret(FlagsOf(func(s *testWired) *SecretFlags { return &s.PasswordFlags })),
		StringProperty("pin", func(s *testWired) *string { return &s.PIN }).Secret(nil),
	},
	Overrides: []*Override{
		TransformProperty("mac", wire.KindBytes, upperBytes, bytesToString),
		OverrideProperty("port", wire.KindString, nil,
			func(hc *HookContext, v wire.Value) error {
				if v.AsString() == "bad" {
					return hc.InvalidProperty("unsupported port %q", v.AsString())
				}
				hc.Setting.(*testWired).Port = v.AsString()
				return nil
			}, nil),
	},
}

var pppClass = &Class{
	Name:        "ppp",
	Priority:    3,
	ErrorDomain: "test-ppp-error",
	New:         func() Setting { return &testPPP{} },
	Properties: []*Property{
		Uint32Property("mru", func(s *testPPP) *uint32 { return &s.MRU }),
	},
}

var pppoeClass = &Class{
	Name:        "pppoe",
	Priority:    3,
	ErrorDomain: "test-pppoe-error",
	New:         func() Setting { return &testPPPoE{} },
	Properties: []*Property{
		StringProperty("service", func(s *testPPPoE) *string { return &s.Service }),
	},
}

var bridgePortClass = &Class{
	Name:        "bridge-port",
	Priority:    3,
	ErrorDomain: "test-bridge-port-error",
	New:         func() Setting { return &testBridgePort{} },
}

var teamPortClass = &Class{
	Name:        "team-port",
	Priority:    3,
	ErrorDomain: "test-team-port-error",
	New:         func() Setting { return &testTeamPort{} },
}

// virtualBase is an abstract ancestor with an inherited property, an
// override on it and a wire-only property
var virtualBase = &Class{
	Name: "virtual-base",
	Properties: []*Property{
		StringProperty("parent", func(s *testVirtual) *string { return &s.Parent }),
	},
	Overrides: []*Override{
		OverrideProperty("parent", wire.KindString, nil, nil, func(hc *HookContext) error {
			hc.Setting.(*testVirtual).Parent = "from-base"
			return nil
		}),
		WireOnlyProperty("interface-name", wire.KindString,
			func(hc *HookContext) (wire.Value, bool) { return wire.String("base"), true }, nil),
	},
}

var virtualClass = &Class{
	Name:        "virtual",
	Priority:    1,
	ErrorDomain: "test-virtual-error",
	Parent:      virtualBase,
	New:         func() Setting { return &testVirtual{} },
	Properties: []*Property{
		StringsProperty("tags", func(s *testVirtual) *[]string { return &s.Tags }),
	},
	Overrides: []*Override{
		OverrideProperty("parent", wire.KindString, nil, nil, func(hc *HookContext) error {
			hc.Setting.(*testVirtual).Parent = "from-derived"
			return nil
		}),
		WireOnlyProperty("interface-name", wire.KindString,
			func(hc *HookContext) (wire.Value, bool) {
				if hc.Connection == nil {
					return wire.Value{}, false
				}
				c, ok := hc.Connection.SettingByName(ConnectionSettingName).(*testConnection)
				if !ok {
					return wire.Value{}, false
				}
				return wire.String(c.ID + "0"), true
			},
			func(hc *HookContext, v wire.Value) error {
				if strings.ContainsAny(v.AsString(), " /") {
					return hc.InvalidProperty("invalid interface name %q", v.AsString())
				}
				return nil
			}),
	},
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, c := range []*Class{connectionClass, wiredClass, pppClass, pppoeClass, bridgePortClass, teamPortClass, virtualClass} {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s): %v", c.Name, err)
		}
	}
	return r
}

// testConn is a minimal Connection over a fixed set of settings
type testConn map[string]Setting

func (c testConn) SettingByName(name string) Setting { return c[name] }

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
