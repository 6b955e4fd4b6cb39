package settings

import (
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// PPP and PPPoE setting names
const (
	PPPSettingName   = "ppp"
	PPPoESettingName = "pppoe"
)

// PPP holds the link options of a point-to-point connection
type PPP struct {
	setting.Base

	NoAuth          bool
	RefuseEAP       bool
	RefusePAP       bool
	RefuseCHAP      bool
	RefuseMSCHAP    bool
	RefuseMSCHAPv2  bool
	NoBSDComp       bool
	NoDeflate       bool
	NoVJComp        bool
	RequireMPPE     bool
	Baud            uint32
	MRU             uint32
	MTU             uint32
	LCPEchoFailure  uint32
	LCPEchoInterval uint32
}

// NewPPP returns PPP options that skip authenticating the peer
func NewPPP() *PPP {
	return &PPP{NoAuth: true}
}

var pppClass = &setting.Class{
	Name:        PPPSettingName,
	Priority:    3,
	ErrorDomain: errorDomain(PPPSettingName),
	New:         func() setting.Setting { return NewPPP() },
	Properties: []*setting.Property{
		setting.BoolProperty("noauth", func(s *PPP) *bool { return &s.NoAuth }).
			WithDefault(wire.Bool(true)),
		setting.BoolProperty("refuse-eap", func(s *PPP) *bool { return &s.RefuseEAP }),
		setting.BoolProperty("refuse-pap", func(s *PPP) *bool { return &s.RefusePAP }),
		setting.BoolProperty("refuse-chap", func(s *PPP) *bool { return &s.RefuseCHAP }),
		setting.BoolProperty("refuse-mschap", func(s *PPP) *bool { return &s.RefuseMSCHAP }),
		setting.BoolProperty("refuse-mschapv2", func(s *PPP) *bool { return &s.RefuseMSCHAPv2 }),
		setting.BoolProperty("nobsdcomp", func(s *PPP) *bool { return &s.NoBSDComp }),
		setting.BoolProperty("nodeflate", func(s *PPP) *bool { return &s.NoDeflate }),
		setting.BoolProperty("no-vj-comp", func(s *PPP) *bool { return &s.NoVJComp }),
		setting.BoolProperty("require-mppe", func(s *PPP) *bool { return &s.RequireMPPE }),
		setting.Uint32Property("baud", func(s *PPP) *uint32 { return &s.Baud }),
		setting.Uint32Property("mru", func(s *PPP) *uint32 { return &s.MRU }),
		setting.Uint32Property("mtu", func(s *PPP) *uint32 { return &s.MTU }).
			WithFlags(setting.FuzzyIgnore),
		setting.Uint32Property("lcp-echo-failure", func(s *PPP) *uint32 { return &s.LCPEchoFailure }),
		setting.Uint32Property("lcp-echo-interval", func(s *PPP) *uint32 { return &s.LCPEchoInterval }),
	},
}

func (p *PPP) Verify(*setting.Registry, []setting.Setting) (setting.VerifyResult, error) {
	if p.MRU != 0 && (p.MRU < 128 || p.MRU > 16384) {
		return invalidProperty(PPPSettingName, "mru", "'%d' out of valid range <128-16384>", p.MRU)
	}
	if (p.LCPEchoFailure == 0) != (p.LCPEchoInterval == 0) {
		if p.LCPEchoFailure == 0 {
			return invalidProperty(PPPSettingName, "lcp-echo-failure", "setting this property requires non-zero 'lcp-echo-interval' property")
		}
		return invalidProperty(PPPSettingName, "lcp-echo-interval", "setting this property requires non-zero 'lcp-echo-failure' property")
	}
	if p.RequireMPPE && p.RefuseMSCHAP && p.RefuseMSCHAPv2 {
		return invalidProperty(PPPSettingName, "require-mppe", "MPPE requires MSCHAP or MSCHAPv2 authentication")
	}
	return setting.VerifySuccess, nil
}

// PPPoE holds the credentials of a PPP over Ethernet session
type PPPoE struct {
	setting.Base

	Service       string
	Username      string
	Password      string
	PasswordFlags setting.SecretFlags
}

func NewPPPoE() *PPPoE { return &PPPoE{} }

var pppoeClass = &setting.Class{
	Name:        PPPoESettingName,
	Priority:    3,
	ErrorDomain: errorDomain(PPPoESettingName),
	New:         func() setting.Setting { return NewPPPoE() },
	Properties: []*setting.Property{
		setting.StringProperty("service", func(s *PPPoE) *string { return &s.Service }),
		setting.StringProperty("username", func(s *PPPoE) *string { return &s.Username }),
		setting.StringProperty("password", func(s *PPPoE) *string { return &s.Password }).
			Secret(setting.FlagsOf(func(s *PPPoE) *setting.SecretFlags { return &s.PasswordFlags })),
	},
}

func (p *PPPoE) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	if p.Username == "" {
		return missingProperty(PPPoESettingName, "username")
	}
	if p.Service == "" {
		return setting.VerifySuccess, nil
	}
	if _, ok := find[*Wired](all); !ok {
		return setting.VerifyError, &setting.MissingSettingError{Name: WiredSettingName, Prefix: PPPoESettingName + ".service"}
	}
	return setting.VerifySuccess, nil
}

func (p *PPPoE) NeedSecrets() []string {
	if p.Password == "" && !p.PasswordFlags.Has(setting.SecretFlagNotRequired) {
		return []string{"password"}
	}
	return nil
}
