package settings

import (
	"strconv"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// BondSettingName names the bond master setting
const BondSettingName = "bond"

// Bond option names
const (
	BondOptionMode        = "mode"
	BondOptionMIIMon      = "miimon"
	BondOptionUpDelay     = "updelay"
	BondOptionDownDelay   = "downdelay"
	BondOptionARPInterval = "arp_interval"
	BondOptionARPIPTarget = "arp_ip_target"
)

var bondModes = []string{
	"balance-rr", "active-backup", "balance-xor", "broadcast",
	"802.3ad", "balance-tlb", "balance-alb",
	"0", "1", "2", "3", "4", "5", "6",
}

var bondNumericOptions = []string{
	BondOptionMIIMon, BondOptionUpDelay, BondOptionDownDelay, BondOptionARPInterval,
}

// Bond aggregates several ports into one link. Its options are passed to
// the bonding driver as name/value pairs.
type Bond struct {
	setting.Base

	Options map[string]string
}

// NewBond returns a bond setting in balance-rr mode
func NewBond() *Bond {
	return &Bond{Options: map[string]string{BondOptionMode: "balance-rr"}}
}

var bondClass = &setting.Class{
	Name:        BondSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(BondSettingName),
	Parent:      virtualInterface,
	New:         func() setting.Setting { return NewBond() },
	Properties: []*setting.Property{
		setting.StringMapProperty("options", func(s *Bond) *map[string]string { return &s.Options }).
			WithDefault(wire.Dict(wire.Map{BondOptionMode: wire.String("balance-rr")})),
	},
}

// Option returns the value of a bonding option
func (b *Bond) Option(name string) (string, bool) {
	v, ok := b.Options[name]
	return v, ok
}

// SetOption sets a bonding option, rejecting unknown names and values of
// the wrong form
func (b *Bond) SetOption(name, value string) bool {
	if !validBondOption(name, value) {
		return false
	}
	if b.Options == nil {
		b.Options = make(map[string]string)
	}
	b.Options[name] = value
	return true
}

// RemoveOption deletes a bonding option and reports whether it was set
func (b *Bond) RemoveOption(name string) bool {
	if _, ok := b.Options[name]; !ok {
		return false
	}
	delete(b.Options, name)
	return true
}

func validBondOption(name, value string) bool {
	switch {
	case name == BondOptionMode:
		return oneOf(value, bondModes...)
	case oneOf(name, bondNumericOptions...):
		_, err := strconv.ParseUint(value, 10, 32)
		return err == nil
	case name == BondOptionARPIPTarget:
		return value != ""
	}
	return false
}

func (b *Bond) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	if res, err := verifyVirtualInterfaceName(all); res != setting.VerifySuccess {
		return res, err
	}
	for name, value := range b.Options {
		if !validBondOption(name, value) {
			return invalidProperty(BondSettingName, "options", "invalid option '%s' or its value '%s'", name, value)
		}
	}
	if _, ok := b.Options[BondOptionMode]; !ok {
		return missingProperty(BondSettingName, "options")
	}
	miimon, _ := strconv.ParseUint(b.Options[BondOptionMIIMon], 10, 32)
	arp, _ := strconv.ParseUint(b.Options[BondOptionARPInterval], 10, 32)
	if miimon > 0 && arp > 0 {
		return invalidProperty(BondSettingName, "options", "only one of '%s' and '%s' can be set", BondOptionMIIMon, BondOptionARPInterval)
	}
	if arp > 0 && b.Options[BondOptionARPIPTarget] == "" {
		return invalidProperty(BondSettingName, "options", "'%s' requires '%s'", BondOptionARPInterval, BondOptionARPIPTarget)
	}
	return setting.VerifySuccess, nil
}
