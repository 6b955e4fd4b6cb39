package settings

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"connsettings/internal/setting"
)

// VLANSettingName names the 802.1Q VLAN setting
const VLANSettingName = "vlan"

const (
	maxVLANID    = 4094
	maxVLANFlags = 0x7
	maxVLANPrio  = 7
)

// VLAN describes an 802.1Q VLAN on top of a parent interface
type VLAN struct {
	setting.Base

	Parent             string
	ID                 uint32
	Flags              uint32
	IngressPriorityMap []string
	EgressPriorityMap  []string
}

func NewVLAN() *VLAN { return &VLAN{} }

var vlanClass = &setting.Class{
	Name:        VLANSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(VLANSettingName),
	Parent:      virtualInterface,
	New:         func() setting.Setting { return NewVLAN() },
	Properties: []*setting.Property{
		setting.StringProperty("parent", func(s *VLAN) *string { return &s.Parent }),
		setting.Uint32Property("id", func(s *VLAN) *uint32 { return &s.ID }),
		setting.Uint32Property("flags", func(s *VLAN) *uint32 { return &s.Flags }),
		setting.StringsProperty("ingress-priority-map", func(s *VLAN) *[]string { return &s.IngressPriorityMap }),
		setting.StringsProperty("egress-priority-map", func(s *VLAN) *[]string { return &s.EgressPriorityMap }),
	},
}

// parsePriorityMapping parses a "from:to" priority mapping
func parsePriorityMapping(s string) (from, to uint32, ok bool) {
	a, b, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	f, err := strconv.ParseUint(a, 10, 32)
	if err != nil {
		return 0, 0, false
	}
	t, err := strconv.ParseUint(b, 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint32(f), uint32(t), true
}

func verifyPriorityMap(prop string, m []string, ingress bool) (setting.VerifyResult, error) {
	for _, entry := range m {
		from, to, ok := parsePriorityMapping(entry)
		if !ok {
			return invalidProperty(VLANSettingName, prop, "'%s' is not a valid priority mapping", entry)
		}
		// ingress maps 802.1p priorities to kernel priorities, egress the
		// other way round
		p := to
		if ingress {
			p = from
		}
		if p > maxVLANPrio {
			return invalidProperty(VLANSettingName, prop, "priority '%d' in '%s' is out of range <0-7>", p, entry)
		}
	}
	return setting.VerifySuccess, nil
}

func (v *VLAN) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	return first(
		func() (setting.VerifyResult, error) {
			if v.Parent == "" {
				// A parent may be given through a hardware setting's MAC
				if w, ok := find[*Wired](all); ok && w.MACAddress != "" {
					return setting.VerifySuccess, nil
				}
				return missingProperty(VLANSettingName, "parent")
			}
			if !ValidInterfaceName(v.Parent) {
				if _, err := uuid.Parse(v.Parent); err != nil {
					return invalidProperty(VLANSettingName, "parent", "'%s' is neither an UUID nor an interface name", v.Parent)
				}
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if v.ID > maxVLANID {
				return invalidProperty(VLANSettingName, "id", "the vlan id must be in range 0-%d but is %d", maxVLANID, v.ID)
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			if v.Flags&^maxVLANFlags != 0 {
				return invalidProperty(VLANSettingName, "flags", "flags are invalid")
			}
			return setting.VerifySuccess, nil
		},
		func() (setting.VerifyResult, error) {
			return verifyPriorityMap("ingress-priority-map", v.IngressPriorityMap, true)
		},
		func() (setting.VerifyResult, error) {
			return verifyPriorityMap("egress-priority-map", v.EgressPriorityMap, false)
		},
	)
}
