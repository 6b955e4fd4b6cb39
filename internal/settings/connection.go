package settings

import (
	"github.com/google/uuid"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// ConnectionSettingName names the setting every connection carries
const ConnectionSettingName = setting.ConnectionSettingName

// Connection holds the identity of a connection and its relation to other
// connections
type Connection struct {
	setting.Base

	ID            string
	UUID          string
	InterfaceName string
	Type          string
	Autoconnect   bool
	Timestamp     uint64
	ReadOnly      bool
	Zone          string
	Master        string
	SlaveType     string
	Permissions   []string
}

// NewConnection returns a connection setting with its defaults
func NewConnection() *Connection {
	return &Connection{Autoconnect: true}
}

var connectionClass = &setting.Class{
	Name:        ConnectionSettingName,
	Priority:    0,
	ErrorDomain: errorDomain(ConnectionSettingName),
	New:         func() setting.Setting { return NewConnection() },
	Properties: []*setting.Property{
		setting.StringProperty("id", func(s *Connection) *string { return &s.ID }).
			WithFlags(setting.FuzzyIgnore),
		setting.StringProperty("uuid", func(s *Connection) *string { return &s.UUID }).
			WithFlags(setting.FuzzyIgnore),
		setting.StringProperty("interface-name", func(s *Connection) *string { return &s.InterfaceName }).
			WithFlags(setting.Inferrable),
		setting.StringProperty("type", func(s *Connection) *string { return &s.Type }).
			WithFlags(setting.Inferrable),
		setting.BoolProperty("autoconnect", func(s *Connection) *bool { return &s.Autoconnect }).
			WithDefault(wire.Bool(true)).WithFlags(setting.FuzzyIgnore),
		setting.Uint64Property("timestamp", func(s *Connection) *uint64 { return &s.Timestamp }).
			WithFlags(setting.FuzzyIgnore),
		setting.BoolProperty("read-only", func(s *Connection) *bool { return &s.ReadOnly }).
			WithFlags(setting.FuzzyIgnore),
		setting.StringProperty("zone", func(s *Connection) *string { return &s.Zone }).
			WithFlags(setting.FuzzyIgnore),
		setting.StringProperty("master", func(s *Connection) *string { return &s.Master }).
			WithFlags(setting.FuzzyIgnore | setting.Inferrable),
		setting.StringProperty("slave-type", func(s *Connection) *string { return &s.SlaveType }).
			WithFlags(setting.FuzzyIgnore | setting.Inferrable),
		setting.StringsProperty("permissions", func(s *Connection) *[]string { return &s.Permissions }).
			WithFlags(setting.FuzzyIgnore),
	},
}

// CompareProperty drops the id from comparisons made with CompareIgnoreID
func (c *Connection) CompareProperty(_ setting.Setting, d *setting.Descriptor, flags setting.CompareFlags) (bool, bool) {
	if d.Name == "id" && flags&setting.CompareIgnoreID != 0 {
		return true, true
	}
	return false, false
}

// Verify checks the identity fields and that the connection's type and
// port relation agree with the other settings present
func (c *Connection) Verify(reg *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	if c.ID == "" {
		return missingProperty(ConnectionSettingName, "id")
	}
	if c.UUID == "" {
		return missingProperty(ConnectionSettingName, "uuid")
	}
	if _, err := uuid.Parse(c.UUID); err != nil {
		return invalidProperty(ConnectionSettingName, "uuid", "'%s' is not a valid UUID", c.UUID)
	}
	if c.InterfaceName != "" && !ValidInterfaceName(c.InterfaceName) {
		return invalidProperty(ConnectionSettingName, "interface-name", "'%s' is not a valid interface name", c.InterfaceName)
	}

	normalizable := false
	if c.Type == "" {
		// An undetectable base type cannot be filled in
		if reg.FindBaseType(all) == nil {
			return missingProperty(ConnectionSettingName, "type")
		}
		normalizable = true
	} else {
		info, ok := reg.LookupByName(c.Type)
		if !ok {
			return invalidProperty(ConnectionSettingName, "type", "connection type '%s' is not valid", c.Type)
		}
		if !reg.IsBaseType(info.Type) {
			return invalidProperty(ConnectionSettingName, "type", "connection type '%s' is not a base type", c.Type)
		}
		if _, err := reg.FindInListRequired(all, c.Type, ConnectionSettingName, "type"); err != nil {
			return setting.VerifyError, err
		}
	}

	switch {
	case c.SlaveType != "":
		port, ok := setting.SlaveTypeIsValid(c.SlaveType)
		if !ok {
			return invalidProperty(ConnectionSettingName, "slave-type", "Unknown slave type '%s'", c.SlaveType)
		}
		if c.Master == "" {
			return missingProperty(ConnectionSettingName, "master")
		}
		if port != "" {
			if _, err := reg.FindInListRequired(all, port, ConnectionSettingName, "slave-type"); err != nil {
				return setting.VerifyError, err
			}
		}
	case c.Master != "":
		if st, _ := reg.SlaveTypeFromSettings(all); st == "" {
			return missingProperty(ConnectionSettingName, "slave-type")
		}
		normalizable = true
	}

	if normalizable {
		return setting.VerifyNormalizable, nil
	}
	return setting.VerifySuccess, nil
}

// Normalize fills in a detectable type and slave type
func (c *Connection) Normalize(reg *setting.Registry, all []setting.Setting) bool {
	changed := false
	if c.Type == "" {
		if base := reg.FindBaseType(all); base != nil {
			c.Type = reg.NameOf(base)
			changed = true
		}
	}
	if c.SlaveType == "" && c.Master != "" {
		if st, _ := reg.SlaveTypeFromSettings(all); st != "" {
			c.SlaveType = st
			changed = true
		}
	}
	return changed
}
