package setting

import (
	"reflect"
)

// Setting names the engine has to know about for base-type and port
// detection
const (
	pppoeSettingName      = "pppoe"
	bondSettingName       = "bond"
	bridgeSettingName     = "bridge"
	bridgePortSettingName = "bridge-port"
	teamSettingName       = "team"
	teamPortSettingName   = "team-port"
)

// IsBaseType reports whether t may be a connection's primary type: every
// priority 1 type, and pppoe. PPPoE sorts after hardware-auxiliary
// settings for secrets but still identifies a connection.
func (r *Registry) IsBaseType(t reflect.Type) bool {
	info, ok := r.LookupByType(t)
	if !ok {
		return false
	}
	return info.Priority == 1 || info.Name == pppoeSettingName
}

// IsBase reports whether s is of a base type
func (r *Registry) IsBase(s Setting) bool {
	if s == nil {
		return false
	}
	return r.IsBaseType(reflect.TypeOf(s))
}

// FindBaseType returns the only base-type setting in settings. When none
// or more than one is present the base type is undetectable and nil is
// returned.
func (r *Registry) FindBaseType(settings []Setting) Setting {
	var found Setting
	for _, s := range settings {
		if !r.IsBase(s) {
			continue
		}
		if found != nil {
			return nil
		}
		found = s
	}
	return found
}

// FindInList returns the setting named name, or nil
func (r *Registry) FindInList(settings []Setting, name string) Setting {
	for _, s := range settings {
		if r.NameOf(s) == name {
			return s
		}
	}
	return nil
}

// FindInListRequired is FindInList that reports a *MissingSettingError when
// the setting is absent. A non-empty prefixSetting and prefixProperty name
// the property that required it.
func (r *Registry) FindInListRequired(settings []Setting, name, prefixSetting, prefixProperty string) (Setting, error) {
	if s := r.FindInList(settings, name); s != nil {
		return s, nil
	}
	err := &MissingSettingError{Name: name}
	if prefixSetting != "" {
		err.Prefix = prefixSetting + "." + prefixProperty
	}
	return nil, err
}

// SlaveTypeIsValid reports whether slaveType names a master type and
// returns the port setting a port of that master needs. Bond ports need
// none.
func SlaveTypeIsValid(slaveType string) (portType string, ok bool) {
	switch slaveType {
	case bondSettingName:
		return "", true
	case bridgeSettingName:
		return bridgePortSettingName, true
	case teamSettingName:
		return teamPortSettingName, true
	}
	return "", false
}

// SlaveTypeFromSettings infers the slave type from port settings present
// in settings. It returns "" and nil when there is none, or when more than
// one kind of port setting is present.
func (r *Registry) SlaveTypeFromSettings(settings []Setting) (slaveType string, port Setting) {
	for _, s := range settings {
		var st string
		switch r.NameOf(s) {
		case bridgePortSettingName:
			st = bridgeSettingName
		case teamPortSettingName:
			st = teamSettingName
		default:
			continue
		}
		if slaveType != "" {
			return "", nil
		}
		slaveType, port = st, s
	}
	return slaveType, port
}
