// Package connection aggregates settings into a connection: at most one
// setting per type, serialized, verified and compared as a whole.
package connection

import (
	"fmt"
	"strings"

	"connsettings/internal/setting"
	"connsettings/internal/settings"
	"connsettings/internal/wire"
)

// Connection holds the settings of one connection profile
type Connection struct {
	reg      *setting.Registry
	settings map[string]setting.Setting
}

// New returns an empty connection using the default registry
func New() *Connection {
	return &Connection{reg: setting.Default, settings: make(map[string]setting.Setting)}
}

// FromSettings builds a connection from settings. A later setting replaces
// an earlier one of the same type.
func FromSettings(ss ...setting.Setting) *Connection {
	c := New()
	for _, s := range ss {
		c.AddSetting(s)
	}
	return c
}

// FromWire builds a connection from its wire form. The result is not
// verified. An unknown setting name fails with setting.ErrUnknownSetting.
func FromWire(w wire.Connection) (*Connection, error) {
	c := New()
	for _, name := range w.Names() {
		s, err := c.reg.FromWire(name, w[name], w)
		if err != nil {
			return nil, err
		}
		c.settings[name] = s
	}
	return c, nil
}

// AddSetting adds s, replacing any setting of the same type
func (c *Connection) AddSetting(s setting.Setting) {
	if s == nil {
		return
	}
	name := c.reg.NameOf(s)
	if name == "" {
		return
	}
	c.settings[name] = s
}

// RemoveSetting removes the setting called name and reports whether it was
// present
func (c *Connection) RemoveSetting(name string) bool {
	if _, ok := c.settings[name]; !ok {
		return false
	}
	delete(c.settings, name)
	return true
}

// SettingByName returns the setting called name, or nil
func (c *Connection) SettingByName(name string) setting.Setting {
	s, ok := c.settings[name]
	if !ok {
		return nil
	}
	return s
}

// Settings returns the settings in priority order
func (c *Connection) Settings() []setting.Setting {
	out := make([]setting.Setting, 0, len(c.settings))
	for _, s := range c.settings {
		out = append(out, s)
	}
	c.reg.SortByPriority(out)
	return out
}

// Len returns the number of settings
func (c *Connection) Len() int { return len(c.settings) }

// ConnectionSetting returns the connection setting, or nil
func (c *Connection) ConnectionSetting() *settings.Connection {
	s, _ := c.SettingByName(settings.ConnectionSettingName).(*settings.Connection)
	return s
}

func (c *Connection) UUID() string {
	if s := c.ConnectionSetting(); s != nil {
		return s.UUID
	}
	return ""
}

func (c *Connection) ID() string {
	if s := c.ConnectionSetting(); s != nil {
		return s.ID
	}
	return ""
}

// Type returns the connection type named by the connection setting
func (c *Connection) Type() string {
	if s := c.ConnectionSetting(); s != nil {
		return s.Type
	}
	return ""
}

func (c *Connection) InterfaceName() string {
	if s := c.ConnectionSetting(); s != nil {
		return s.InterfaceName
	}
	return ""
}

func (c *Connection) SlaveType() string {
	if s := c.ConnectionSetting(); s != nil {
		return s.SlaveType
	}
	return ""
}

// IsType reports whether the connection is of type name
func (c *Connection) IsType(name string) bool {
	return name != "" && c.Type() == name
}

// BaseType returns the setting that identifies the connection's type:
// the one named by the connection setting, else the only base-type
// setting present
func (c *Connection) BaseType() setting.Setting {
	if t := c.Type(); t != "" {
		if s := c.SettingByName(t); s != nil {
			return s
		}
	}
	return c.reg.FindBaseType(c.Settings())
}

// ToWire serializes every setting. With SerializeOnlySecrets, settings
// holding no secrets are left out.
func (c *Connection) ToWire(mode setting.SerializeMode) (wire.Connection, error) {
	out := make(wire.Connection, len(c.settings))
	for _, s := range c.Settings() {
		m, err := c.reg.ToWire(s, c, mode)
		if err != nil {
			return nil, err
		}
		if mode == setting.SerializeOnlySecrets && len(m) == 0 {
			continue
		}
		out[c.reg.NameOf(s)] = m
	}
	return out, nil
}

// VerifyResult verifies every setting in priority order. The first error
// wins; otherwise the first normalizable defect is reported.
func (c *Connection) VerifyResult() (setting.VerifyResult, error) {
	if c.ConnectionSetting() == nil {
		return setting.VerifyError, &setting.MissingSettingError{Name: settings.ConnectionSettingName}
	}

	all := c.Settings()
	result := setting.VerifySuccess
	var normErr error
	for _, s := range all {
		res, err := c.reg.VerifySetting(s, all)
		switch res {
		case setting.VerifyError:
			return res, err
		case setting.VerifyNormalizable:
			if result == setting.VerifySuccess {
				result, normErr = res, err
			}
		}
	}
	return result, normErr
}

// Verify reports the connection's first defect. Normalizable defects are
// not errors.
func (c *Connection) Verify() error {
	res, err := c.VerifyResult()
	if res == setting.VerifyError {
		return err
	}
	return nil
}

// Normalize fixes normalizable defects. It returns whether anything
// changed, or the error that verification reports before or after the
// fix.
func (c *Connection) Normalize() (bool, error) {
	res, err := c.VerifyResult()
	switch res {
	case setting.VerifySuccess:
		return false, nil
	case setting.VerifyError:
		return false, err
	}

	all := c.Settings()
	changed := false
	for _, s := range all {
		if n, ok := s.(setting.Normalizer); ok && n.Normalize(c.reg, all) {
			changed = true
		}
	}

	res, err = c.VerifyResult()
	if res != setting.VerifySuccess {
		if err == nil {
			err = setting.ErrVerify
		}
		return changed, fmt.Errorf("normalize: %w", err)
	}
	return changed, nil
}

// Compare reports whether both connections hold the same setting types and
// every pair compares equal under flags
func (c *Connection) Compare(other *Connection, flags setting.CompareFlags) bool {
	if other == nil || len(c.settings) != len(other.settings) {
		return false
	}
	for name, a := range c.settings {
		b, ok := other.settings[name]
		if !ok || !c.reg.Compare(a, b, flags) {
			return false
		}
	}
	return true
}

// Diff returns the differing properties per setting name. A setting
// present on one side only is listed with all its compared properties; a
// one-sided setting without any is listed with an empty result. Equal
// connections yield nil.
func (c *Connection) Diff(other *Connection, flags setting.CompareFlags) map[string]setting.DiffResult {
	var out map[string]setting.DiffResult
	add := func(name string, d setting.DiffResult, oneSided bool) {
		if d == nil && !oneSided {
			return
		}
		if out == nil {
			out = make(map[string]setting.DiffResult)
		}
		if d == nil {
			d = setting.DiffResult{}
		}
		out[name] = d
	}

	var theirs map[string]setting.Setting
	if other != nil {
		theirs = other.settings
	}
	for name, a := range c.settings {
		b := theirs[name]
		d := c.reg.Diff(a, b, flags, false)
		if b != nil {
			d = setting.MergeDiff(d, c.reg.Diff(b, a, flags, true))
		}
		add(name, d, b == nil)
	}
	for name, b := range theirs {
		if _, ok := c.settings[name]; ok {
			continue
		}
		add(name, c.reg.Diff(b, nil, flags, true), true)
	}
	return out
}

// ClearSecrets resets every secret in every setting
func (c *Connection) ClearSecrets() bool {
	changed := false
	for _, s := range c.settings {
		if c.reg.ClearSecrets(s) {
			changed = true
		}
	}
	return changed
}

// ClearSecretsWithFlags resets the secrets fn selects
func (c *Connection) ClearSecretsWithFlags(fn setting.SecretPredicate) bool {
	changed := false
	for _, s := range c.settings {
		if c.reg.ClearSecretsWithFlags(s, fn) {
			changed = true
		}
	}
	return changed
}

// UpdateSecrets applies secrets to the setting called settingName
func (c *Connection) UpdateSecrets(settingName string, secrets wire.Map) (setting.UpdateResult, error) {
	s := c.SettingByName(settingName)
	if s == nil {
		return setting.UpdateUnchanged, &setting.MissingSettingError{Name: settingName}
	}
	return c.reg.UpdateSecrets(s, secrets)
}

// UpdateAllSecrets applies the secrets of every setting named in w. Every
// named setting must be present before anything is applied.
func (c *Connection) UpdateAllSecrets(w wire.Connection) (setting.UpdateResult, error) {
	for _, name := range w.Names() {
		if c.SettingByName(name) == nil {
			return setting.UpdateUnchanged, &setting.MissingSettingError{Name: name}
		}
	}
	result := setting.UpdateUnchanged
	for _, name := range w.Names() {
		res, err := c.UpdateSecrets(name, w[name])
		if err != nil {
			return result, err
		}
		if res == setting.UpdateModified {
			result = res
		}
	}
	return result, nil
}

// NeedSecrets returns the first setting in priority order that still needs
// secrets, with the names of the secrets it needs as hints
func (c *Connection) NeedSecrets() (string, []string) {
	for _, s := range c.Settings() {
		if hints := c.reg.NeedSecrets(s); len(hints) > 0 {
			return c.reg.NameOf(s), hints
		}
	}
	return "", nil
}

// Duplicate returns a deep copy
func (c *Connection) Duplicate() (*Connection, error) {
	dup := New()
	dup.reg = c.reg
	for name, s := range c.settings {
		d, err := c.reg.Duplicate(s)
		if err != nil {
			return nil, fmt.Errorf("duplicate %s: %w", name, err)
		}
		dup.settings[name] = d
	}
	return dup, nil
}

// Dump renders every setting for debugging, secrets included
func (c *Connection) Dump() string {
	var b strings.Builder
	for _, s := range c.Settings() {
		b.WriteString(c.reg.Dump(s))
	}
	return b.String()
}
