package connection

import (
	"errors"
	"strings"
	"testing"

	"connsettings/internal/setting"
	"connsettings/internal/settings"
	"connsettings/internal/wire"
)

const testUUID = "0f6c2a4e-1d3b-4c5a-8e7f-9a0b1c2d3e4f"

func newWiredConnection() *Connection {
	con := settings.NewConnection()
	con.ID = "office"
	con.UUID = testUUID
	con.Type = settings.WiredSettingName

	ip := settings.NewIPv4()
	ip.Method = settings.IPv4MethodAuto

	return FromSettings(con, settings.NewWired(), ip)
}

func newWifiConnection() *Connection {
	con := settings.NewConnection()
	con.ID = "home"
	con.UUID = testUUID
	con.Type = settings.WirelessSettingName

	wl := settings.NewWireless()
	wl.SSID = []byte("home-net")

	sec := settings.NewWirelessSecurity()
	sec.KeyMgmt = "wpa-psk"
	sec.PSK = "correct horse battery"

	return FromSettings(con, wl, sec)
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSettingsOrder(t *testing.T) {
	c := newWifiConnection()
	var names []string
	for _, s := range c.Settings() {
		names = append(names, setting.Default.NameOf(s))
	}
	want := "connection,802-11-wireless,802-11-wireless-security"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestAddRemoveSetting(t *testing.T) {
	c := newWiredConnection()
	w := settings.NewWired()
	w.MTU = 1400
	c.AddSetting(w)
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3 after replacing", c.Len())
	}
	if c.SettingByName(settings.WiredSettingName) != setting.Setting(w) {
		t.Error("AddSetting did not replace the existing setting")
	}
	if !c.RemoveSetting(settings.WiredSettingName) || c.RemoveSetting(settings.WiredSettingName) {
		t.Error("RemoveSetting")
	}
	if c.SettingByName(settings.WiredSettingName) != nil {
		t.Error("removed setting still present")
	}
}

func TestAccessors(t *testing.T) {
	c := newWiredConnection()
	if c.UUID() != testUUID || c.ID() != "office" || c.Type() != settings.WiredSettingName {
		t.Errorf("accessors = %q %q %q", c.UUID(), c.ID(), c.Type())
	}
	if !c.IsType(settings.WiredSettingName) || c.IsType("") {
		t.Error("IsType")
	}
	if _, ok := c.BaseType().(*settings.Wired); !ok {
		t.Errorf("BaseType = %T", c.BaseType())
	}

	empty := New()
	if empty.UUID() != "" || empty.BaseType() != nil || empty.ConnectionSetting() != nil {
		t.Error("empty connection accessors")
	}
}

func TestWireRoundTrip(t *testing.T) {
	c := newWifiConnection()
	w, err := c.ToWire(setting.SerializeAll)
	assertNoError(t, err)

	if _, ok := w[settings.WirelessSecuritySettingName]["psk"]; !ok {
		t.Error("psk missing from full serialization")
	}
	if got := w[settings.WirelessSettingName]["security"].AsString(); got != settings.WirelessSecuritySettingName {
		t.Errorf("legacy security pointer = %q", got)
	}

	back, err := FromWire(w)
	assertNoError(t, err)
	if !c.Compare(back, setting.CompareExact) {
		t.Errorf("round trip differs:\n%s\n%s", c.Dump(), back.Dump())
	}
	if d := c.Diff(back, setting.CompareExact); d != nil {
		t.Errorf("Diff = %v", d)
	}
}

func TestToWire_Modes(t *testing.T) {
	c := newWifiConnection()

	w, err := c.ToWire(setting.SerializeNoSecrets)
	assertNoError(t, err)
	if _, ok := w[settings.WirelessSecuritySettingName]["psk"]; ok {
		t.Error("psk present without secrets")
	}

	w, err = c.ToWire(setting.SerializeOnlySecrets)
	assertNoError(t, err)
	if len(w) != 1 {
		t.Errorf("only-secrets settings = %v", w.Names())
	}
}

func TestFromWire_UnknownSetting(t *testing.T) {
	_, err := FromWire(wire.Connection{"token-ring": wire.Map{}})
	if !errors.Is(err, setting.ErrUnknownSetting) {
		t.Errorf("error = %v, want ErrUnknownSetting", err)
	}
}

func TestVerify(t *testing.T) {
	c := newWiredConnection()
	assertNoError(t, c.Verify())

	c.RemoveSetting(settings.ConnectionSettingName)
	var missing *setting.MissingSettingError
	if err := c.Verify(); !errors.As(err, &missing) || !missing.IsConnectionSetting() {
		t.Errorf("Verify without connection setting = %v", err)
	}

	c = newWiredConnection()
	c.RemoveSetting(settings.WiredSettingName)
	if err := c.Verify(); !errors.Is(err, setting.ErrMissingSetting) {
		t.Errorf("Verify without base setting = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	c := newWiredConnection()
	c.ConnectionSetting().Type = ""
	c.SettingByName(settings.IPv4SettingName).(*settings.IPv4).Method = ""

	res, _ := c.VerifyResult()
	if res != setting.VerifyNormalizable {
		t.Fatalf("VerifyResult = %v, want normalizable", res)
	}
	assertNoError(t, c.Verify())

	changed, err := c.Normalize()
	assertNoError(t, err)
	if !changed {
		t.Error("Normalize reported no change")
	}
	if c.Type() != settings.WiredSettingName {
		t.Errorf("type = %q", c.Type())
	}
	if res, err := c.VerifyResult(); res != setting.VerifySuccess {
		t.Errorf("after Normalize: %v %v", res, err)
	}

	changed, err = c.Normalize()
	if changed || err != nil {
		t.Errorf("second Normalize = %v, %v", changed, err)
	}
}

func TestNormalize_Error(t *testing.T) {
	c := newWiredConnection()
	c.ConnectionSetting().ID = ""
	if _, err := c.Normalize(); !errors.Is(err, setting.ErrMissingProperty) {
		t.Errorf("Normalize = %v", err)
	}
}

func TestCompareAndDiff(t *testing.T) {
	a := newWiredConnection()
	b := newWiredConnection()
	b.SettingByName(settings.WiredSettingName).(*settings.Wired).MTU = 9000

	if a.Compare(b, setting.CompareExact) {
		t.Error("different MTU compared equal")
	}
	if !a.Compare(b, setting.CompareFuzzy) {
		t.Error("fuzzy compare did not ignore MTU")
	}

	d := a.Diff(b, setting.CompareExact)
	if got := d[settings.WiredSettingName]["mtu"]; got != setting.DiffInB {
		t.Errorf("mtu diff = %v, want InB", got)
	}
	if len(d) != 1 {
		t.Errorf("Diff = %v", d)
	}

	// b now lacks ipv4 entirely
	b.RemoveSetting(settings.IPv4SettingName)
	d = a.Diff(b, setting.CompareExact)
	if got := d[settings.IPv4SettingName]["method"]; got != setting.DiffInA {
		t.Errorf("one-sided ipv4 diff = %v", d[settings.IPv4SettingName])
	}
	d = b.Diff(a, setting.CompareExact)
	if got := d[settings.IPv4SettingName]["method"]; got != setting.DiffInB {
		t.Errorf("reverse one-sided ipv4 diff = %v", d[settings.IPv4SettingName])
	}
	if a.Compare(b, setting.CompareExact) {
		t.Error("connections with different settings compared equal")
	}
}

func TestSecrets(t *testing.T) {
	c := newWifiConnection()
	if name, hints := c.NeedSecrets(); name != "" {
		t.Errorf("NeedSecrets = %s %v", name, hints)
	}

	if !c.ClearSecrets() {
		t.Fatal("ClearSecrets reported no change")
	}
	name, hints := c.NeedSecrets()
	if name != settings.WirelessSecuritySettingName || len(hints) != 1 || hints[0] != "psk" {
		t.Errorf("NeedSecrets = %s %v", name, hints)
	}

	res, err := c.UpdateSecrets(settings.WirelessSecuritySettingName, wire.Map{"psk": wire.String("another secret")})
	assertNoError(t, err)
	if res != setting.UpdateModified {
		t.Errorf("UpdateSecrets = %v", res)
	}

	if _, err := c.UpdateSecrets(settings.VPNSettingName, wire.Map{}); !errors.Is(err, setting.ErrMissingSetting) {
		t.Errorf("UpdateSecrets on absent setting = %v", err)
	}
	_, err = c.UpdateAllSecrets(wire.Connection{
		settings.WirelessSecuritySettingName: {"psk": wire.String("third secret")},
		settings.VPNSettingName:              {},
	})
	if !errors.Is(err, setting.ErrMissingSetting) {
		t.Errorf("UpdateAllSecrets = %v", err)
	}
	if got := c.SettingByName(settings.WirelessSecuritySettingName).(*settings.WirelessSecurity).PSK; got != "another secret" {
		t.Errorf("psk changed by a rejected batch: %q", got)
	}

	sec := c.SettingByName(settings.WirelessSecuritySettingName).(*settings.WirelessSecurity)
	sec.PSKFlags = setting.SecretFlagNotSaved
	changed := c.ClearSecretsWithFlags(func(_ setting.Setting, _ string, f setting.SecretFlags) bool {
		return f.Has(setting.SecretFlagNotSaved)
	})
	if !changed || sec.PSK != "" {
		t.Errorf("ClearSecretsWithFlags = %v, psk %q", changed, sec.PSK)
	}
}

func TestDuplicate(t *testing.T) {
	c := newWifiConnection()
	dup, err := c.Duplicate()
	assertNoError(t, err)
	if !c.Compare(dup, setting.CompareExact) {
		t.Fatal("duplicate differs")
	}
	dup.SettingByName(settings.WirelessSettingName).(*settings.Wireless).SSID[0] = 'X'
	if string(c.SettingByName(settings.WirelessSettingName).(*settings.Wireless).SSID) != "home-net" {
		t.Error("duplicate shares the ssid buffer")
	}
}

func TestDump(t *testing.T) {
	out := newWiredConnection().Dump()
	for _, want := range []string{"connection\n", "\tid : \"office\" (s)", "802-3-ethernet\n", "\tauto-negotiate : true (sd)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump missing %q:\n%s", want, out)
		}
	}
}
