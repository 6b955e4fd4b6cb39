package settings

import (
	"errors"
	"strings"
	"testing"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

const testUUID = "5b3f6d2a-8c34-4a8e-9d7b-2f1e0c9a6b41"

// testConn is the minimal aggregate the wire hooks need
type testConn []setting.Setting

func (c testConn) SettingByName(name string) setting.Setting {
	return setting.Default.FindInList(c, name)
}

func newWiredConnection() (*Connection, *Wired) {
	con := NewConnection()
	con.ID = "office"
	con.UUID = testUUID
	con.Type = WiredSettingName
	return con, NewWired()
}

func TestRegisterAll(t *testing.T) {
	want := map[string]uint32{
		ConnectionSettingName:       0,
		WiredSettingName:            1,
		WirelessSettingName:         1,
		BondSettingName:             1,
		BridgeSettingName:           1,
		TeamSettingName:             1,
		VLANSettingName:             1,
		IPTunnelSettingName:         1,
		VPNSettingName:              1,
		WirelessSecuritySettingName: 2,
		BridgePortSettingName:       3,
		TeamPortSettingName:         3,
		PPPSettingName:              3,
		PPPoESettingName:            3,
		IPv4SettingName:             4,
	}
	for name, prio := range want {
		info, ok := setting.Default.LookupByName(name)
		if !ok {
			t.Errorf("%s not registered", name)
			continue
		}
		if info.Priority != prio {
			t.Errorf("%s priority = %d, want %d", name, info.Priority, prio)
		}
	}

	// Registering the same classes again is a no-op
	RegisterAll(setting.Default)

	r := setting.NewRegistry()
	RegisterAll(r)
	if got := len(r.Types()); got != len(want) {
		t.Errorf("fresh registry has %d types, want %d", got, len(want))
	}
}

func TestBaseTypes(t *testing.T) {
	tests := []struct {
		setting setting.Setting
		base    bool
	}{
		{NewWired(), true},
		{NewVPN(), true},
		{NewBond(), true},
		{NewPPPoE(), true},
		{NewPPP(), false},
		{NewWirelessSecurity(), false},
		{NewConnection(), false},
		{NewIPv4(), false},
	}
	for _, tt := range tests {
		name := setting.Default.NameOf(tt.setting)
		t.Run(name, func(t *testing.T) {
			if got := setting.Default.IsBase(tt.setting); got != tt.base {
				t.Errorf("IsBase = %v, want %v", got, tt.base)
			}
		})
	}
}

func TestConnectionVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Connection) []setting.Setting
		want    setting.VerifyResult
		wantErr error
		errText string
	}{
		{
			name:   "valid",
			mutate: func(c *Connection) []setting.Setting { return []setting.Setting{c, NewWired()} },
			want:   setting.VerifySuccess,
		},
		{
			name: "missing id",
			mutate: func(c *Connection) []setting.Setting {
				c.ID = ""
				return []setting.Setting{c, NewWired()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrMissingProperty,
			errText: "connection.id: property is missing",
		},
		{
			name: "bad uuid",
			mutate: func(c *Connection) []setting.Setting {
				c.UUID = "not-a-uuid"
				return []setting.Setting{c, NewWired()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrInvalidProperty,
		},
		{
			name: "bad interface name",
			mutate: func(c *Connection) []setting.Setting {
				c.InterfaceName = "eth/0"
				return []setting.Setting{c, NewWired()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrInvalidProperty,
		},
		{
			name: "type detectable",
			mutate: func(c *Connection) []setting.Setting {
				c.Type = ""
				return []setting.Setting{c, NewWired(), NewIPv4()}
			},
			want: setting.VerifyNormalizable,
		},
		{
			name: "type ambiguous",
			mutate: func(c *Connection) []setting.Setting {
				c.Type = ""
				return []setting.Setting{c, NewWired(), NewVPN()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrMissingProperty,
		},
		{
			name: "type not a base type",
			mutate: func(c *Connection) []setting.Setting {
				c.Type = PPPSettingName
				return []setting.Setting{c, NewPPP()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrInvalidProperty,
		},
		{
			name: "type unknown",
			mutate: func(c *Connection) []setting.Setting {
				c.Type = "token-ring"
				return []setting.Setting{c}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrInvalidProperty,
		},
		{
			name: "type setting absent",
			mutate: func(c *Connection) []setting.Setting {
				return []setting.Setting{c}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrMissingSetting,
			errText: "connection.type: missing '802-3-ethernet' setting",
		},
		{
			name: "bridge port without port setting",
			mutate: func(c *Connection) []setting.Setting {
				c.Master, c.SlaveType = "br0", BridgeSettingName
				return []setting.Setting{c, NewWired()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrMissingSetting,
		},
		{
			name: "bond port needs no port setting",
			mutate: func(c *Connection) []setting.Setting {
				c.Master, c.SlaveType = "bond0", BondSettingName
				return []setting.Setting{c, NewWired()}
			},
			want: setting.VerifySuccess,
		},
		{
			name: "slave type without master",
			mutate: func(c *Connection) []setting.Setting {
				c.SlaveType = TeamSettingName
				return []setting.Setting{c, NewWired(), NewTeamPort()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrMissingProperty,
		},
		{
			name: "unknown slave type",
			mutate: func(c *Connection) []setting.Setting {
				c.Master, c.SlaveType = "x", "hub"
				return []setting.Setting{c, NewWired()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrInvalidProperty,
		},
		{
			name: "slave type detectable",
			mutate: func(c *Connection) []setting.Setting {
				c.Master = "br0"
				return []setting.Setting{c, NewWired(), NewBridgePort()}
			},
			want: setting.VerifyNormalizable,
		},
		{
			name: "master without any port setting",
			mutate: func(c *Connection) []setting.Setting {
				c.Master = "br0"
				return []setting.Setting{c, NewWired()}
			},
			want:    setting.VerifyError,
			wantErr: setting.ErrMissingProperty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			con, _ := newWiredConnection()
			all := tt.mutate(con)
			got, err := setting.Default.VerifySetting(con, all)
			if got != tt.want {
				t.Fatalf("VerifySetting = %v (%v), want %v", got, err, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.errText != "" && (err == nil || err.Error() != tt.errText) {
				t.Errorf("error text = %v, want %q", err, tt.errText)
			}
		})
	}
}

func TestConnectionNormalize(t *testing.T) {
	con, wired := newWiredConnection()
	con.Type = ""
	con.Master = "br0"
	all := []setting.Setting{con, wired, NewBridgePort()}

	if !con.Normalize(setting.Default, all) {
		t.Fatal("Normalize reported no change")
	}
	if con.Type != WiredSettingName {
		t.Errorf("type = %q, want %q", con.Type, WiredSettingName)
	}
	if con.SlaveType != BridgeSettingName {
		t.Errorf("slave-type = %q, want %q", con.SlaveType, BridgeSettingName)
	}
	if res, err := setting.Default.VerifySetting(con, all); res != setting.VerifySuccess {
		t.Errorf("after Normalize VerifySetting = %v, %v", res, err)
	}
	if con.Normalize(setting.Default, all) {
		t.Error("second Normalize reported a change")
	}
}

func TestConnectionVerifyUsesRegistry(t *testing.T) {
	r := setting.NewRegistry()
	r.MustRegister(connectionClass)
	r.MustRegister(wiredClass)

	con, _ := newWiredConnection()
	con.Type = WirelessSettingName
	all := []setting.Setting{con, NewWireless()}

	if err := setting.Default.Verify(con, all); err != nil {
		t.Fatalf("default registry Verify = %v", err)
	}
	if err := r.Verify(con, all); !errors.Is(err, setting.ErrInvalidProperty) {
		t.Errorf("Verify without wireless registered = %v, want ErrInvalidProperty", err)
	}

	con.Type = ""
	if con.Normalize(r, all) {
		t.Error("Normalize found a base type the registry does not know")
	}
	if !con.Normalize(setting.Default, all) || con.Type != WirelessSettingName {
		t.Errorf("Normalize with default registry set type %q", con.Type)
	}
}

func TestConnectionCompareIgnoreID(t *testing.T) {
	a, _ := newWiredConnection()
	b, _ := newWiredConnection()
	b.ID = "renamed"

	if setting.Default.Compare(a, b, setting.CompareExact) {
		t.Error("connections with different ids compared equal")
	}
	if !setting.Default.Compare(a, b, setting.CompareIgnoreID) {
		t.Error("CompareIgnoreID did not ignore the id")
	}
	if d := setting.Default.Diff(a, b, setting.CompareIgnoreID, false); d != nil {
		t.Errorf("Diff with CompareIgnoreID = %v, want nil", d)
	}
}

func TestWiredMACTransform(t *testing.T) {
	w := NewWired()
	w.MACAddress = "aa:bb:cc:dd:ee:ff"
	w.MTU = 9000

	m, err := setting.Default.ToWire(w, nil, setting.SerializeAll)
	if err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	mac := m["mac-address"]
	if mac.Kind() != wire.KindBytes || len(mac.AsBytes()) != 6 {
		t.Fatalf("mac-address on the wire = %v", mac)
	}
	if _, ok := m["auto-negotiate"]; ok {
		t.Error("default auto-negotiate was serialized")
	}

	got, err := setting.Default.FromWire(WiredSettingName, m, nil)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	gw := got.(*Wired)
	if gw.MACAddress != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("mac-address = %q", gw.MACAddress)
	}
	if !setting.Default.Compare(w, gw, setting.CompareExact) {
		t.Error("round trip changed the setting")
	}
}

func TestWiredMACFromWire_BadLength(t *testing.T) {
	m := wire.Map{"mac-address": wire.Bytes([]byte{1, 2, 3})}
	_, err := setting.Default.FromWire(WiredSettingName, m, nil)
	if !errors.Is(err, setting.ErrInvalidProperty) {
		t.Fatalf("error = %v, want ErrInvalidProperty", err)
	}
}

func TestWiredVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *Wired)
		ok     bool
	}{
		{"defaults", func(w *Wired) {}, true},
		{"port", func(w *Wired) { w.Port = "mii" }, true},
		{"bad port", func(w *Wired) { w.Port = "usb" }, false},
		{"bad duplex", func(w *Wired) { w.Duplex = "both" }, false},
		{"bad mac", func(w *Wired) { w.MACAddress = "00:11" }, false},
		{"s390 option", func(w *Wired) { w.S390Options = map[string]string{"portno": "0"} }, true},
		{"unknown s390 option", func(w *Wired) { w.S390Options = map[string]string{"foo": "1"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWired()
			tt.mutate(w)
			err := setting.Default.Verify(w, nil)
			if (err == nil) != tt.ok {
				t.Errorf("Verify = %v, ok want %v", err, tt.ok)
			}
		})
	}
}

func TestVirtualInterfaceName(t *testing.T) {
	con := NewConnection()
	con.ID, con.UUID, con.Type = "bond", testUUID, BondSettingName
	con.InterfaceName = "bond0"
	bond := NewBond()
	conn := testConn{con, bond}

	m, err := setting.Default.ToWire(bond, conn, setting.SerializeAll)
	if err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	if got := m["interface-name"].AsString(); got != "bond0" {
		t.Errorf("interface-name = %q, want bond0", got)
	}

	m, _ = setting.Default.ToWire(bond, nil, setting.SerializeAll)
	if _, ok := m["interface-name"]; ok {
		t.Error("interface-name emitted without a connection")
	}

	if _, err := setting.Default.FromWire(BondSettingName, wire.Map{"interface-name": wire.String("bond1")}, nil); err != nil {
		t.Errorf("FromWire valid name: %v", err)
	}
	_, err = setting.Default.FromWire(BondSettingName, wire.Map{"interface-name": wire.String("bad name")}, nil)
	var pe *setting.PropertyError
	if !errors.As(err, &pe) || !errors.Is(err, setting.ErrInvalidProperty) {
		t.Fatalf("error = %v, want invalid property", err)
	}
	if pe.Domain != errorDomain(BondSettingName) {
		t.Errorf("error domain = %q, want bond's", pe.Domain)
	}

	if res, _ := setting.Default.VerifySetting(bond, []setting.Setting{con, bond}); res != setting.VerifySuccess {
		t.Errorf("bond with interface name: %v", res)
	}
	con.InterfaceName = ""
	if res, _ := setting.Default.VerifySetting(bond, []setting.Setting{con, bond}); res != setting.VerifyError {
		t.Errorf("bond without interface name: %v", res)
	}
}

func TestWirelessSecurityLegacyPointer(t *testing.T) {
	wl := NewWireless()
	wl.SSID = []byte("home")
	sec := NewWirelessSecurity()
	sec.KeyMgmt = "wpa-psk"

	m, _ := setting.Default.ToWire(wl, testConn{wl, sec}, setting.SerializeAll)
	if got := m["security"].AsString(); got != WirelessSecuritySettingName {
		t.Errorf("security = %q", got)
	}

	in := wire.Connection{WirelessSettingName: m}
	if _, err := setting.Default.FromWire(WirelessSettingName, m, in); !errors.Is(err, setting.ErrMissingSetting) {
		t.Errorf("FromWire without the security setting: %v", err)
	}
	in[WirelessSecuritySettingName] = wire.Map{"key-mgmt": wire.String("wpa-psk")}
	if _, err := setting.Default.FromWire(WirelessSettingName, m, in); err != nil {
		t.Errorf("FromWire: %v", err)
	}
}

func TestWirelessVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *Wireless)
		ok     bool
	}{
		{"ssid", func(w *Wireless) {}, true},
		{"no ssid", func(w *Wireless) { w.SSID = nil }, false},
		{"long ssid", func(w *Wireless) { w.SSID = []byte(strings.Repeat("x", 33)) }, false},
		{"bg channel", func(w *Wireless) { w.Band, w.Channel = "bg", 11 }, true},
		{"bg channel out of range", func(w *Wireless) { w.Band, w.Channel = "bg", 15 }, false},
		{"a channel", func(w *Wireless) { w.Band, w.Channel = "a", 36 }, true},
		{"channel without band", func(w *Wireless) { w.Channel = 6 }, false},
		{"bad mode", func(w *Wireless) { w.Mode = "mesh" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWireless()
			w.SSID = []byte("home")
			tt.mutate(w)
			err := setting.Default.Verify(w, nil)
			if (err == nil) != tt.ok {
				t.Errorf("Verify = %v, ok want %v", err, tt.ok)
			}
		})
	}
}

func TestWirelessSeenBSSIDs(t *testing.T) {
	w := NewWireless()
	if !w.AddSeenBSSID("00:11:22:aa:bb:cc") {
		t.Fatal("first add reported duplicate")
	}
	if w.AddSeenBSSID("00:11:22:AA:BB:CC") {
		t.Error("same BSSID in other case added twice")
	}
	if w.AddSeenBSSID("junk") {
		t.Error("invalid BSSID accepted")
	}
	if len(w.SeenBSSIDs) != 1 {
		t.Errorf("seen = %v", w.SeenBSSIDs)
	}
}

func TestWirelessSecurity(t *testing.T) {
	all := []setting.Setting{NewWireless()}
	tests := []struct {
		name   string
		mutate func(s *WirelessSecurity)
		ok     bool
		need   []string
	}{
		{"psk missing", func(s *WirelessSecurity) { s.KeyMgmt = "wpa-psk" }, true, []string{"psk"}},
		{"psk set", func(s *WirelessSecurity) { s.KeyMgmt, s.PSK = "wpa-psk", "correct horse" }, true, nil},
		{"psk hex", func(s *WirelessSecurity) { s.KeyMgmt, s.PSK = "wpa-psk", strings.Repeat("ab", 32) }, true, nil},
		{"psk short", func(s *WirelessSecurity) { s.KeyMgmt, s.PSK = "wpa-psk", "short" }, false, []string{"psk"}},
		{"psk not required", func(s *WirelessSecurity) {
			s.KeyMgmt, s.PSKFlags = "wpa-psk", setting.SecretFlagNotRequired
		}, true, nil},
		{"wep", func(s *WirelessSecurity) { s.KeyMgmt = "none" }, true, []string{"wep-key0"}},
		{"wep key", func(s *WirelessSecurity) { s.KeyMgmt, s.WEPKey0 = "none", "0123456789" }, true, nil},
		{"leap", func(s *WirelessSecurity) {
			s.KeyMgmt, s.AuthAlg, s.LEAPUsername = "ieee8021x", "leap", "bob"
		}, true, []string{"leap-password"}},
		{"leap without 802.1x", func(s *WirelessSecurity) { s.KeyMgmt, s.AuthAlg = "wpa-psk", "leap" }, false, nil},
		{"no key mgmt", func(s *WirelessSecurity) {}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWirelessSecurity()
			tt.mutate(s)
			err := setting.Default.Verify(s, all)
			if (err == nil) != tt.ok {
				t.Errorf("Verify = %v, ok want %v", err, tt.ok)
			}
			if !tt.ok {
				return
			}
			need := setting.Default.NeedSecrets(s)
			if strings.Join(need, ",") != strings.Join(tt.need, ",") {
				t.Errorf("NeedSecrets = %v, want %v", need, tt.need)
			}
		})
	}

	if err := setting.Default.Verify(NewWirelessSecurity(), nil); !errors.Is(err, setting.ErrMissingSetting) {
		t.Errorf("security without wireless: %v", err)
	}
}

func TestWirelessSecurityFlagsOnWire(t *testing.T) {
	s := NewWirelessSecurity()
	s.KeyMgmt, s.PSK, s.PSKFlags = "wpa-psk", "correct horse", setting.SecretFlagAgentOwned

	m, err := setting.Default.ToWire(s, nil, setting.SerializeNoSecrets)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m["psk"]; ok {
		t.Error("psk serialized without secrets")
	}
	if got := m["psk-flags"]; got.AsUint32() != uint32(setting.SecretFlagAgentOwned) {
		t.Errorf("psk-flags = %v", got)
	}

	only, _ := setting.Default.ToWire(s, nil, setting.SerializeOnlySecrets)
	if len(only) != 1 || only["psk"].AsString() != "correct horse" {
		t.Errorf("only secrets = %v", only)
	}
}

func TestBondOptions(t *testing.T) {
	b := NewBond()
	if v, _ := b.Option(BondOptionMode); v != "balance-rr" {
		t.Errorf("default mode = %q", v)
	}
	if !b.SetOption(BondOptionMIIMon, "100") {
		t.Error("miimon rejected")
	}
	if b.SetOption(BondOptionMIIMon, "soon") {
		t.Error("non-numeric miimon accepted")
	}
	if b.SetOption("frobnicate", "1") {
		t.Error("unknown option accepted")
	}
	if !b.RemoveOption(BondOptionMIIMon) || b.RemoveOption(BondOptionMIIMon) {
		t.Error("RemoveOption")
	}

	m, _ := setting.Default.ToWire(b, nil, setting.SerializeAll)
	if _, ok := m["options"]; ok {
		t.Error("default options serialized")
	}

	con := NewConnection()
	con.InterfaceName = "bond0"
	all := []setting.Setting{con, b}
	b.Options[BondOptionMIIMon] = "100"
	b.Options[BondOptionARPInterval] = "100"
	if err := setting.Default.Verify(b, all); !errors.Is(err, setting.ErrInvalidProperty) {
		t.Errorf("miimon with arp_interval: %v", err)
	}
	delete(b.Options, BondOptionMIIMon)
	if err := setting.Default.Verify(b, all); err == nil {
		t.Error("arp_interval without targets accepted")
	}
	b.Options[BondOptionARPIPTarget] = "192.0.2.1"
	if err := setting.Default.Verify(b, all); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestBridgeVerify(t *testing.T) {
	con := NewConnection()
	con.InterfaceName = "br0"
	all := []setting.Setting{con}

	b := NewBridge()
	if err := setting.Default.Verify(b, all); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	b.ForwardDelay = 31
	if err := setting.Default.Verify(b, all); err == nil || !strings.Contains(err.Error(), "bridge.forward-delay") {
		t.Errorf("forward-delay out of range: %v", err)
	}

	p := NewBridgePort()
	p.Priority = 64
	if err := setting.Default.Verify(p, nil); !errors.Is(err, setting.ErrInvalidProperty) {
		t.Errorf("port priority out of range: %v", err)
	}
}

func TestTeamConfig(t *testing.T) {
	con := NewConnection()
	con.InterfaceName = "team0"
	all := []setting.Setting{con}

	team := NewTeam()
	team.Config = `{"runner": {"name": "activebackup"}}`
	if err := setting.Default.Verify(team, all); err != nil {
		t.Errorf("valid config: %v", err)
	}
	team.Config = `{"runner":`
	if err := setting.Default.Verify(team, all); err == nil {
		t.Error("truncated config accepted")
	}
	port := NewTeamPort()
	port.Config = "[]"
	if err := setting.Default.Verify(port, nil); err != nil {
		t.Errorf("port config: %v", err)
	}
}

func TestVLANVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *VLAN)
		ok     bool
	}{
		{"parent name", func(v *VLAN) {}, true},
		{"parent uuid", func(v *VLAN) { v.Parent = testUUID }, true},
		{"no parent", func(v *VLAN) { v.Parent = "" }, false},
		{"id too large", func(v *VLAN) { v.ID = 4095 }, false},
		{"bad flags", func(v *VLAN) { v.Flags = 8 }, false},
		{"priority map", func(v *VLAN) { v.IngressPriorityMap = []string{"7:3"}; v.EgressPriorityMap = []string{"12:7"} }, true},
		{"ingress out of range", func(v *VLAN) { v.IngressPriorityMap = []string{"8:3"} }, false},
		{"malformed map", func(v *VLAN) { v.EgressPriorityMap = []string{"3"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVLAN()
			v.Parent, v.ID = "eth0", 10
			tt.mutate(v)
			err := setting.Default.Verify(v, nil)
			if (err == nil) != tt.ok {
				t.Errorf("Verify = %v, ok want %v", err, tt.ok)
			}
		})
	}
}

func TestPPPVerify(t *testing.T) {
	p := NewPPP()
	if err := setting.Default.Verify(p, nil); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	p.MRU = 64
	if err := setting.Default.Verify(p, nil); err == nil {
		t.Error("mru below range accepted")
	}
	p.MRU = 1500
	p.LCPEchoInterval = 30
	if err := setting.Default.Verify(p, nil); err == nil || !strings.Contains(err.Error(), "lcp-echo-interval") {
		t.Errorf("interval without failure: %v", err)
	}
	p.LCPEchoFailure = 5
	if err := setting.Default.Verify(p, nil); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestPPPoE(t *testing.T) {
	p := NewPPPoE()
	if err := setting.Default.Verify(p, nil); !errors.Is(err, setting.ErrMissingProperty) {
		t.Errorf("missing username: %v", err)
	}
	p.Username = "dsl"
	if got := setting.Default.NeedSecrets(p); len(got) != 1 || got[0] != "password" {
		t.Errorf("NeedSecrets = %v", got)
	}
	res, err := setting.Default.UpdateSecrets(p, wire.Map{"password": wire.String("hunter2")})
	if err != nil || res != setting.UpdateModified {
		t.Fatalf("UpdateSecrets = %v, %v", res, err)
	}
	if got := setting.Default.NeedSecrets(p); got != nil {
		t.Errorf("NeedSecrets after update = %v", got)
	}
	p.Service = "isp"
	if err := setting.Default.Verify(p, nil); !errors.Is(err, setting.ErrMissingSetting) {
		t.Errorf("service without ethernet: %v", err)
	}
	if err := setting.Default.Verify(p, []setting.Setting{NewWired()}); err != nil {
		t.Errorf("Verify: %v", err)
	}
}
