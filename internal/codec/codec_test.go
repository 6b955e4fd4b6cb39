package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"connsettings/internal/connection"
	"connsettings/internal/setting"
	"connsettings/internal/settings"
)

func testConnection() *connection.Connection {
	con := settings.NewConnection()
	con.ID = "office"
	con.UUID = "9d1c3b6a-0e2f-4a7b-8c5d-1f2e3a4b5c6d"
	con.Type = settings.WiredSettingName
	con.Permissions = []string{"user:alice"}

	w := settings.NewWired()
	w.MACAddress = "52:54:00:12:34:56"
	w.MTU = 9000

	ip := settings.NewIPv4()
	ip.Method = settings.IPv4MethodManual
	ip.Addresses = []string{"192.0.2.10/24"}
	ip.RouteMetric = 100

	pppoe := settings.NewPPPoE()
	pppoe.Username = "dsl"
	pppoe.Password = "hunter2"
	pppoe.PasswordFlags = setting.SecretFlagAgentOwned

	return connection.FromSettings(con, w, ip, pppoe)
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			c, err := ForFormat(format)
			if err != nil {
				t.Fatal(err)
			}
			orig := testConnection()
			w, err := orig.ToWire(setting.SerializeAll)
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			if err := c.Export(w, &buf); err != nil {
				t.Fatalf("Export: %v", err)
			}
			parsed, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("Parse: %v\n%s", err, buf.String())
			}
			back, err := connection.FromWire(parsed)
			if err != nil {
				t.Fatalf("FromWire: %v", err)
			}
			if d := orig.Diff(back, setting.CompareExact); d != nil {
				t.Errorf("round trip diff = %v", d)
			}
		})
	}
}

func TestParse_SchemaGuided(t *testing.T) {
	doc := `
[connection]
id = "lab"
uuid = "9d1c3b6a-0e2f-4a7b-8c5d-1f2e3a4b5c6d"
type = "802-3-ethernet"
autoconnect = false

[802-3-ethernet]
mtu = 1500
mac-address = "52:54:00:AB:CD:EF"

[ipv4]
method = "manual"
addresses = [{ address = "10.0.0.2", prefix = 8 }]
`
	w, err := NewTOMLCodec().Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := connection.FromWire(w)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}

	wired := c.SettingByName(settings.WiredSettingName).(*settings.Wired)
	if wired.MTU != 1500 || wired.MACAddress != "52:54:00:AB:CD:EF" {
		t.Errorf("wired = %+v", wired)
	}
	if c.ConnectionSetting().Autoconnect {
		t.Error("autoconnect not decoded")
	}
	ip := c.SettingByName(settings.IPv4SettingName).(*settings.IPv4)
	if len(ip.Addresses) != 1 || ip.Addresses[0] != "10.0.0.2/8" {
		t.Errorf("addresses = %v", ip.Addresses)
	}
	if err := c.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		doc     string
		wantErr error
	}{
		{"unknown setting", "json", `{"token-ring": {}}`, setting.ErrUnknownSetting},
		{"kind mismatch", "json", `{"802-3-ethernet": {"mtu": "big"}}`, setting.ErrPropertyTypeMismatch},
		{"out of range", "yaml", "802-3-ethernet:\n  mtu: -1\n", setting.ErrPropertyTypeMismatch},
		{"uint32 overflow", "json", `{"802-3-ethernet": {"speed": 4294967296}}`, setting.ErrPropertyTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := ForFormat(tt.format)
			_, err := c.Parse(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewJSONCodec().Parse(strings.NewReader("{")); err == nil {
		t.Error("truncated JSON accepted")
	}
	if _, err := NewYAMLCodec().Parse(strings.NewReader("connection: [1")); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestParse_UnknownPropertyKept(t *testing.T) {
	w, err := NewYAMLCodec().Parse(strings.NewReader("ppp:\n  frobnicate: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := w[settings.PPPSettingName]["frobnicate"]; !got.IsValid() {
		t.Error("unknown property dropped by the codec")
	}
	// the engine skips it
	if _, err := connection.FromWire(w); err != nil {
		t.Errorf("FromWire: %v", err)
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path   string
		format string
	}{
		{"office.json", "json"},
		{"office.YAML", "yaml"},
		{"office.yml", "yaml"},
		{"office.toml", "toml"},
		{"office.nmconnection", "toml"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, err := ForPath(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if c.Format() != tt.format {
				t.Errorf("Format = %s, want %s", c.Format(), tt.format)
			}
			if !Supported(tt.path) {
				t.Error("Supported = false")
			}
		})
	}

	if _, err := ForPath("office.ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ForPath(.ini) = %v", err)
	}
	if _, err := ForFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ForFormat(xml) = %v", err)
	}
}
