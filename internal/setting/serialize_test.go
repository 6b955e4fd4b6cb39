package setting

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"connsettings/internal/wire"
)

func newWired() *testWired {
	return &testWired{
		Port:          "tp",
		MAC:           "aa:bb",
		MTU:           9000,
		Speed:         100,
		Password:      "hunter2",
		PasswordFlags: SecretFlagAgentOwned,
	}
}

func TestToWire(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		mode SerializeMode
		want wire.Map
	}{
		{
			name: "all",
			mode: SerializeAll,
			want: wire.Map{
				"port":           wire.String("tp"),
				"mac":            wire.Bytes([]byte("AA:BB")),
				"mtu":            wire.Uint32(9000),
				"password":       wire.String("hunter2"),
				"password-flags": wire.Uint32(uint32(SecretFlagAgentOwned)),
			},
		},
		{
			name: "no secrets",
			mode: SerializeNoSecrets,
			want: wire.Map{
				"port":           wire.String("tp"),
				"mac":            wire.Bytes([]byte("AA:BB")),
				"mtu":            wire.Uint32(9000),
				"password-flags": wire.Uint32(uint32(SecretFlagAgentOwned)),
			},
		},
		{
			name: "only secrets",
			mode: SerializeOnlySecrets,
			want: wire.Map{"password": wire.String("hunter2")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ToWire(newWired(), nil, tt.mode)
			assertNoError(t, err)
			if !wire.Equal(wire.Dict(got), wire.Dict(tt.want)) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToWire_OmitsDefaults(t *testing.T) {
	r := newTestRegistry(t)

	got, err := r.ToWire(wiredClass.New(), nil, SerializeAll)
	assertNoError(t, err)
	if len(got) != 0 {
		t.Errorf("default setting serialized to %v", got)
	}

	// Wire-only property without a connection is omitted by its get hook
	got, err = r.ToWire(&testVirtual{}, nil, SerializeAll)
	assertNoError(t, err)
	if _, ok := got["interface-name"]; ok {
		t.Error("interface-name should be omitted without a connection")
	}
}

func TestFromWire_RoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	orig := newWired()

	m, err := r.ToWire(orig, nil, SerializeAll)
	assertNoError(t, err)

	s, err := r.FromWire("wired", m, nil)
	assertNoError(t, err)

	got := s.(*testWired)
	// speed is read-only and never leaves the setting
	got.Speed = orig.Speed
	// mac comes back in its wire form
	if got.MAC != "AA:BB" {
		t.Errorf("mac = %q", got.MAC)
	}
	if !r.Compare(orig, got, CompareExact) {
		t.Errorf("round trip differs:\n%s\n%s", r.Dump(orig), r.Dump(got))
	}
}

func TestFromWire_UnknownKeysSkipped(t *testing.T) {
	r := newTestRegistry(t)
	var buf bytes.Buffer
	r.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	s, err := r.FromWire("ppp", wire.Map{
		"mru":   wire.Uint32(1400),
		"bogus": wire.String("x"),
	}, nil)
	assertNoError(t, err)

	if s.(*testPPP).MRU != 1400 {
		t.Errorf("mru = %d", s.(*testPPP).MRU)
	}
	if !strings.Contains(buf.String(), "property=bogus") {
		t.Errorf("expected warning about bogus key, got %q", buf.String())
	}
}

func TestFromWire_Errors(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name    string
		setting string
		m       wire.Map
		target  error
		domain  string
	}{
		{"set hook rejects", "wired", wire.Map{"port": wire.String("bad")}, ErrInvalidProperty, "test-wired-error"},
		{"kind mismatch", "ppp", wire.Map{"mru": wire.String("1400")}, ErrPropertyTypeMismatch, "test-ppp-error"},
		{"transform input mismatch", "wired", wire.Map{"mac": wire.String("aa")}, ErrPropertyTypeMismatch, "test-wired-error"},
		{"invalid flags", "wired", wire.Map{"password-flags": wire.Uint32(64)}, ErrInvalidSecretFlags, "test-wired-error"},
		{"wire-only set hook", "virtual", wire.Map{"interface-name": wire.String("a b")}, ErrInvalidProperty, "test-virtual-error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := r.FromWire(tt.setting, tt.m, nil)
			if s != nil {
				t.Error("partially built setting should be discarded")
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			var pe *PropertyError
			if !errors.As(err, &pe) || pe.Domain != tt.domain {
				t.Errorf("expected error in domain %q, got %#v", tt.domain, err)
			}
		})
	}

	if _, err := r.FromWire("missing", wire.Map{}, nil); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("expected ErrUnknownSetting, got %v", err)
	}
}

func TestFromWire_ReadOnlyIgnored(t *testing.T) {
	r := newTestRegistry(t)

	s, err := r.FromWire("wired", wire.Map{
		"name":  wire.String("other"),
		"speed": wire.Uint32(10),
	}, nil)
	assertNoError(t, err)
	if s.(*testWired).Speed != 0 {
		t.Errorf("read-only speed was assigned: %d", s.(*testWired).Speed)
	}
	if s.(*testWired).MTU != 1500 {
		t.Errorf("mtu = %d, want default 1500", s.(*testWired).MTU)
	}
}
