package settings

import (
	"connsettings/internal/setting"
)

// classes lists every concrete type in priority order
var classes = []*setting.Class{
	connectionClass,
	wiredClass,
	wirelessClass,
	bondClass,
	bridgeClass,
	teamClass,
	vlanClass,
	ipTunnelClass,
	vpnClass,
	wirelessSecurityClass,
	bridgePortClass,
	teamPortClass,
	pppClass,
	pppoeClass,
	ipv4Class,
}

func init() {
	RegisterAll(setting.Default)
}

// RegisterAll registers every concrete type with r. Registering into a
// registry that already holds them is a no-op.
func RegisterAll(r *setting.Registry) {
	for _, c := range classes {
		r.MustRegister(c)
	}
}
