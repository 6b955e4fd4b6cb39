// Package settings holds the concrete setting types a connection is built
// from: the connection setting itself, hardware types (Ethernet, Wi-Fi,
// bond, bridge, team, VLAN, IP tunnel, VPN), hardware-auxiliary types
// (Wi-Fi security), pre-IP types (bridge/team ports, PPP, PPPoE) and IPv4
// configuration.
//
// Every type registers itself with setting.Default from init. Its property
// table, verify hook and secret requirements live next to the struct.
package settings
