package settings

// DefaultNamespace is the namespace holding every network configuration key.
const DefaultNamespace = "wifid"

// Keys in the network configuration namespace.
const (
	KeyHostname = "hostname" // string

	KeyHTTPEnabled = "http_on"   // int8, 0 or 1
	KeyHTTPPort    = "http_port" // uint16

	KeySTASSID       = "sta_ssid"    // string
	KeySTAPassphrase = "sta_pwd"     // string
	KeySTAIPMode     = "sta_ip_mode" // int8, IPModeDHCP or IPModeStatic
	KeySTAIP         = "sta_ip"      // int32, packed IPv4
	KeySTAGateway    = "sta_gw"      // int32, packed IPv4
	KeySTANetmask    = "sta_mk"      // int32, packed IPv4

	KeyAPSSID       = "ap_ssid"    // string
	KeyAPPassphrase = "ap_pwd"     // string
	KeyAPIP         = "ap_ip"      // int32, packed IPv4
	KeyAPChannel    = "ap_channel" // int8

	KeyRadioMode = "wifi_mode" // int8, desired radio mode
)

// Station addressing modes stored under KeySTAIPMode.
const (
	IPModeDHCP   int8 = 0
	IPModeStatic int8 = 1
)

// Protocol identifies a network sub-protocol configurable by number.
type Protocol int

// Known protocol identifiers. Websocket and telnet are reserved and not yet
// configurable.
const (
	ProtocolHTTP      Protocol = 0
	ProtocolWebsocket Protocol = 1
	ProtocolTelnet    Protocol = 2
)

// ProtocolKeys names the keys holding a protocol's enabled flag and port.
type ProtocolKeys struct {
	Name    string
	Enabled string
	Port    string
}

var protocols = map[Protocol]ProtocolKeys{
	ProtocolHTTP: {Name: "HTTP", Enabled: KeyHTTPEnabled, Port: KeyHTTPPort},
}

// LookupProtocol returns the keys for a configurable protocol.
func LookupProtocol(p Protocol) (ProtocolKeys, bool) {
	keys, ok := protocols[p]
	return keys, ok
}

// Protocols returns every configurable protocol in identifier order.
func Protocols() []Protocol {
	return []Protocol{ProtocolHTTP}
}
