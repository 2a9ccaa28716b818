package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/muurk/wifid/internal/netstack"
)

// Device is a discovered wifid device.
type Device struct {
	// Instance is the announced instance name, the device hostname
	Instance string

	// Hostname is the mDNS host name (e.g., "kitchen.local.")
	Hostname string

	IP   string
	Port int

	// Mode is the live radio mode at announcement time
	Mode netstack.Mode

	// Metadata holds every TXT record
	Metadata map[string]string

	DiscoveredAt time.Time
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) at %s, %s", d.Instance, d.Hostname, d.Addr(), d.Mode)
}

// Addr returns the HTTP front end address as host:port.
func (d *Device) Addr() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return "http://" + d.Addr()
}

// ConsoleURL returns the websocket console URL for the device
func (d *Device) ConsoleURL() string {
	return "ws://" + d.Addr() + "/ws"
}
