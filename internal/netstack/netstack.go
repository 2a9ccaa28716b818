// Package netstack defines the boundary to the device's network-stack driver.
//
// The driver owns the radio: it brings the station and access-point interfaces up
// and down and reports live state (mode, addresses, link status, signal). Everything
// above this package treats the driver as an external collaborator; Simulator is an
// in-process implementation used for development and tests.
package netstack

import (
	"context"
	"errors"
	"fmt"
)

// Mode is the radio operating mode. The numeric values are the persisted form.
type Mode int8

const (
	ModeOff         Mode = 0
	ModeStation     Mode = 1
	ModeAccessPoint Mode = 2
	ModeMixed       Mode = 3
)

// String returns the operator facing name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "WiFi off"
	case ModeStation:
		return "Client Station"
	case ModeAccessPoint:
		return "Access Point"
	case ModeMixed:
		return "Mixed"
	default:
		return fmt.Sprintf("Mode(%d)", int8(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= ModeOff && m <= ModeMixed
}

// HasStation reports whether the station interface is part of m.
func (m Mode) HasStation() bool {
	return m == ModeStation || m == ModeMixed
}

// HasAccessPoint reports whether the access-point interface is part of m.
func (m Mode) HasAccessPoint() bool {
	return m == ModeAccessPoint || m == ModeMixed
}

// StationProfile is the client-mode network configuration.
type StationProfile struct {
	SSID       string
	Passphrase string
	// DHCP selects dynamic addressing; IP, Gateway and Netmask are ignored when set.
	DHCP     bool
	IP       string
	Gateway  string
	Netmask  string
	Hostname string
}

// AccessPointProfile is the hosted network configuration.
type AccessPointProfile struct {
	SSID       string
	Passphrase string
	IP         string
	Netmask    string
	Channel    int
	Hostname   string
}

// Config selects which interfaces Start brings up.
// Station must be set for station and mixed modes, AccessPoint for access-point and
// mixed modes.
type Config struct {
	Mode        Mode
	Station     *StationProfile
	AccessPoint *AccessPointProfile
}

// StationStatus is the live state of the station interface.
type StationStatus struct {
	Connected bool
	RSSI      int
	IP        string
	Gateway   string
	Netmask   string
}

// Errors reported by drivers.
var (
	ErrConnectFailed   = errors.New("station failed to join network")
	ErrAccessPointDown = errors.New("access point failed to start")
	ErrMissingProfile  = errors.New("profile required for mode")
)

// Driver is the network-stack driver.
// Start may block while interfaces come up; every other method returns promptly.
type Driver interface {
	// Mode returns the live radio mode.
	Mode() Mode
	// Start replaces the live configuration with cfg. ModeOff is equivalent to Stop.
	Start(ctx context.Context, cfg Config) error
	// Stop turns the radio off.
	Stop() error
	// ScanNetworks starts an asynchronous scan for nearby networks.
	ScanNetworks()

	StationMAC() string
	AccessPointMAC() string
	StationStatus() StationStatus
	// AccessPointIP returns the live access-point address, or "" when it is down.
	AccessPointIP() string
}

// CheckConfig reports ErrMissingProfile when cfg lacks a profile its mode needs.
func CheckConfig(cfg Config) error {
	if !cfg.Mode.Valid() {
		return fmt.Errorf("invalid mode %d", int8(cfg.Mode))
	}
	if cfg.Mode.HasStation() && cfg.Station == nil {
		return fmt.Errorf("%w: station", ErrMissingProfile)
	}
	if cfg.Mode.HasAccessPoint() && cfg.AccessPoint == nil {
		return fmt.Errorf("%w: access point", ErrMissingProfile)
	}
	return nil
}

// SignalPercent converts an RSSI in dBm to a 0-100 quality figure.
func SignalPercent(rssi int) int {
	switch {
	case rssi <= -100:
		return 0
	case rssi >= -50:
		return 100
	default:
		return 2 * (rssi + 100)
	}
}
