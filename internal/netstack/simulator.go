package netstack

import (
	"context"
	"fmt"
	"sync"
)

// Network is an access point visible to the Simulator.
type Network struct {
	Passphrase string
	RSSI       int
}

// Simulator is an in-process Driver. Stations can only join networks registered in
// Networks with the matching passphrase; DHCP leases come from a fixed /24.
// It is safe for concurrent use.
type Simulator struct {
	mu sync.Mutex

	networks map[string]Network
	mode     Mode
	station  StationStatus
	apIP     string
	scans    int
	starts   int

	// FailAccessPoint makes every access-point start fail.
	FailAccessPoint bool
}

// Simulated interface identities and DHCP lease.
const (
	SimStationMAC     = "24:0A:C4:00:00:01"
	SimAccessPointMAC = "24:0A:C4:00:00:02"
	SimLeaseIP        = "192.168.1.100"
	SimLeaseGateway   = "192.168.1.1"
	SimLeaseNetmask   = "255.255.255.0"
)

// NewSimulator creates a powered-off simulated radio.
func NewSimulator() *Simulator {
	return &Simulator{networks: make(map[string]Network)}
}

// AddNetwork makes a network joinable.
func (s *Simulator) AddNetwork(ssid string, n Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks[ssid] = n
}

// Mode returns the live mode.
func (s *Simulator) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Start brings the interfaces selected by cfg up. On failure the radio is left off.
func (s *Simulator) Start(ctx context.Context, cfg Config) error {
	if err := CheckConfig(cfg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.starts++
	s.mode = ModeOff
	s.station = StationStatus{}
	s.apIP = ""

	if cfg.Mode == ModeOff {
		return nil
	}

	var station StationStatus
	if cfg.Mode.HasStation() {
		p := cfg.Station
		n, ok := s.networks[p.SSID]
		if !ok || n.Passphrase != p.Passphrase {
			return fmt.Errorf("%w: %s", ErrConnectFailed, p.SSID)
		}
		station = StationStatus{Connected: true, RSSI: n.RSSI}
		if p.DHCP {
			station.IP, station.Gateway, station.Netmask = SimLeaseIP, SimLeaseGateway, SimLeaseNetmask
		} else {
			station.IP, station.Gateway, station.Netmask = p.IP, p.Gateway, p.Netmask
		}
	}

	var apIP string
	if cfg.Mode.HasAccessPoint() {
		if s.FailAccessPoint {
			return ErrAccessPointDown
		}
		apIP = cfg.AccessPoint.IP
	}

	s.mode = cfg.Mode
	s.station = station
	s.apIP = apIP
	return nil
}

// Stop turns the radio off.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeOff
	s.station = StationStatus{}
	s.apIP = ""
	return nil
}

// ScanNetworks records a scan request.
func (s *Simulator) ScanNetworks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
}

// Scans returns how many scans were requested.
func (s *Simulator) Scans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

// Starts returns how many times Start was called.
func (s *Simulator) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func (s *Simulator) StationMAC() string     { return SimStationMAC }
func (s *Simulator) AccessPointMAC() string { return SimAccessPointMAC }

// StationStatus returns the live station state.
func (s *Simulator) StationStatus() StationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.station
}

// AccessPointIP returns the live access-point address.
func (s *Simulator) AccessPointIP() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apIP
}
