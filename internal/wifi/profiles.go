package wifi

import (
	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/settings"
)

// StationSettings is the persisted station profile.
type StationSettings struct {
	SSID       string
	Passphrase string
	Static     bool
	IP         string
	Gateway    string
	Netmask    string
}

// AccessPointSettings is the persisted access-point profile.
type AccessPointSettings struct {
	SSID       string
	Passphrase string
	IP         string
	Channel    int
}

// Profiles reads and writes network profiles in one settings namespace.
type Profiles struct {
	store    *settings.Store
	defaults settings.Defaults
}

// NewProfiles creates a profile accessor.
func NewProfiles(store *settings.Store, defaults settings.Defaults) *Profiles {
	return &Profiles{store: store, defaults: defaults}
}

// Station returns the persisted station profile, with factory defaults for unset keys.
func (p *Profiles) Station() StationSettings {
	var s StationSettings
	p.store.View(func(r *settings.Reader) {
		s = p.readStation(r)
	})
	return s
}

func (p *Profiles) readStation(r *settings.Reader) StationSettings {
	d := p.defaults
	return StationSettings{
		SSID:       r.GetString(settings.KeySTASSID, d.StationSSID),
		Passphrase: r.GetString(settings.KeySTAPassphrase, d.StationPassphrase),
		Static:     r.GetInt8(settings.KeySTAIPMode, settings.IPModeDHCP) == settings.IPModeStatic,
		IP:         settings.UnpackIPv4(r.GetInt32(settings.KeySTAIP, settings.PackIPv4(d.StationIP))),
		Gateway:    settings.UnpackIPv4(r.GetInt32(settings.KeySTAGateway, settings.PackIPv4(d.StationGateway))),
		Netmask:    settings.UnpackIPv4(r.GetInt32(settings.KeySTANetmask, settings.PackIPv4(d.StationNetmask))),
	}
}

// SaveStation persists every station field in one write.
func (p *Profiles) SaveStation(s StationSettings) error {
	mode := settings.IPModeDHCP
	if s.Static {
		mode = settings.IPModeStatic
	}
	return p.store.Update(func(tx *settings.Tx) error {
		tx.PutString(settings.KeySTASSID, s.SSID)
		tx.PutString(settings.KeySTAPassphrase, s.Passphrase)
		tx.PutInt8(settings.KeySTAIPMode, mode)
		tx.PutInt32(settings.KeySTAIP, settings.PackIPv4(s.IP))
		tx.PutInt32(settings.KeySTAGateway, settings.PackIPv4(s.Gateway))
		tx.PutInt32(settings.KeySTANetmask, settings.PackIPv4(s.Netmask))
		return nil
	})
}

// AccessPoint returns the persisted access-point profile. A zero address or channel
// reads as the factory default.
func (p *Profiles) AccessPoint() AccessPointSettings {
	var s AccessPointSettings
	p.store.View(func(r *settings.Reader) {
		s = p.readAccessPoint(r)
	})
	return s
}

func (p *Profiles) readAccessPoint(r *settings.Reader) AccessPointSettings {
	d := p.defaults

	ip := r.GetInt32(settings.KeyAPIP, 0)
	if ip == 0 {
		ip = settings.PackIPv4(d.APIP)
	}
	channel := r.GetInt8(settings.KeyAPChannel, 0)
	if channel == 0 {
		channel = d.APChannel
	}

	return AccessPointSettings{
		SSID:       r.GetString(settings.KeyAPSSID, d.APSSID),
		Passphrase: r.GetString(settings.KeyAPPassphrase, d.APPassphrase),
		IP:         settings.UnpackIPv4(ip),
		Channel:    int(channel),
	}
}

// SaveAccessPoint persists every access-point field in one write.
func (p *Profiles) SaveAccessPoint(s AccessPointSettings) error {
	return p.store.Update(func(tx *settings.Tx) error {
		tx.PutString(settings.KeyAPSSID, s.SSID)
		tx.PutString(settings.KeyAPPassphrase, s.Passphrase)
		tx.PutInt32(settings.KeyAPIP, settings.PackIPv4(s.IP))
		tx.PutInt8(settings.KeyAPChannel, int8(s.Channel))
		return nil
	})
}

// Config builds the driver configuration for mode from the persisted profiles.
// Both profiles are read in the same view.
func (p *Profiles) Config(mode netstack.Mode) netstack.Config {
	cfg := netstack.Config{Mode: mode}

	p.store.View(func(r *settings.Reader) {
		hostname := r.GetString(settings.KeyHostname, p.defaults.Hostname)

		if mode.HasStation() {
			s := p.readStation(r)
			cfg.Station = &netstack.StationProfile{
				SSID:       s.SSID,
				Passphrase: s.Passphrase,
				DHCP:       !s.Static,
				IP:         s.IP,
				Gateway:    s.Gateway,
				Netmask:    s.Netmask,
				Hostname:   hostname,
			}
		}
		if mode.HasAccessPoint() {
			a := p.readAccessPoint(r)
			cfg.AccessPoint = &netstack.AccessPointProfile{
				SSID:       a.SSID,
				Passphrase: a.Passphrase,
				IP:         a.IP,
				Netmask:    p.defaults.APNetmask,
				Channel:    a.Channel,
				Hostname:   hostname,
			}
		}
	})

	return cfg
}
