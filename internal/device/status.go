package device

import (
	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/settings"
	"github.com/muurk/wifid/internal/status"
	"github.com/muurk/wifid/internal/version"
)

// Status reports the device's live state. An undefined persisted mode is reported
// as "Not defined".
func (d *Device) Status() status.Status {
	live := d.mode.LiveMode()
	desired := d.mode.DesiredMode()

	st := status.Status{
		Hostname:    d.store.GetString(settings.KeyHostname, d.cfg.Defaults.Hostname),
		Mode:        live.String(),
		DesiredMode: "Not defined",
		Services:    d.orch.Status(),
		Version:     version.Get().Version,
	}
	if desired.Valid() {
		st.DesiredMode = desired.String()
	}

	profiles := d.mode.Profiles()
	if live.HasStation() {
		ss := d.driver.StationStatus()
		st.Station = &status.Station{
			SSID:      profiles.Station().SSID,
			Connected: ss.Connected,
			IP:        ss.IP,
		}
		if ss.Connected {
			st.Station.Signal = netstack.SignalPercent(ss.RSSI)
		}
	}
	if live.HasAccessPoint() {
		st.AccessPoint = &status.AccessPoint{
			SSID: profiles.AccessPoint().SSID,
			IP:   d.driver.AccessPointIP(),
		}
	}
	return st
}
