package commands

import (
	"context"
	"fmt"

	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/validate"
	"github.com/muurk/wifid/internal/wifi"
)

// unsetIPv4 stands in for optional addresses left out of a payload.
const unsetIPv4 = "0.0.0.0"

// stationPipeline implements SET-STATION [S="<ssid>" P="<passphrase>" [I=<ip>] [J=<gw>] [K=<mask>]].
// Giving an address selects static addressing; leaving it out selects DHCP.
func stationPipeline(deps Deps, profiles *wifi.Profiles) Pipeline[wifi.StationSettings] {
	return Pipeline[wifi.StationSettings]{
		Parse: func(req Request) (wifi.StationSettings, error) {
			var s wifi.StationSettings
			args := req.Args

			var err error
			if s.SSID, err = quotedField(args, 'S', "SSID", false); err != nil {
				return s, err
			}
			if !validate.IsSSIDValid(s.SSID) {
				return s, NewInvalidParameter("SSID", s.SSID)
			}
			if s.Passphrase, err = quotedField(args, 'P', "Password", true); err != nil {
				return s, err
			}
			if !validate.IsPassphraseValid(s.Passphrase) {
				return s, NewInvalidSecret("Password", s.Passphrase)
			}

			if s.IP, err = bareField(args, 'I', "IP"); err != nil {
				return s, err
			}
			s.Static = s.IP != ""
			if !s.Static {
				s.IP = unsetIPv4
			}
			if !validate.IsIPv4Valid(s.IP) {
				return s, NewInvalidParameter("IP", s.IP)
			}

			if s.Gateway, err = bareField(args, 'J', "Gateway IP"); err != nil {
				return s, err
			}
			s.Gateway = orUnset(s.Gateway)
			if !validate.IsIPv4Valid(s.Gateway) {
				return s, NewInvalidParameter("Gateway IP", s.Gateway)
			}
			if s.Netmask, err = bareField(args, 'K', "Mask"); err != nil {
				return s, err
			}
			s.Netmask = orUnset(s.Netmask)
			if !validate.IsIPv4Valid(s.Netmask) {
				return s, NewInvalidParameter("Mask", s.Netmask)
			}
			return s, nil
		},

		Persist: func(_ context.Context, s wifi.StationSettings) error {
			return profiles.SaveStation(s)
		},

		Confirm: func(_ wifi.StationSettings, r *Reply) {
			r.Msg("Saved, to apply type", "SET-MODE S=1 P=1")
		},

		Query: func(r *Reply) {
			live := deps.Driver.Mode()
			r.Msg("Mode Client", enabledText(live.HasStation()))
			r.Msg("MAC", deps.Driver.StationMAC())

			s := profiles.Station()
			r.Msg("SSID", s.SSID)

			status := deps.Driver.StationStatus()
			if s.Static {
				r.Msg("IP", s.IP)
				r.Msg("Gateway", s.Gateway)
				r.Msg("Mask", s.Netmask)
			} else {
				r.Msg("IP", "(DHCP)"+liveIPv4(status.IP))
				r.Msg("Gateway", "(DHCP)"+liveIPv4(status.Gateway))
				r.Msg("Mask", "(DHCP)"+liveIPv4(status.Netmask))
			}

			if live.HasStation() {
				if status.Connected {
					r.Msg("Status", "Connected")
					r.Msg("AP Signal", fmt.Sprintf("%d%%", netstack.SignalPercent(status.RSSI)))
				} else {
					r.Msg("Status", "Not connected")
				}
			}
		},
	}
}

func orUnset(s string) string {
	if s == "" {
		return unsetIPv4
	}
	return s
}

// liveIPv4 renders a driver-reported address; an interface that is down has none.
func liveIPv4(s string) string {
	if s == "" {
		return unsetIPv4
	}
	return s
}

func enabledText(on bool) string {
	if on {
		return "Enabled"
	}
	return "Disabled"
}
