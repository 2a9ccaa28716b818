package commands

import (
	"context"
	"strconv"

	"github.com/muurk/wifid/internal/validate"
	"github.com/muurk/wifid/internal/wifi"
)

// accessPointPipeline implements SET-ACCESS-POINT [S="<ssid>" P="<passphrase>" I=<ip> [C=<channel>]].
func accessPointPipeline(deps Deps, profiles *wifi.Profiles) Pipeline[wifi.AccessPointSettings] {
	return Pipeline[wifi.AccessPointSettings]{
		Parse: func(req Request) (wifi.AccessPointSettings, error) {
			var s wifi.AccessPointSettings
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
			if s.IP == "" || !validate.IsIPv4Valid(s.IP) {
				return s, NewInvalidParameter("IP", s.IP)
			}

			s.Channel = int(deps.Defaults.APChannel)
			raw, err := bareField(args, 'C', "Channel")
			if err != nil {
				return s, err
			}
			if raw != "" {
				ch, ok := args.Int('C')
				if !ok || !validate.IsChannelValid(ch) {
					return s, NewInvalidParameter("Channel", raw)
				}
				s.Channel = ch
			}
			return s, nil
		},

		Persist: func(_ context.Context, s wifi.AccessPointSettings) error {
			return profiles.SaveAccessPoint(s)
		},

		Confirm: func(_ wifi.AccessPointSettings, r *Reply) {
			r.Msg("Saved, to apply type", "SET-MODE S=2 P=1")
		},

		Query: func(r *Reply) {
			live := deps.Driver.Mode()
			r.Msg("Mode Access point", enabledText(live.HasAccessPoint()))
			r.Msg("MAC", deps.Driver.AccessPointMAC())

			s := profiles.AccessPoint()
			r.Msg("SSID", s.SSID)

			ip := s.IP
			if live.HasAccessPoint() {
				if liveIP := deps.Driver.AccessPointIP(); liveIP != "" {
					ip = liveIP
				}
			}
			r.Msg("IP", ip)
			r.Msg("Channel", strconv.Itoa(s.Channel))
		},
	}
}
