package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/wifid/internal/services"
	"github.com/muurk/wifid/internal/settings"
	"github.com/muurk/wifid/internal/validate"
)

type protocolChange struct {
	keys    settings.ProtocolKeys
	enabled *int8
	port    *uint16
}

// protocolPipeline implements CONFIGURE-PROTOCOL P=<id> [S=<0|1>] [R=<port>].
// A change restarts the whole sub-service set.
func protocolPipeline(deps Deps) Pipeline[protocolChange] {
	return Pipeline[protocolChange]{
		HasPayload: func(req Request) bool {
			return req.Args.HasValue('P')
		},

		Parse: func(req Request) (protocolChange, error) {
			var c protocolChange
			args := req.Args

			id, ok := args.Int('P')
			if !ok {
				return c, NewUnknownIdentifier("Unknown protocol P", args.Bare('P'))
			}
			keys, ok := settings.LookupProtocol(settings.Protocol(id))
			if !ok {
				return c, NewUnknownIdentifier("Unknown protocol P", args.Bare('P'))
			}
			c.keys = keys

			// R=0 does not count as a change on its own
			port, portOK := args.Int('R')
			if !args.HasValue('S') && (!args.HasValue('R') || (portOK && port == 0)) {
				return c, NewInvalidParameter(CmdConfigureProtocol, req.Raw)
			}

			if args.HasValue('S') {
				s, ok := args.Int('S')
				if !ok || (s != 0 && s != 1) {
					return c, NewInvalidParameter("S", args.Bare('S'))
				}
				v := int8(s)
				c.enabled = &v
			}
			if args.HasValue('R') {
				if !portOK || !validate.IsPortValid(port) {
					return c, NewInvalidParameter("R", args.Bare('R'))
				}
				v := uint16(port)
				c.port = &v
			}
			return c, nil
		},

		Persist: func(_ context.Context, c protocolChange) error {
			return deps.Store.Update(func(tx *settings.Tx) error {
				if c.enabled != nil {
					tx.PutInt8(c.keys.Enabled, *c.enabled)
				}
				if c.port != nil {
					tx.PutUint16(c.keys.Port, *c.port)
				}
				return nil
			})
		},

		Apply: func(_ context.Context, c protocolChange, r *Reply) (bool, error) {
			r.Msg(c.keys.Name, protocolStatus(deps, c.keys))
			ok, err := deps.Services.Restart()
			return true, reportServices(r, ok, err)
		},

		Query: func(r *Reply) {
			for _, p := range settings.Protocols() {
				keys, _ := settings.LookupProtocol(p)
				r.Msg(keys.Name, protocolStatus(deps, keys))
			}
		},
	}
}

func protocolStatus(deps Deps, keys settings.ProtocolKeys) string {
	var enabled int8
	var port uint16
	deps.Store.View(func(rd *settings.Reader) {
		enabled = rd.GetInt8(keys.Enabled, deps.Defaults.HTTPEnabledFlag())
		port = rd.GetUint16(keys.Port, deps.Defaults.HTTPPort)
	})

	state := "Disabled"
	if enabled != 0 {
		state = "Enabled"
	}
	return fmt.Sprintf("%s(port:%d)", state, port)
}

// reportServices writes one line per sub-service that failed to start and returns
// the failures as ErrTypeServiceStart errors.
func reportServices(r *Reply, ok bool, err error) error {
	if errors.Is(err, services.ErrRadioOff) {
		r.Msg("Services", "Stopped (radio off)")
		return nil
	}

	var errs []error
	for _, se := range services.StartFailures(err) {
		switch {
		case se.Service == services.NameFilesystem:
			r.Msg("Warning", "filesystem not mounted, HTTP front end will not serve files")
		case se.Critical:
			r.Msgf("Service", "%s failed to start", se.Service)
		default:
			r.Msgf("Service", "%s not available", se.Service)
		}
		errs = append(errs, NewServiceStartError(se.Service, se.Err))
	}
	switch {
	case ok && len(errs) == 0:
		r.Msg("Services", "Started")
	case !ok && len(errs) == 0:
		r.Msg("Services", "Failed to start")
		errs = append(errs, NewServiceStartError("services", err))
	}
	return joinErrors(errs...)
}
