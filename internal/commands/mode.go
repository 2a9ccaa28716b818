package commands

import (
	"context"
	"fmt"

	"github.com/muurk/wifid/internal/netstack"
)

type modeChange struct {
	mode  netstack.Mode
	apply bool
}

// modePipeline implements SET-MODE [S=<mode> [P=<0|1>]]. The desired mode is always
// persisted; the live radio changes only with P=1.
func modePipeline(deps Deps) Pipeline[modeChange] {
	return Pipeline[modeChange]{
		HasPayload: func(req Request) bool {
			return req.Args.HasValue('S')
		},

		Parse: func(req Request) (modeChange, error) {
			var c modeChange
			args := req.Args

			n, ok := args.Int('S')
			if !ok || n < int(netstack.ModeOff) || n > int(netstack.ModeMixed) {
				return c, NewInvalidParameter("Mode", args.Bare('S'))
			}
			c.mode = netstack.Mode(n)

			if args.HasValue('P') {
				p, ok := args.Int('P')
				if !ok || (p != 0 && p != 1) {
					return c, NewInvalidParameter("P", args.Bare('P'))
				}
				c.apply = p == 1
			}
			return c, nil
		},

		Persist: func(ctx context.Context, c modeChange) error {
			_, err := deps.Mode.SetMode(ctx, c.mode, false)
			return err
		},

		Apply: func(ctx context.Context, c modeChange, r *Reply) (bool, error) {
			if !c.apply {
				return false, nil
			}

			res, err := deps.Mode.Apply(ctx, c.mode)
			if err != nil {
				r.Msg("Current Mode", deps.Mode.LiveMode().String())
				r.Msgf("Warning", "%s did not start", c.mode)
				return true, NewServiceStartError("radio", err)
			}

			r.Msg("Current Mode", res.Mode.String())
			if c.mode == netstack.ModeOff {
				return true, nil
			}
			return true, reportServices(r, res.ServicesStarted, res.ServiceErr)
		},

		Confirm: func(c modeChange, r *Reply) {
			r.Msg("Saved, to apply type", fmt.Sprintf("SET-MODE S=%d P=1", int8(c.mode)))
		},

		Query: func(r *Reply) {
			r.Msg("Current Mode", deps.Mode.LiveMode().String())

			saved := deps.Mode.DesiredMode()
			if saved.Valid() {
				r.Msg("Saved Mode", saved.String())
			} else {
				r.Msg("Saved Mode", "Not defined")
			}
		},
	}
}

// applyModeHint names the command that re-applies the desired mode.
func applyModeHint(deps Deps) string {
	desired := deps.Mode.DesiredMode()
	if !desired.Valid() {
		desired = netstack.ModeOff
	}
	return fmt.Sprintf("SET-MODE S=%d P=1", int8(desired))
}
