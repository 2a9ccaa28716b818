package commands

import (
	"context"

	"github.com/muurk/wifid/internal/settings"
	"github.com/muurk/wifid/internal/validate"
)

// hostnamePipeline implements SET-HOSTNAME [<name>]. The whole argument text is the
// name. The new name takes effect the next time the radio mode is applied.
func hostnamePipeline(deps Deps) Pipeline[string] {
	return Pipeline[string]{
		Parse: func(req Request) (string, error) {
			if !validate.IsHostnameValid(req.Raw) {
				return "", NewInvalidParameter("Hostname", req.Raw)
			}
			return req.Raw, nil
		},
		Persist: func(_ context.Context, name string) error {
			return deps.Store.PutString(settings.KeyHostname, name)
		},
		Confirm: func(_ string, r *Reply) {
			r.Msg("Saved, to apply type", applyModeHint(deps))
		},
		Query: func(r *Reply) {
			r.Msg("Hostname", deps.Store.GetString(settings.KeyHostname, deps.Defaults.Hostname))
		},
	}
}
