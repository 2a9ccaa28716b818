package commands

import (
	"context"
	"sort"
	"strings"

	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/metrics"
	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/params"
	"github.com/muurk/wifid/internal/settings"
	"github.com/muurk/wifid/internal/wifi"
)

// Command words.
const (
	CmdSetHostname       = "SET-HOSTNAME"
	CmdConfigureProtocol = "CONFIGURE-PROTOCOL"
	CmdSetStation        = "SET-STATION"
	CmdSetMode           = "SET-MODE"
	CmdSetAccessPoint    = "SET-ACCESS-POINT"
)

// Aliases maps the numeric command codes accepted for each command word.
var Aliases = map[string]string{
	"M585": CmdSetHostname,
	"M586": CmdConfigureProtocol,
	"M587": CmdSetStation,
	"M588": CmdSetMode,
	"M589": CmdSetAccessPoint,
}

// Restarter restarts the sub-service set after a protocol change.
type Restarter interface {
	Restart() (bool, error)
}

// Deps are the collaborators shared by every handler.
type Deps struct {
	Store    *settings.Store
	Driver   netstack.Driver
	Services Restarter
	Mode     *wifi.Controller
	Defaults settings.Defaults
}

// Handler runs one command. r receives the status lines.
type Handler func(ctx context.Context, req Request, r *Reply) (Outcome, error)

// Dispatcher routes command lines to handlers by command word.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher creates a dispatcher with every configuration command registered.
func NewDispatcher(deps Deps) *Dispatcher {
	profiles := deps.Mode.Profiles()

	d := &Dispatcher{handlers: make(map[string]Handler)}
	d.Register(CmdSetHostname, hostnamePipeline(deps).Run)
	d.Register(CmdConfigureProtocol, protocolPipeline(deps).Run)
	d.Register(CmdSetStation, stationPipeline(deps, profiles).Run)
	d.Register(CmdSetMode, modePipeline(deps).Run)
	d.Register(CmdSetAccessPoint, accessPointPipeline(deps, profiles).Run)
	return d
}

// Register adds or replaces the handler for a command word.
func (d *Dispatcher) Register(word string, h Handler) {
	d.handlers[strings.ToUpper(word)] = h
}

// Commands returns the registered command words in sorted order.
func (d *Dispatcher) Commands() []string {
	out := make([]string, 0, len(d.handlers))
	for word := range d.handlers {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

// Execute runs one command line and returns its status lines. A blank line
// produces no output.
func (d *Dispatcher) Execute(ctx context.Context, line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	word, raw := splitCommand(line)
	r := &Reply{}

	h, ok := d.handlers[word]
	if !ok {
		r.Msg("Unknown command", word)
		metrics.CommandsTotal.WithLabelValues("unknown", string(OutcomeUnknown)).Inc()
		logging.LogCommand(line, string(OutcomeUnknown), nil)
		return r.Lines()
	}

	outcome, err := h(ctx, Request{Raw: raw, Args: params.Parse(raw)}, r)
	metrics.CommandsTotal.WithLabelValues(word, string(outcome)).Inc()
	logging.LogCommand(redact(word, line), string(outcome), err)
	return r.Lines()
}

// splitCommand returns the canonical command word and the raw argument text.
func splitCommand(line string) (string, string) {
	word, raw, _ := strings.Cut(line, " ")
	word = strings.ToUpper(word)

	// numeric codes may be glued to their argument, as in "M585printer"
	if len(word) > 4 && word[0] == 'M' {
		if canonical, ok := Aliases[word[:4]]; ok {
			rest := line[4:len(word)]
			if raw != "" {
				rest += " " + raw
			}
			return canonical, strings.TrimSpace(rest)
		}
	}
	if canonical, ok := Aliases[word]; ok {
		word = canonical
	}
	return word, strings.TrimSpace(raw)
}

// redact keeps passphrases out of the command log.
func redact(word, line string) string {
	if word != CmdSetStation && word != CmdSetAccessPoint {
		return line
	}
	args := params.Parse(line)
	if p := args.Quoted('P'); p != "" {
		return strings.Replace(line, `"`+p+`"`, `"`+maskSecret(p)+`"`, 1)
	}
	return line
}
