package services

import (
	"errors"

	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/metrics"
	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/settings"
	"github.com/muurk/wifid/internal/status"
	"go.uber.org/zap"
)

// Sub-service names.
const (
	NameFilesystem = "filesystem"
	NameMDNS       = "mdns"
	NameHTTP       = "http"
	NameUpdate     = "update"
)

// Env is the configuration snapshot handed to every sub-service on Begin.
type Env struct {
	Mode        netstack.Mode
	Hostname    string
	HTTPEnabled bool
	HTTPPort    int
}

// Service is one member of the managed set.
// Begin and End must be idempotent; Handle must return promptly.
type Service interface {
	Name() string
	Begin(env Env) error
	End() error
	Running() bool
	Handle()
}

// Set selects the compiled-in sub-services. Nil members are skipped.
type Set struct {
	Filesystem Service
	MDNS       Service
	HTTP       Service
	Update     Service
}

type member struct {
	svc      Service
	critical bool
}

// Orchestrator starts, stops and polls the sub-service set as one unit.
type Orchestrator struct {
	store    *settings.Store
	driver   netstack.Driver
	defaults settings.Defaults
	members  []member
}

// NewOrchestrator creates an orchestrator over the compiled-in members of set.
func NewOrchestrator(store *settings.Store, driver netstack.Driver, defaults settings.Defaults, set Set) *Orchestrator {
	o := &Orchestrator{store: store, driver: driver, defaults: defaults}

	// start order; later members may depend on earlier ones
	for _, m := range []member{
		{svc: set.Filesystem},
		{svc: set.MDNS},
		{svc: set.HTTP, critical: true},
		{svc: set.Update, critical: true},
	} {
		if m.svc != nil {
			o.members = append(o.members, m)
		}
	}

	return o
}

// Begin starts every compiled-in sub-service in order. It reports false if the radio
// is off or a critical member failed; err joins every StartError, soft ones included.
func (o *Orchestrator) Begin() (bool, error) {
	mode := o.driver.Mode()
	if mode == netstack.ModeOff {
		logging.Warn("Not starting services, radio is off")
		return false, ErrRadioOff
	}

	env := o.env(mode)
	o.driver.ScanNetworks()

	ok := true
	var errs []error
	for _, m := range o.members {
		name := m.svc.Name()

		if name == NameMDNS && mode != netstack.ModeStation {
			logging.Debug("Skipping name resolution outside station mode",
				zap.String("mode", mode.String()),
			)
			continue
		}

		if err := m.svc.Begin(env); err != nil {
			se := &StartError{Service: name, Critical: m.critical, Err: err}
			errs = append(errs, se)
			metrics.ServiceStartFailures.WithLabelValues(name).Inc()

			switch {
			case m.critical:
				ok = false
				logging.Error("Service failed to start", zap.String("service", name), zap.Error(err))
			case name == NameFilesystem:
				logging.Warn("Filesystem not mounted, HTTP front end will not serve files",
					zap.Error(err),
				)
			default:
				logging.Warn("Service failed to start", zap.String("service", name), zap.Error(err))
			}
		}

		metrics.SetServiceUp(name, m.svc.Running())
	}

	return ok, errors.Join(errs...)
}

// End stops every sub-service in reverse order. It is safe to call at any time.
func (o *Orchestrator) End() {
	for i := len(o.members) - 1; i >= 0; i-- {
		svc := o.members[i].svc
		if err := svc.End(); err != nil {
			logging.Warn("Service failed to stop cleanly",
				zap.String("service", svc.Name()),
				zap.Error(err),
			)
		}
		metrics.SetServiceUp(svc.Name(), false)
	}
}

// Restart applies configuration changes by stopping and starting the whole set.
func (o *Orchestrator) Restart() (bool, error) {
	o.End()
	return o.Begin()
}

// Handle polls every running sub-service once.
func (o *Orchestrator) Handle() {
	timer := metrics.NewTimer()
	for _, m := range o.members {
		if m.svc.Running() {
			m.svc.Handle()
		}
	}
	timer.ObserveDuration(metrics.PollDuration)
}

// Status lists the compiled-in sub-services in start order.
func (o *Orchestrator) Status() []status.Service {
	out := make([]status.Service, 0, len(o.members))
	for _, m := range o.members {
		out = append(out, status.Service{Name: m.svc.Name(), Running: m.svc.Running()})
	}
	return out
}

func (o *Orchestrator) env(mode netstack.Mode) Env {
	env := Env{Mode: mode}
	o.store.View(func(r *settings.Reader) {
		env.Hostname = r.GetString(settings.KeyHostname, o.defaults.Hostname)
		env.HTTPEnabled = r.GetInt8(settings.KeyHTTPEnabled, o.defaults.HTTPEnabledFlag()) != 0
		env.HTTPPort = int(r.GetUint16(settings.KeyHTTPPort, o.defaults.HTTPPort))
	})
	return env
}
