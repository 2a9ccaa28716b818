package device

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/muurk/wifid/internal/commands"
	"github.com/muurk/wifid/internal/config"
	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/services"
	"github.com/muurk/wifid/internal/settings"
	"github.com/muurk/wifid/internal/wifi"
)

// Data directory layout.
const (
	filesDir   = "www"
	updatesDir = "updates"
)

// Options overrides parts of the assembly, mainly for tests.
type Options struct {
	// Backend replaces the bbolt database under the data directory
	Backend settings.Backend
	// Driver replaces the simulated radio built from the configured networks
	Driver netstack.Driver
	// Registrar replaces the zeroconf mDNS registrar
	Registrar services.Registrar
}

// Device is one assembled wifid instance.
type Device struct {
	cfg *config.Config

	backend    settings.Backend
	store      *settings.Store
	driver     netstack.Driver
	fs         *services.Filesystem
	http       *services.HTTPFrontEnd
	update     *services.UpdateService
	orch       *services.Orchestrator
	mode       *wifi.Controller
	dispatcher *commands.Dispatcher
}

// New assembles a device from cfg. Close releases the settings database.
func New(cfg *config.Config, opts Options) (*Device, error) {
	d := &Device{cfg: cfg}

	d.backend = opts.Backend
	if d.backend == nil {
		b, err := settings.NewBoltBackend(filepath.Join(cfg.DataDir, settings.DefaultDBFile))
		if err != nil {
			return nil, err
		}
		d.backend = b
	}
	d.store = settings.New(d.backend, cfg.Namespace)

	d.driver = opts.Driver
	if d.driver == nil {
		d.driver = simulatorFor(cfg)
	}

	var set services.Set
	if cfg.ServiceEnabled(services.NameFilesystem) {
		d.fs = services.NewFilesystem(filepath.Join(cfg.DataDir, filesDir))
		set.Filesystem = d.fs
	}
	if cfg.ServiceEnabled(services.NameMDNS) {
		set.MDNS = services.NewMDNS(opts.Registrar)
	}
	if cfg.ServiceEnabled(services.NameHTTP) {
		httpOpts := services.HTTPOptions{
			Host:            cfg.ListenHost,
			Status:          func() any { return d.Status() },
			ShutdownTimeout: cfg.HTTPShutdownTimeout,
		}
		if d.fs != nil {
			httpOpts.Files = d.fs
		}
		d.http = services.NewHTTPFrontEnd(httpOpts)
		set.HTTP = d.http
	}
	if cfg.ServiceEnabled(services.NameUpdate) {
		d.update = services.NewUpdateService(services.UpdateOptions{
			Host:            cfg.ListenHost,
			Port:            cfg.UpdatePort,
			Dir:             filepath.Join(cfg.DataDir, updatesDir),
			ShutdownTimeout: cfg.HTTPShutdownTimeout,
		})
		set.Update = d.update
	}

	d.orch = services.NewOrchestrator(d.store, d.driver, cfg.Defaults, set)
	d.mode = wifi.NewController(d.store, d.driver, d.orch, cfg.Defaults)
	d.dispatcher = commands.NewDispatcher(commands.Deps{
		Store:    d.store,
		Driver:   d.driver,
		Services: d.orch,
		Mode:     d.mode,
		Defaults: cfg.Defaults,
	})

	return d, nil
}

func simulatorFor(cfg *config.Config) *netstack.Simulator {
	sim := netstack.NewSimulator()
	for _, n := range cfg.Networks {
		sim.AddNetwork(n.SSID, netstack.Network{Passphrase: n.Passphrase, RSSI: n.RSSI})
	}
	return sim
}

// Dispatcher returns the command dispatcher.
func (d *Device) Dispatcher() *commands.Dispatcher { return d.dispatcher }

// Mode returns the radio mode controller.
func (d *Device) Mode() *wifi.Controller { return d.mode }

// Services returns the sub-service orchestrator.
func (d *Device) Services() *services.Orchestrator { return d.orch }

// Store returns the settings store.
func (d *Device) Store() *settings.Store { return d.store }

// HTTPAddr returns the HTTP front end's bound address, or "" when it is not running.
func (d *Device) HTTPAddr() string {
	if d.http == nil {
		return ""
	}
	return d.http.Addr()
}

// UpdateAddr returns the update receiver's bound address, or "" when it is not running.
func (d *Device) UpdateAddr() string {
	if d.update == nil {
		return ""
	}
	return d.update.Addr()
}

// Shutdown stops every sub-service and turns the radio off.
func (d *Device) Shutdown() {
	d.orch.End()
	if err := d.driver.Stop(); err != nil {
		logging.Warn("Failed to stop radio", zap.Error(err))
	}
}

// Close releases the settings database.
func (d *Device) Close() error {
	if err := d.backend.Close(); err != nil {
		return fmt.Errorf("failed to close settings database: %w", err)
	}
	return nil
}
