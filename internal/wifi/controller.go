package wifi

import (
	"context"
	"errors"
	"fmt"

	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/metrics"
	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/services"
	"github.com/muurk/wifid/internal/settings"
	"go.uber.org/zap"
)

// ErrInvalidMode is returned for modes outside off, station, access point and mixed.
var ErrInvalidMode = errors.New("invalid radio mode")

// Lifecycle is the sub-service set started once the radio is up.
type Lifecycle interface {
	Begin() (bool, error)
	End()
}

// ApplyError reports a live mode transition that did not complete.
// The desired mode stays persisted.
type ApplyError struct {
	Mode netstack.Mode
	Err  error
}

// Error implements the error interface
func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to apply %s: %v", e.Mode, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// ApplyResult describes a completed live transition.
type ApplyResult struct {
	Mode netstack.Mode
	// ServicesStarted is false when a critical sub-service failed to start
	ServicesStarted bool
	// ServiceErr joins every sub-service start failure, soft ones included
	ServiceErr error
}

// Controller owns the desired and live radio modes.
type Controller struct {
	store    *settings.Store
	driver   netstack.Driver
	services Lifecycle
	profiles *Profiles
	defaults settings.Defaults
}

// NewController creates a mode controller.
func NewController(store *settings.Store, driver netstack.Driver, svc Lifecycle, defaults settings.Defaults) *Controller {
	return &Controller{
		store:    store,
		driver:   driver,
		services: svc,
		profiles: NewProfiles(store, defaults),
		defaults: defaults,
	}
}

// Profiles returns the profile accessor sharing the controller's store.
func (c *Controller) Profiles() *Profiles {
	return c.profiles
}

// LiveMode returns the network stack's current mode.
func (c *Controller) LiveMode() netstack.Mode {
	return c.driver.Mode()
}

// DesiredMode returns the persisted mode. The value may lie outside the enum when
// the store was written by something else; check it with Valid.
func (c *Controller) DesiredMode() netstack.Mode {
	return netstack.Mode(c.store.GetInt8(settings.KeyRadioMode, c.defaults.RadioMode))
}

// SetMode persists mode as the desired mode and, when apply is set, brings the live
// radio to it. A persistence failure does not prevent the apply step; it is returned
// alongside the apply outcome.
func (c *Controller) SetMode(ctx context.Context, mode netstack.Mode, apply bool) (*ApplyResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int8(mode))
	}

	persistErr := c.store.PutInt8(settings.KeyRadioMode, int8(mode))
	metrics.RadioMode.WithLabelValues("desired").Set(float64(mode))

	if !apply {
		logging.LogModeChange(mode.String(), c.LiveMode().String(), false)
		return nil, persistErr
	}

	res, err := c.Apply(ctx, mode)
	if err != nil {
		return nil, errors.Join(persistErr, err)
	}
	return res, persistErr
}

// Apply brings the live radio to mode using the persisted profiles and restarts the
// sub-services. Services are always stopped first; they are started again only when
// the radio comes up.
func (c *Controller) Apply(ctx context.Context, mode netstack.Mode) (*ApplyResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int8(mode))
	}

	c.services.End()
	defer func() {
		live := c.LiveMode()
		metrics.RadioMode.WithLabelValues("live").Set(float64(live))
		logging.LogModeChange(mode.String(), live.String(), true)
	}()

	if mode == netstack.ModeOff {
		if err := c.driver.Stop(); err != nil {
			return nil, &ApplyError{Mode: mode, Err: err}
		}
		return &ApplyResult{Mode: mode, ServicesStarted: false}, nil
	}

	if err := c.driver.Start(ctx, c.profiles.Config(mode)); err != nil {
		logging.Warn("Radio did not come up",
			zap.String("mode", mode.String()),
			zap.Error(err),
		)
		return nil, &ApplyError{Mode: mode, Err: err}
	}

	ok, err := c.services.Begin()
	return &ApplyResult{Mode: mode, ServicesStarted: ok, ServiceErr: err}, nil
}

// Boot applies the persisted desired mode. An out-of-range value leaves the radio off.
func (c *Controller) Boot(ctx context.Context) (*ApplyResult, error) {
	mode := c.DesiredMode()
	metrics.RadioMode.WithLabelValues("desired").Set(float64(mode))

	if !mode.Valid() {
		logging.Warn("Persisted radio mode is not defined, leaving radio off",
			zap.Int8("mode", int8(mode)),
		)
		mode = netstack.ModeOff
	}
	return c.Apply(ctx, mode)
}

var _ Lifecycle = (*services.Orchestrator)(nil)
