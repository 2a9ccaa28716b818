package wifi

import (
	"context"
	"errors"
	"testing"

	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/settings"
)

type fakeLifecycle struct {
	begins, ends int
	ok           bool
	err          error
}

func (f *fakeLifecycle) Begin() (bool, error) {
	f.begins++
	return f.ok, f.err
}

func (f *fakeLifecycle) End() { f.ends++ }

func newController(t *testing.T) (*Controller, *netstack.Simulator, *fakeLifecycle, *settings.Store) {
	t.Helper()
	store := settings.New(settings.NewMemoryBackend(), settings.DefaultNamespace)
	sim := netstack.NewSimulator()
	svc := &fakeLifecycle{ok: true}
	return NewController(store, sim, svc, settings.FactoryDefaults()), sim, svc, store
}

func TestSetModeSaveOnly(t *testing.T) {
	c, sim, svc, _ := newController(t)

	res, err := c.SetMode(context.Background(), netstack.ModeStation, false)
	if err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if res != nil {
		t.Errorf("SetMode() result = %+v, want nil for save-only", res)
	}
	if c.DesiredMode() != netstack.ModeStation {
		t.Errorf("DesiredMode() = %v, want station", c.DesiredMode())
	}
	if c.LiveMode() != netstack.ModeOff {
		t.Errorf("LiveMode() = %v, want unchanged off", c.LiveMode())
	}
	if sim.Starts() != 0 || svc.begins != 0 || svc.ends != 0 {
		t.Errorf("save-only touched the radio: starts=%d begins=%d ends=%d", sim.Starts(), svc.begins, svc.ends)
	}
}

func TestSetModeApplyStation(t *testing.T) {
	c, sim, svc, _ := newController(t)
	sim.AddNetwork("home", netstack.Network{Passphrase: "password1", RSSI: -55})
	if err := c.Profiles().SaveStation(StationSettings{SSID: "home", Passphrase: "password1", IP: "0.0.0.0", Gateway: "0.0.0.0", Netmask: "0.0.0.0"}); err != nil {
		t.Fatal(err)
	}

	if _, err := c.SetMode(context.Background(), netstack.ModeStation, false); err != nil {
		t.Fatal(err)
	}
	res, err := c.SetMode(context.Background(), netstack.ModeStation, true)
	if err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if res == nil || !res.ServicesStarted {
		t.Fatalf("SetMode() result = %+v, want services started", res)
	}
	if c.LiveMode() != netstack.ModeStation {
		t.Errorf("LiveMode() = %v, want station", c.LiveMode())
	}
	if svc.ends != 1 || svc.begins != 1 {
		t.Errorf("ends=%d begins=%d, want 1 and 1", svc.ends, svc.begins)
	}
	if got := sim.StationStatus().IP; got != netstack.SimLeaseIP {
		t.Errorf("station IP = %q, want DHCP lease", got)
	}
}

func TestSetModeApplyFailureKeepsDesired(t *testing.T) {
	c, _, svc, _ := newController(t)
	// no joinable network registered

	res, err := c.SetMode(context.Background(), netstack.ModeStation, true)
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		t.Fatalf("SetMode() error = %v, want *ApplyError", err)
	}
	if !errors.Is(err, netstack.ErrConnectFailed) {
		t.Errorf("error chain lacks ErrConnectFailed: %v", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if c.DesiredMode() != netstack.ModeStation {
		t.Errorf("DesiredMode() = %v, want station to stay persisted", c.DesiredMode())
	}
	if c.LiveMode() != netstack.ModeOff {
		t.Errorf("LiveMode() = %v, want off", c.LiveMode())
	}
	if svc.begins != 0 {
		t.Errorf("services began %d times after failed apply", svc.begins)
	}
}

func TestApplyOff(t *testing.T) {
	c, _, svc, _ := newController(t)
	if _, err := c.Apply(context.Background(), netstack.ModeAccessPoint); err != nil {
		t.Fatalf("Apply(AP) error = %v", err)
	}

	res, err := c.Apply(context.Background(), netstack.ModeOff)
	if err != nil {
		t.Fatalf("Apply(off) error = %v", err)
	}
	if res.ServicesStarted {
		t.Error("services reported started with radio off")
	}
	if c.LiveMode() != netstack.ModeOff {
		t.Errorf("LiveMode() = %v, want off", c.LiveMode())
	}
	if svc.ends != 2 || svc.begins != 1 {
		t.Errorf("ends=%d begins=%d, want 2 and 1", svc.ends, svc.begins)
	}
}

func TestSetModeRejectsInvalid(t *testing.T) {
	c, _, _, store := newController(t)

	for _, m := range []netstack.Mode{-1, 4, 9} {
		if _, err := c.SetMode(context.Background(), m, true); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("SetMode(%d) error = %v, want ErrInvalidMode", m, err)
		}
	}
	if got := store.GetInt8(settings.KeyRadioMode, -7); got != -7 {
		t.Errorf("radio mode persisted as %d after rejected sets", got)
	}
}

func TestBoot(t *testing.T) {
	tests := []struct {
		name     string
		stored   *int8
		wantLive netstack.Mode
	}{
		{name: "factory default", stored: nil, wantLive: netstack.ModeAccessPoint},
		{name: "persisted off", stored: ptr(int8(0)), wantLive: netstack.ModeOff},
		{name: "undefined value", stored: ptr(int8(42)), wantLive: netstack.ModeOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _, store := newController(t)
			if tt.stored != nil {
				if err := store.PutInt8(settings.KeyRadioMode, *tt.stored); err != nil {
					t.Fatal(err)
				}
			}

			if _, err := c.Boot(context.Background()); err != nil {
				t.Fatalf("Boot() error = %v", err)
			}
			if c.LiveMode() != tt.wantLive {
				t.Errorf("LiveMode() = %v, want %v", c.LiveMode(), tt.wantLive)
			}
		})
	}
}

func TestStationRoundTrip(t *testing.T) {
	p := NewProfiles(settings.New(settings.NewMemoryBackend(), "t"), settings.FactoryDefaults())

	want := StationSettings{
		SSID:       "My Net",
		Passphrase: "correct horse",
		Static:     true,
		IP:         "192.168.1.5",
		Gateway:    "192.168.1.1",
		Netmask:    "255.255.255.0",
	}
	if err := p.SaveStation(want); err != nil {
		t.Fatalf("SaveStation() error = %v", err)
	}
	if got := p.Station(); got != want {
		t.Errorf("Station() = %+v, want %+v", got, want)
	}
}

func TestAccessPointDefaults(t *testing.T) {
	d := settings.FactoryDefaults()
	p := NewProfiles(settings.New(settings.NewMemoryBackend(), "t"), d)

	got := p.AccessPoint()
	if got.SSID != d.APSSID || got.IP != d.APIP || got.Channel != int(d.APChannel) {
		t.Errorf("AccessPoint() = %+v, want factory defaults", got)
	}

	// zero address and channel read back as defaults
	if err := p.SaveAccessPoint(AccessPointSettings{SSID: "shop", IP: "0.0.0.0", Channel: 0}); err != nil {
		t.Fatal(err)
	}
	got = p.AccessPoint()
	if got.SSID != "shop" || got.IP != d.APIP || got.Channel != int(d.APChannel) {
		t.Errorf("AccessPoint() = %+v", got)
	}
}

func TestConfig(t *testing.T) {
	p := NewProfiles(settings.New(settings.NewMemoryBackend(), "t"), settings.FactoryDefaults())

	cfg := p.Config(netstack.ModeMixed)
	if err := netstack.CheckConfig(cfg); err != nil {
		t.Fatalf("CheckConfig() error = %v", err)
	}
	if !cfg.Station.DHCP {
		t.Error("default station profile should use DHCP")
	}
	if cfg.AccessPoint.Hostname != "wifid" {
		t.Errorf("hostname = %q", cfg.AccessPoint.Hostname)
	}

	if cfg := p.Config(netstack.ModeAccessPoint); cfg.Station != nil {
		t.Error("access point config carries a station profile")
	}
}

func ptr[T any](v T) *T { return &v }
