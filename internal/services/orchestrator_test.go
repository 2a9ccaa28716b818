package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/settings"
)

// callLog records lifecycle calls across fake services, in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.calls
	l.calls = nil
	return out
}

type fakeService struct {
	name     string
	log      *callLog
	beginErr error
	running  bool
	env      Env
	handled  int
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Begin(env Env) error {
	f.log.add("begin:" + f.name)
	f.env = env
	if f.beginErr != nil {
		return f.beginErr
	}
	f.running = true
	return nil
}

func (f *fakeService) End() error {
	f.log.add("end:" + f.name)
	f.running = false
	return nil
}

func (f *fakeService) Running() bool { return f.running }
func (f *fakeService) Handle()       { f.handled++ }

type fixture struct {
	log    *callLog
	sim    *netstack.Simulator
	store  *settings.Store
	fs     *fakeService
	mdns   *fakeService
	http   *fakeService
	update *fakeService
	orch   *Orchestrator
}

func newFixture(t *testing.T, mode netstack.Mode) *fixture {
	t.Helper()

	f := &fixture{
		log:   &callLog{},
		sim:   netstack.NewSimulator(),
		store: settings.New(settings.NewMemoryBackend(), settings.DefaultNamespace),
	}
	f.fs = &fakeService{name: NameFilesystem, log: f.log}
	f.mdns = &fakeService{name: NameMDNS, log: f.log}
	f.http = &fakeService{name: NameHTTP, log: f.log}
	f.update = &fakeService{name: NameUpdate, log: f.log}

	f.orch = NewOrchestrator(f.store, f.sim, settings.FactoryDefaults(), Set{
		Filesystem: f.fs,
		MDNS:       f.mdns,
		HTTP:       f.http,
		Update:     f.update,
	})

	if mode != netstack.ModeOff {
		f.sim.AddNetwork("home", netstack.Network{Passphrase: "password1", RSSI: -60})
		cfg := netstack.Config{Mode: mode}
		if mode.HasStation() {
			cfg.Station = &netstack.StationProfile{SSID: "home", Passphrase: "password1", DHCP: true}
		}
		if mode.HasAccessPoint() {
			cfg.AccessPoint = &netstack.AccessPointProfile{SSID: "ap", IP: "192.168.0.1", Channel: 11}
		}
		if err := f.sim.Start(context.Background(), cfg); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	}
	return f
}

func TestOrchestratorBeginOrder(t *testing.T) {
	tests := []struct {
		name string
		mode netstack.Mode
		want []string
	}{
		{
			name: "station starts name resolution",
			mode: netstack.ModeStation,
			want: []string{"begin:filesystem", "begin:mdns", "begin:http", "begin:update"},
		},
		{
			name: "access point skips name resolution",
			mode: netstack.ModeAccessPoint,
			want: []string{"begin:filesystem", "begin:http", "begin:update"},
		},
		{
			name: "mixed skips name resolution",
			mode: netstack.ModeMixed,
			want: []string{"begin:filesystem", "begin:http", "begin:update"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mode)

			ok, err := f.orch.Begin()
			if !ok || err != nil {
				t.Fatalf("Begin() = %v, %v, want true, nil", ok, err)
			}
			if got := f.log.take(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calls = %v, want %v", got, tt.want)
			}
			if f.sim.Scans() != 1 {
				t.Errorf("Scans() = %d, want 1", f.sim.Scans())
			}
		})
	}
}

func TestOrchestratorBeginRadioOff(t *testing.T) {
	f := newFixture(t, netstack.ModeOff)

	ok, err := f.orch.Begin()
	if ok {
		t.Error("Begin() = true, want false")
	}
	if !errors.Is(err, ErrRadioOff) {
		t.Errorf("Begin() error = %v, want ErrRadioOff", err)
	}
	if calls := f.log.take(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
	if f.sim.Scans() != 0 {
		t.Errorf("Scans() = %d, want 0", f.sim.Scans())
	}
}

func TestOrchestratorSoftFailures(t *testing.T) {
	f := newFixture(t, netstack.ModeStation)
	f.fs.beginErr = errors.New("no medium")
	f.mdns.beginErr = errors.New("no multicast")

	ok, err := f.orch.Begin()
	if !ok {
		t.Fatalf("Begin() = false, want true with soft failures")
	}

	failures := StartFailures(err)
	if len(failures) != 2 {
		t.Fatalf("StartFailures() = %d entries, want 2", len(failures))
	}
	for _, se := range failures {
		if se.Critical {
			t.Errorf("%s failure marked critical", se.Service)
		}
	}
	if !f.http.Running() || !f.update.Running() {
		t.Error("critical services should still start after soft failures")
	}
}

func TestOrchestratorCriticalFailure(t *testing.T) {
	f := newFixture(t, netstack.ModeAccessPoint)
	f.http.beginErr = errors.New("address in use")

	ok, err := f.orch.Begin()
	if ok {
		t.Fatal("Begin() = true, want false")
	}

	failures := StartFailures(err)
	if len(failures) != 1 || failures[0].Service != NameHTTP || !failures[0].Critical {
		t.Fatalf("StartFailures() = %+v, want one critical http failure", failures)
	}

	var se *StartError
	if !errors.As(err, &se) {
		t.Error("errors.As(*StartError) = false")
	}
}

func TestOrchestratorEnd(t *testing.T) {
	f := newFixture(t, netstack.ModeStation)
	if ok, _ := f.orch.Begin(); !ok {
		t.Fatal("Begin() = false")
	}
	f.log.take()

	f.orch.End()
	want := []string{"end:update", "end:http", "end:mdns", "end:filesystem"}
	if got := f.log.take(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}

	// second End is harmless
	f.orch.End()
	for _, s := range f.orch.Status() {
		if s.Running {
			t.Errorf("%s still running after End", s.Name)
		}
	}

	// Begin after End restores the running set
	if ok, err := f.orch.Begin(); !ok || err != nil {
		t.Fatalf("Begin() after End = %v, %v", ok, err)
	}
	for _, s := range f.orch.Status() {
		if !s.Running {
			t.Errorf("%s not running after restart", s.Name)
		}
	}
}

func TestOrchestratorEnv(t *testing.T) {
	f := newFixture(t, netstack.ModeStation)
	if err := f.store.Update(func(tx *settings.Tx) error {
		tx.PutString(settings.KeyHostname, "printer")
		tx.PutInt8(settings.KeyHTTPEnabled, 0)
		tx.PutUint16(settings.KeyHTTPPort, 8080)
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := f.orch.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	want := Env{Mode: netstack.ModeStation, Hostname: "printer", HTTPEnabled: false, HTTPPort: 8080}
	if f.http.env != want {
		t.Errorf("env = %+v, want %+v", f.http.env, want)
	}
}

func TestOrchestratorHandle(t *testing.T) {
	f := newFixture(t, netstack.ModeAccessPoint)
	if _, err := f.orch.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	f.orch.Handle()
	f.orch.Handle()

	if f.http.handled != 2 {
		t.Errorf("http handled = %d, want 2", f.http.handled)
	}
	// not started in access point mode, so never polled
	if f.mdns.handled != 0 {
		t.Errorf("mdns handled = %d, want 0", f.mdns.handled)
	}
}

func TestOrchestratorPartialSet(t *testing.T) {
	log := &callLog{}
	sim := netstack.NewSimulator()
	if err := sim.Start(context.Background(), netstack.Config{
		Mode:        netstack.ModeAccessPoint,
		AccessPoint: &netstack.AccessPointProfile{SSID: "ap", IP: "192.168.0.1", Channel: 1},
	}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	orch := NewOrchestrator(settings.New(settings.NewMemoryBackend(), "t"), sim, settings.FactoryDefaults(), Set{
		HTTP: &fakeService{name: NameHTTP, log: log},
	})
	if ok, err := orch.Begin(); !ok || err != nil {
		t.Fatalf("Begin() = %v, %v", ok, err)
	}
	if got := log.take(); !reflect.DeepEqual(got, []string{"begin:http"}) {
		t.Errorf("calls = %v", got)
	}
	if len(orch.Status()) != 1 {
		t.Errorf("Status() = %v, want one member", orch.Status())
	}
}
