package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/services"
)

func entry(instance, ip string, port int, text ...string) *zeroconf.ServiceEntry {
	e := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: instance},
		HostName:      instance + ".local.",
		Port:          port,
		Text:          text,
	}
	if ip != "" {
		parsed := net.ParseIP(ip)
		if parsed.To4() != nil {
			e.AddrIPv4 = []net.IP{parsed}
		} else {
			e.AddrIPv6 = []net.IP{parsed}
		}
	}
	return e
}

// fakeBrowse announces the given entries, then keeps browsing until ctx is done.
func fakeBrowse(t *testing.T, announced ...*zeroconf.ServiceEntry) BrowseFunc {
	return func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
		if service != services.ServiceType || domain != services.ServiceDomain {
			t.Errorf("Browse(%q, %q), want %q, %q", service, domain, services.ServiceType, services.ServiceDomain)
		}
		go func() {
			for _, e := range announced {
				select {
				case entries <- e:
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
		wantMode netstack.Mode
	}{
		{
			name:     "station device",
			entry:    entry("kitchen", "192.168.1.100", 80, "mode=1"),
			wantIP:   "192.168.1.100",
			wantPort: 80,
			wantMode: netstack.ModeStation,
		},
		{
			name:     "custom port",
			entry:    entry("lab", "10.0.0.5", 8080, "mode=3"),
			wantIP:   "10.0.0.5",
			wantPort: 8080,
			wantMode: netstack.ModeMixed,
		},
		{
			name:     "no port defaults to 80",
			entry:    entry("lab", "10.0.0.5", 0, "mode=1"),
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
			wantMode: netstack.ModeStation,
		},
		{
			name:     "IPv6 only",
			entry:    entry("lab", "fe80::1", 80, "mode=1"),
			wantIP:   "fe80::1",
			wantPort: 80,
			wantMode: netstack.ModeStation,
		},
		{
			name:    "other HTTP service",
			entry:   entry("printer", "192.168.1.20", 80, "path=/"),
			wantNil: true,
		},
		{
			name:    "mode out of range",
			entry:   entry("kitchen", "192.168.1.100", 80, "mode=9"),
			wantNil: true,
		},
		{
			name:    "mode not a number",
			entry:   entry("kitchen", "192.168.1.100", 80, "mode=station"),
			wantNil: true,
		},
		{
			name:    "no address",
			entry:   entry("kitchen", "", 80, "mode=1"),
			wantNil: true,
		},
		{
			name:    "no instance",
			entry:   entry("", "192.168.1.100", 80, "mode=1"),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if d != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", d)
				}
				return
			}
			if d == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if d.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", d.IP, tt.wantIP)
			}
			if d.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", d.Port, tt.wantPort)
			}
			if d.Mode != tt.wantMode {
				t.Errorf("Mode = %v, want %v", d.Mode, tt.wantMode)
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	d := parseServiceEntry(entry("kitchen", "192.168.1.100", 80, "mode=1", "flag"))
	if d == nil {
		t.Fatal("parseServiceEntry() = nil")
	}
	if v, ok := d.Metadata["flag"]; !ok || v != "" {
		t.Errorf("Metadata[flag] = %q, %v; want empty, true", v, ok)
	}
	if d.Hostname != "kitchen.local." {
		t.Errorf("Hostname = %q", d.Hostname)
	}
}

func TestDeviceURLs(t *testing.T) {
	d := &Device{Instance: "kitchen", IP: "192.168.1.100", Port: 8080}
	if got := d.BaseURL(); got != "http://192.168.1.100:8080" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := d.ConsoleURL(); got != "ws://192.168.1.100:8080/ws" {
		t.Errorf("ConsoleURL() = %q", got)
	}

	v6 := &Device{IP: "fe80::1", Port: 80}
	if got := v6.Addr(); got != "[fe80::1]:80" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestScan(t *testing.T) {
	s := &Scanner{
		Timeout: 100 * time.Millisecond,
		Browse: fakeBrowse(t,
			entry("lab", "10.0.0.5", 80, "mode=1"),
			entry("printer", "10.0.0.9", 80),
			entry("kitchen", "10.0.0.6", 80, "mode=1"),
			entry("lab", "10.0.0.5", 80, "mode=3"),
		),
	}

	devices, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if devices[0].Instance != "kitchen" || devices[1].Instance != "lab" {
		t.Errorf("devices = %v, %v; want kitchen, lab", devices[0], devices[1])
	}
	if devices[1].Mode != netstack.ModeMixed {
		t.Errorf("lab Mode = %v, want the latest announcement", devices[1].Mode)
	}
}

func TestScanBrowseError(t *testing.T) {
	want := errors.New("no multicast interface")
	s := &Scanner{
		Timeout: time.Second,
		Browse: func(context.Context, string, string, chan<- *zeroconf.ServiceEntry) error {
			return want
		},
	}
	if _, err := s.Scan(context.Background()); !errors.Is(err, want) {
		t.Errorf("Scan() error = %v, want %v", err, want)
	}
}

func TestFind(t *testing.T) {
	s := &Scanner{
		Timeout: 2 * time.Second,
		Browse: fakeBrowse(t,
			entry("lab", "10.0.0.5", 80, "mode=1"),
			entry("Kitchen", "10.0.0.6", 80, "mode=1"),
		),
	}

	start := time.Now()
	d, err := s.Find(context.Background(), "kitchen")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if d.IP != "10.0.0.6" {
		t.Errorf("IP = %q, want 10.0.0.6", d.IP)
	}
	if time.Since(start) > time.Second {
		t.Error("Find() waited for the timeout after a match")
	}
}

func TestFindTimeout(t *testing.T) {
	s := &Scanner{
		Timeout: 50 * time.Millisecond,
		Browse:  fakeBrowse(t, entry("lab", "10.0.0.5", 80, "mode=1")),
	}
	if _, err := s.Find(context.Background(), "kitchen"); err == nil {
		t.Error("Find() error = nil, want not found")
	}
}
