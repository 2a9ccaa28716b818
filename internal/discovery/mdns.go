package discovery

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/wifid/internal/netstack"
	"github.com/muurk/wifid/internal/services"
)

const (
	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the HTTP port assumed when an announcement carries none
	DefaultPort = 80

	modeKey = "mode"
)

// BrowseFunc starts browsing for service instances, sending each one to entries
// until ctx is done. It returns once browsing has started.
type BrowseFunc func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error

// ZeroconfBrowse browses on every multicast-capable interface.
func ZeroconfBrowse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}
	if err := resolver.Browse(ctx, service, domain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for announcements
	Timeout time.Duration

	// Browse defaults to ZeroconfBrowse
	Browse BrowseFunc
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		Browse:  ZeroconfBrowse,
	}
}

// Scan collects every wifid device announced before the timeout, sorted by
// instance name. Repeated announcements of one instance are reported once.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		seen = make(map[string]*Device)
	)
	entries := s.receive(ctx, func(d *Device) {
		mu.Lock()
		seen[d.Instance] = d
		mu.Unlock()
	})

	if err := s.browse(ctx, entries); err != nil {
		return nil, err
	}
	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	devices := make([]*Device, 0, len(seen))
	for _, d := range seen {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Instance < devices[j].Instance })
	return devices, nil
}

// Find waits for the device announcing instance. Instance names compare
// case-insensitively.
func (s *Scanner) Find(ctx context.Context, instance string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	match := make(chan *Device, 1)
	entries := s.receive(ctx, func(d *Device) {
		if !strings.EqualFold(d.Instance, instance) {
			return
		}
		select {
		case match <- d:
		default:
		}
	})

	if err := s.browse(ctx, entries); err != nil {
		return nil, err
	}

	select {
	case d := <-match:
		return d, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("device %s not found within %s", instance, s.Timeout)
	}
}

func (s *Scanner) browse(ctx context.Context, entries chan<- *zeroconf.ServiceEntry) error {
	browse := s.Browse
	if browse == nil {
		browse = ZeroconfBrowse
	}
	return browse(ctx, services.ServiceType, services.ServiceDomain, entries)
}

// receive returns a channel whose wifid announcements are passed to fn until ctx
// is done or the channel is closed.
func (s *Scanner) receive(ctx context.Context, fn func(*Device)) chan *zeroconf.ServiceEntry {
	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if d := parseServiceEntry(entry); d != nil {
					fn(d)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return entries
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not a wifid announcement.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	raw, ok := metadata[modeKey]
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 8)
	if err != nil || !netstack.Mode(n).Valid() {
		return nil
	}

	// prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Device{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Mode:         netstack.Mode(n),
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
