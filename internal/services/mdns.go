package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/wifid/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the advertised mDNS service type
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."
)

// Responder is a running mDNS announcement.
type Responder interface {
	Shutdown()
}

// Registrar publishes an mDNS service and returns its responder.
type Registrar func(instance, service, domain string, port int, text []string) (Responder, error)

// ZeroconfRegistrar publishes on every multicast-capable interface.
func ZeroconfRegistrar(instance, service, domain string, port int, text []string) (Responder, error) {
	server, err := zeroconf.Register(instance, service, domain, port, text, nil)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// MDNS announces the device hostname on the local network.
type MDNS struct {
	register Registrar

	mu        sync.Mutex
	responder Responder
	instance  string
}

// NewMDNS creates a name-resolution service. A nil register uses ZeroconfRegistrar.
func NewMDNS(register Registrar) *MDNS {
	if register == nil {
		register = ZeroconfRegistrar
	}
	return &MDNS{register: register}
}

// Name implements Service
func (m *MDNS) Name() string { return NameMDNS }

// Begin announces env.Hostname, pointing at the HTTP front end port.
func (m *MDNS) Begin(env Env) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.responder != nil {
		return nil
	}
	if env.Hostname == "" {
		return errors.New("hostname is empty")
	}

	port := env.HTTPPort
	if !env.HTTPEnabled || port == 0 {
		port = 80
	}

	text := []string{fmt.Sprintf("mode=%d", int8(env.Mode))}
	responder, err := m.register(env.Hostname, ServiceType, ServiceDomain, port, text)
	if err != nil {
		return fmt.Errorf("failed to register %s.%s: %w", env.Hostname, ServiceDomain, err)
	}

	m.responder = responder
	m.instance = env.Hostname
	logging.LogServiceEvent(NameMDNS, "announced",
		zap.String("instance", env.Hostname),
		zap.Int("port", port),
	)
	return nil
}

// End withdraws the announcement.
func (m *MDNS) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.responder == nil {
		return nil
	}
	m.responder.Shutdown()
	m.responder = nil
	logging.LogServiceEvent(NameMDNS, "withdrawn", zap.String("instance", m.instance))
	return nil
}

// Running implements Service
func (m *MDNS) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.responder != nil
}

// Handle implements Service; responses are sent by the responder's own goroutines.
func (m *MDNS) Handle() {}
