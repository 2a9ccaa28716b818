package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/muurk/wifid/internal/logging"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds how long End waits for in-flight requests.
const DefaultShutdownTimeout = 5 * time.Second

// httpListener is an http.Server bound to a live listener.
type httpListener struct {
	name string
	srv  *http.Server
	ln   net.Listener
	done chan struct{}
}

func listenHTTP(name, addr string, handler http.Handler) (*httpListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &httpListener{
		name: name,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln:   ln,
		done: make(chan struct{}),
	}

	go func() {
		defer close(l.done)
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP listener stopped", zap.String("service", name), zap.Error(err))
		}
	}()

	logging.LogServiceEvent(name, "listening", zap.String("addr", ln.Addr().String()))
	return l, nil
}

func (l *httpListener) addr() string {
	return l.ln.Addr().String()
}

func (l *httpListener) shutdown(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := l.srv.Shutdown(ctx)
	if err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.String("service", l.name))
		_ = l.srv.Close()
	}
	<-l.done

	logging.LogServiceEvent(l.name, "stopped")
	return err
}
