package services

import (
	"encoding/json"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/metrics"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to wait for a command reply from the event loop
	replyWait = 10 * time.Second

	// Maximum console message size allowed from peer
	maxMessageSize = 4096

	// Queued console lines waiting for the event loop
	consoleQueue = 16
)

// ConsoleRequest is one command line received on the websocket console.
// The receiver must send exactly one reply on Reply.
type ConsoleRequest struct {
	Line  string
	Reply chan<- []string
}

// FileSource provides the file store served under "/".
type FileSource interface {
	FS() fs.FS
}

// StatusFunc returns the document served on /status.
type StatusFunc func() any

// HTTPOptions configures the HTTP front end.
type HTTPOptions struct {
	Host            string
	Files           FileSource
	Status          StatusFunc
	ShutdownTimeout time.Duration
}

// HTTPFrontEnd serves the file store, device status, metrics and a command console.
type HTTPFrontEnd struct {
	opts     HTTPOptions
	console  chan ConsoleRequest
	upgrader websocket.Upgrader

	mu       sync.Mutex
	listener *httpListener
	// conns maps each console connection to whether it awaits a command reply
	conns    map[*websocket.Conn]bool
	stopping chan struct{}
}

// NewHTTPFrontEnd creates an HTTP front end.
func NewHTTPFrontEnd(opts HTTPOptions) *HTTPFrontEnd {
	return &HTTPFrontEnd{
		opts:    opts,
		console: make(chan ConsoleRequest, consoleQueue),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*websocket.Conn]bool),
	}
}

// Name implements Service
func (h *HTTPFrontEnd) Name() string { return NameHTTP }

// Console returns the queue of command lines received from websocket clients.
func (h *HTTPFrontEnd) Console() <-chan ConsoleRequest {
	return h.console
}

// Begin starts listening on env.HTTPPort. A disabled front end starts nothing.
func (h *HTTPFrontEnd) Begin(env Env) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener != nil {
		return nil
	}
	if !env.HTTPEnabled {
		logging.LogServiceEvent(NameHTTP, "disabled")
		return nil
	}

	addr := net.JoinHostPort(h.opts.Host, strconv.Itoa(env.HTTPPort))
	l, err := listenHTTP(NameHTTP, addr, h.routes())
	if err != nil {
		return err
	}

	h.listener = l
	h.stopping = make(chan struct{})
	return nil
}

// End shuts the listener down and closes idle console connections. A connection
// waiting for a command reply stays open until that reply is written, so a command
// that restarts the sub-services still answers its caller.
func (h *HTTPFrontEnd) End() error {
	h.mu.Lock()
	l := h.listener
	if l == nil {
		h.mu.Unlock()
		return nil
	}
	h.listener = nil
	close(h.stopping)
	for conn, busy := range h.conns {
		if busy {
			continue
		}
		_ = conn.Close()
		delete(h.conns, conn)
	}
	h.mu.Unlock()

	return l.shutdown(h.opts.ShutdownTimeout)
}

// Running implements Service
func (h *HTTPFrontEnd) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.listener != nil
}

// Handle implements Service; requests are served on the listener's goroutines
// and console lines are drained by the event loop through Console.
func (h *HTTPFrontEnd) Handle() {}

// Addr returns the bound listen address, or "" when stopped.
func (h *HTTPFrontEnd) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.addr()
}

// Clients returns the number of connected console clients.
func (h *HTTPFrontEnd) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *HTTPFrontEnd) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", h.handleStatus)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/ws", h.handleConsole)
	mux.HandleFunc("/", h.handleFiles)
	return mux
}

func (h *HTTPFrontEnd) handleFiles(w http.ResponseWriter, r *http.Request) {
	if h.opts.Files == nil {
		http.NotFound(w, r)
		return
	}
	fsys := h.opts.Files.FS()
	if fsys == nil {
		http.Error(w, "filesystem not mounted", http.StatusServiceUnavailable)
		return
	}
	http.FileServerFS(fsys).ServeHTTP(w, r)
}

func (h *HTTPFrontEnd) handleStatus(w http.ResponseWriter, r *http.Request) {
	var doc any = struct{}{}
	if h.opts.Status != nil {
		doc = h.opts.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		logging.Warn("Failed to write status", zap.Error(err))
	}
}

func (h *HTTPFrontEnd) handleConsole(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		logging.Debug("Console upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	if h.listener == nil {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.conns[conn] = false
	stopping := h.stopping
	h.mu.Unlock()

	remoteAddr := r.RemoteAddr
	logging.LogServiceEvent(NameHTTP, "console_connected", zap.String("remote_addr", remoteAddr))

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		_ = conn.Close()
		logging.LogServiceEvent(NameHTTP, "console_closed", zap.String("remote_addr", remoteAddr))
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("Console read error", zap.String("remote_addr", remoteAddr), zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}

			if !h.setBusy(conn, stopping, true) {
				return
			}
			reply, ok := h.submit(line, stopping)
			if !ok {
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(strings.Join(reply, "\n"))); err != nil {
				logging.Debug("Console write error", zap.String("remote_addr", remoteAddr), zap.Error(err))
				return
			}
			if !h.setBusy(conn, stopping, false) {
				return
			}
		}
	}
}

// setBusy marks conn as waiting for a reply or idle. It reports false once the
// front end the connection was accepted by has stopped.
func (h *HTTPFrontEnd) setBusy(conn *websocket.Conn, stopping <-chan struct{}, busy bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-stopping:
		return false
	default:
	}
	if _, ok := h.conns[conn]; !ok {
		return false
	}
	h.conns[conn] = busy
	return true
}

// submit queues line for the event loop and waits for its reply. Once queued the
// reply is awaited even if the front end stops meanwhile. It reports false when the
// front end stopped before the line was queued.
func (h *HTTPFrontEnd) submit(line string, stopping <-chan struct{}) ([]string, bool) {
	replies := make(chan []string, 1)
	req := ConsoleRequest{Line: line, Reply: replies}

	select {
	case h.console <- req:
	case <-stopping:
		return nil, false
	default:
		return []string{"echo:Console busy, try again"}, true
	}

	select {
	case reply := <-replies:
		return reply, true
	case <-time.After(replyWait):
		return []string{"echo:Command timed out"}, true
	}
}
