package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/metrics"
	"go.uber.org/zap"
)

const (
	// DefaultUpdatePort is the port the update receiver listens on
	DefaultUpdatePort = 3232

	// DefaultMaxImageSize bounds a single uploaded image
	DefaultMaxImageSize = 16 << 20

	// pending progress events between polls
	updateEventQueue = 64
)

// UpdateStage is the progress of one upload.
type UpdateStage string

// Upload stages.
const (
	UpdateStarted   UpdateStage = "started"
	UpdateCompleted UpdateStage = "completed"
	UpdateFailed    UpdateStage = "failed"
)

// UpdateEvent reports upload progress to the event loop.
type UpdateEvent struct {
	ID    string
	Stage UpdateStage
	Bytes int64
	Path  string
	Err   error
}

// UpdateOptions configures the update receiver.
type UpdateOptions struct {
	Host            string
	Port            int
	Dir             string
	MaxImageSize    int64
	ShutdownTimeout time.Duration
}

// UpdateService receives update images over HTTP and stages them on disk.
// Applying a staged image is left to the host.
type UpdateService struct {
	opts   UpdateOptions
	events chan UpdateEvent

	mu       sync.Mutex
	listener *httpListener
	last     *UpdateEvent
	dropped  int
}

// NewUpdateService creates an update receiver.
func NewUpdateService(opts UpdateOptions) *UpdateService {
	if opts.MaxImageSize <= 0 {
		opts.MaxImageSize = DefaultMaxImageSize
	}
	return &UpdateService{
		opts:   opts,
		events: make(chan UpdateEvent, updateEventQueue),
	}
}

// Name implements Service
func (u *UpdateService) Name() string { return NameUpdate }

// Begin prepares the staging directory and starts listening.
func (u *UpdateService) Begin(Env) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.listener != nil {
		return nil
	}
	if err := os.MkdirAll(u.opts.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /update", u.handleUpload)

	addr := net.JoinHostPort(u.opts.Host, strconv.Itoa(u.opts.Port))
	l, err := listenHTTP(NameUpdate, addr, mux)
	if err != nil {
		return err
	}
	u.listener = l
	return nil
}

// End stops the receiver. Uploads in flight are cut off after the shutdown timeout.
func (u *UpdateService) End() error {
	u.mu.Lock()
	l := u.listener
	u.listener = nil
	u.mu.Unlock()

	if l == nil {
		return nil
	}
	return l.shutdown(u.opts.ShutdownTimeout)
}

// Running implements Service
func (u *UpdateService) Running() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.listener != nil
}

// Handle drains pending progress events without blocking.
func (u *UpdateService) Handle() {
	for {
		select {
		case ev := <-u.events:
			u.record(ev)
		default:
			return
		}
	}
}

// Addr returns the bound listen address, or "" when stopped.
func (u *UpdateService) Addr() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.listener == nil {
		return ""
	}
	return u.listener.addr()
}

// LastEvent returns the most recent progress event seen by Handle.
func (u *UpdateService) LastEvent() (UpdateEvent, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.last == nil {
		return UpdateEvent{}, false
	}
	return *u.last, true
}

// Dropped returns the number of progress events lost to a full queue.
func (u *UpdateService) Dropped() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.dropped
}

func (u *UpdateService) record(ev UpdateEvent) {
	u.mu.Lock()
	u.last = &ev
	u.mu.Unlock()

	fields := []zap.Field{
		zap.String("id", ev.ID),
		zap.String("stage", string(ev.Stage)),
		zap.Int64("bytes", ev.Bytes),
		zap.String("size", humanize.IBytes(uint64(ev.Bytes))),
	}
	if ev.Err != nil {
		logging.Warn("Update failed", append(fields, zap.Error(ev.Err))...)
		return
	}
	if ev.Path != "" {
		fields = append(fields, zap.String("path", ev.Path))
	}
	logging.LogServiceEvent(NameUpdate, string(ev.Stage), fields...)
}

// emit never blocks the upload; events beyond the queue are dropped.
func (u *UpdateService) emit(ev UpdateEvent) {
	select {
	case u.events <- ev:
	default:
		u.mu.Lock()
		u.dropped++
		u.mu.Unlock()
	}
}

type uploadResponse struct {
	ID    string `json:"id"`
	Bytes int64  `json:"bytes"`
	Error string `json:"error,omitempty"`
}

func (u *UpdateService) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	u.emit(UpdateEvent{ID: id, Stage: UpdateStarted})

	n, path, err := u.stage(id, http.MaxBytesReader(w, r.Body, u.opts.MaxImageSize))
	metrics.UpdateBytesTotal.Add(float64(n))

	if err != nil {
		u.emit(UpdateEvent{ID: id, Stage: UpdateFailed, Bytes: n, Err: err})

		status := http.StatusInternalServerError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			status = http.StatusRequestEntityTooLarge
			err = fmt.Errorf("image exceeds %s", humanize.IBytes(uint64(maxErr.Limit)))
		case errors.Is(err, errEmptyImage):
			status = http.StatusBadRequest
		}
		writeUploadResponse(w, status, uploadResponse{ID: id, Bytes: n, Error: err.Error()})
		return
	}

	u.emit(UpdateEvent{ID: id, Stage: UpdateCompleted, Bytes: n, Path: path})
	writeUploadResponse(w, http.StatusOK, uploadResponse{ID: id, Bytes: n})
}

var errEmptyImage = errors.New("empty update image")

// stage writes body to <dir>/<id>.bin, going through a partial file so a cut-off
// upload never leaves a complete-looking image behind.
func (u *UpdateService) stage(id string, body io.Reader) (int64, string, error) {
	final := filepath.Join(u.opts.Dir, id+".bin")
	partial := final + ".part"

	f, err := os.OpenFile(partial, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create staging file: %w", err)
	}

	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n == 0 {
		err = errEmptyImage
	}
	if err != nil {
		_ = os.Remove(partial)
		return n, "", err
	}

	if err := os.Rename(partial, final); err != nil {
		_ = os.Remove(partial)
		return n, "", fmt.Errorf("failed to stage image: %w", err)
	}
	return n, final, nil
}

func writeUploadResponse(w http.ResponseWriter, status int, resp uploadResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
