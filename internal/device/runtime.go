package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muurk/wifid/internal/logging"
	"github.com/muurk/wifid/internal/services"
	"github.com/muurk/wifid/internal/ui"
	"go.uber.org/zap"
)

const (
	// Console lines waiting for the event loop
	inputQueue = 16

	// Maximum command lines executed per loop iteration and source
	linesPerStep = 4
)

// Runtime drives a Device: one cooperative loop that polls the sub-services and
// executes queued command lines.
type Runtime struct {
	dev      *Device
	interval time.Duration
	out      io.Writer
	styled   bool
	input    chan string
}

// NewRuntime creates a runtime writing console replies to out. With styled set the
// replies are rendered for an interactive terminal.
func (d *Device) NewRuntime(out io.Writer, styled bool) *Runtime {
	interval := d.cfg.LoopInterval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &Runtime{
		dev:      d,
		interval: interval,
		out:      out,
		styled:   styled,
		input:    make(chan string, inputQueue),
	}
}

// Attach reads command lines from in until EOF and queues them for the loop.
func (r *Runtime) Attach(in io.Reader) {
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			r.input <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logging.Warn("Console input failed", zap.Error(err))
			return
		}
		logging.Debug("Console input closed")
	}()
}

// Boot applies the persisted radio mode and starts the sub-services.
func (r *Runtime) Boot(ctx context.Context) {
	res, err := r.dev.mode.Boot(ctx)
	if err != nil {
		logging.Warn("Boot apply failed", zap.Error(err))
		return
	}
	if res.ServiceErr != nil {
		for _, f := range services.StartFailures(res.ServiceErr) {
			logging.Warn("Sub-service did not start at boot",
				zap.String("service", f.Service),
				zap.Bool("critical", f.Critical),
				zap.Error(f.Err),
			)
		}
	}
	logging.Info("Device booted",
		zap.String("mode", res.Mode.String()),
		zap.Bool("services_started", res.ServicesStarted),
	)
}

// Step runs one loop iteration: a sub-service poll followed by at most a few queued
// command lines from each source. It never waits for input.
func (r *Runtime) Step(ctx context.Context) {
	r.dev.orch.Handle()

input:
	for i := 0; i < linesPerStep; i++ {
		select {
		case line := <-r.input:
			r.execConsole(ctx, line)
		default:
			break input
		}
	}

	console := r.consoleRequests()
	if console == nil {
		return
	}
	for i := 0; i < linesPerStep; i++ {
		select {
		case req := <-console:
			req.Reply <- r.dev.dispatcher.Execute(ctx, req.Line)
		default:
			return
		}
	}
}

// Run boots the device and loops until ctx is cancelled, then stops every
// sub-service and the radio.
func (r *Runtime) Run(ctx context.Context) error {
	r.Boot(ctx)
	r.prompt()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.dev.Shutdown()
			r.refusePending()
			return nil
		case <-ticker.C:
			r.Step(ctx)
		}
	}
}

// Exec runs one command line outside the loop and returns the rendered reply.
func (r *Runtime) Exec(ctx context.Context, line string) string {
	return ui.RenderReply(r.dev.dispatcher.Execute(ctx, line), r.styled)
}

func (r *Runtime) execConsole(ctx context.Context, line string) {
	if strings.TrimSpace(line) == "" {
		r.prompt()
		return
	}
	fmt.Fprint(r.out, r.Exec(ctx, line))
	r.prompt()
}

func (r *Runtime) prompt() {
	if r.styled {
		fmt.Fprint(r.out, ui.Prompt(true))
	}
}

// refusePending answers websocket lines queued after the last iteration.
func (r *Runtime) refusePending() {
	console := r.consoleRequests()
	if console == nil {
		return
	}
	for {
		select {
		case req := <-console:
			req.Reply <- []string{"echo:Shutting down"}
		default:
			return
		}
	}
}

func (r *Runtime) consoleRequests() <-chan services.ConsoleRequest {
	if r.dev.http == nil {
		return nil
	}
	return r.dev.http.Console()
}
