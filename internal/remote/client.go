package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/wifid/internal/status"
)

const (
	// DefaultTimeout bounds one request, including the wait for a command reply
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed connections
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay before the first retry
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second
)

// Client is a connection to one device's HTTP front end.
type Client struct {
	// Addr is the front end address as host:port
	Addr string

	HTTPClient *http.Client
	Dialer     *websocket.Dialer
	Timeout    time.Duration

	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewClient creates a client for the front end at addr.
func NewClient(addr string) *Client {
	return &Client{
		Addr:          addr,
		HTTPClient:    &http.Client{Timeout: DefaultTimeout},
		Dialer:        &websocket.Dialer{HandshakeTimeout: DefaultTimeout},
		Timeout:       DefaultTimeout,
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
	}
}

// Exec runs one command line on the device and returns its status lines.
func (c *Client) Exec(ctx context.Context, line string) ([]string, error) {
	var lines []string
	err := c.retry(ctx, func() error {
		var err error
		lines, err = c.execAttempt(ctx, line)
		return err
	})
	return lines, err
}

func (c *Client) execAttempt(ctx context.Context, line string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	conn, resp, err := c.Dialer.DialContext(ctx, "ws://"+c.Addr+"/ws", nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, &Error{Op: "console", StatusCode: resp.StatusCode, Retryable: resp.StatusCode >= 500}
		}
		return nil, &Error{Op: "console", Err: err, Retryable: true}
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return nil, &Error{Op: "console write", Err: err}
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, &Error{Op: "console read", Err: err}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))

	if len(msg) == 0 {
		return nil, nil
	}
	return strings.Split(string(msg), "\n"), nil
}

// Status fetches the device status document.
func (c *Client) Status(ctx context.Context) (*status.Status, error) {
	var st *status.Status
	err := c.retry(ctx, func() error {
		var err error
		st, err = c.statusAttempt(ctx)
		return err
	})
	return st, err
}

func (c *Client) statusAttempt(ctx context.Context) (*status.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+c.Addr+"/status", nil)
	if err != nil {
		return nil, &Error{Op: "status", Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Op: "status", Err: err, Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: "status", StatusCode: resp.StatusCode, Retryable: resp.StatusCode >= 500}
	}

	var st status.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, &Error{Op: "status", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return &st, nil
}

// retry runs attempt until it succeeds, fails with a non-retryable error or the
// retries are exhausted.
func (c *Client) retry(ctx context.Context, attempt func() error) error {
	var lastErr error
	delay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
			if delay > c.MaxRetryDelay {
				delay = c.MaxRetryDelay
			}
		}

		lastErr = attempt()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
