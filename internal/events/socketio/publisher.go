// Package socketio publishes import events to a Socket.IO server, e.g. a
// live scene preview that follows what is being imported.
package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/vk/scenegridgo/internal/events"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultEvent = "scene_import"

// Config holds the connection settings of a Publisher.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Publisher emits every import event as one Socket.IO message.
type Publisher struct {
	io    *socket.Socket
	event string
}

// Dial connects to the server described by cfg and waits for the
// connection to be established.
func Dial(ctx context.Context, cfg Config) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("events URL %q must include a scheme and a host", cfg.URL)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.Event == "" {
		cfg.Event = defaultEvent
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	// A failed dial is reported to the caller instead of retried forever.
	opts.SetReconnection(false)

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connected := make(chan error, 1)
	report := func(err error) {
		select {
		case connected <- err:
		default:
		}
	}
	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to events server.", "sid", io.Id())
		report(nil)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				report(err)
				return
			}
		}
		report(errors.New("connect_error"))
	})

	io.Connect()

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	select {
	case <-dialCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out connecting to events server %s", cfg.URL)
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("failed to connect to events server %s: %w", cfg.URL, err)
		}
	}

	return &Publisher{io: io, event: cfg.Event}, nil
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, e events.Event) {
	if err := p.io.Emit(p.event, payload(e)); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to emit import event.", "kind", e.Kind, "path", e.Path, "error", err)
	}
}

// Close disconnects from the server.
func (p *Publisher) Close() {
	p.io.Disconnect()
}

func payload(e events.Event) map[string]any {
	m := map[string]any{
		"kind":  string(e.Kind),
		"path":  e.Path,
		"depth": e.Depth,
	}
	if e.Error != "" {
		m["error"] = e.Error
	}
	return m
}
