// Package sink holds the consumers the pull connector forwards dated
// notifications to.
package sink

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/config"
	"github.com/dgnsrekt/notifications-monitor/internal/connector"
	"github.com/dgnsrekt/notifications-monitor/internal/notify"
)

// Set is the ordered sink list plus whatever must run or be closed alongside it.
type Set struct {
	Sinks   []connector.Sink
	runners []func(context.Context)
	closers []io.Closer
}

// Build assembles sinks in a fixed order: file, ntfy, websocket. hub may be
// nil when the websocket sink is disabled.
func Build(cfg config.SinksConfig, hub Broadcaster, logger *zap.Logger) (*Set, error) {
	set := &Set{}

	if cfg.File.Enabled {
		f, err := NewFile(cfg.File.Path, cfg.File.Compress, logger.Named("file"))
		if err != nil {
			return nil, err
		}
		set.Sinks = append(set.Sinks, f)
		set.closers = append(set.closers, f)
	}

	if cfg.Ntfy.Enabled {
		ntfyCfg := cfg.Ntfy
		n := NewNtfy(notify.New(&ntfyCfg, logger), cfg.Ntfy.Buffer, logger.Named("ntfy"))
		set.Sinks = append(set.Sinks, n)
		set.runners = append(set.runners, n.Run)
	}

	if cfg.WebSocket.Enabled {
		if hub == nil {
			_ = set.Close()
			return nil, errors.New("websocket sink enabled without a hub")
		}
		set.Sinks = append(set.Sinks, NewHub(hub, logger.Named("websocket")))
	}

	return set, nil
}

// Names lists the sinks in delivery order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Sinks))
	for _, sk := range s.Sinks {
		names = append(names, sk.Name())
	}
	return names
}

// Start launches background workers. They stop when ctx is cancelled.
func (s *Set) Start(ctx context.Context) {
	for _, run := range s.runners {
		go run(ctx)
	}
}

// Close releases file handles.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
