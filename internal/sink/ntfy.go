package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/feed"
	"github.com/dgnsrekt/notifications-monitor/internal/notify"
)

const defaultNtfyBuffer = 64

// Ntfy publishes each entry as a push notification. Deliver only enqueues;
// Run performs the HTTP calls so a slow ntfy server never stalls the connector.
type Ntfy struct {
	notifier notify.Notifier
	queue    chan feed.DatedEntry
	logger   *zap.Logger
}

func NewNtfy(notifier notify.Notifier, buffer int, logger *zap.Logger) *Ntfy {
	if buffer < 1 {
		buffer = defaultNtfyBuffer
	}
	return &Ntfy{
		notifier: notifier,
		queue:    make(chan feed.DatedEntry, buffer),
		logger:   logger,
	}
}

func (s *Ntfy) Name() string { return "ntfy" }

func (s *Ntfy) Deliver(_ context.Context, entry feed.DatedEntry) {
	select {
	case s.queue <- entry:
	default:
		s.logger.Warn("ntfy queue full, dropping notification", zap.String("id", entry.Entry.ID))
	}
}

// Run publishes queued entries until ctx is cancelled.
func (s *Ntfy) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-s.queue:
			if err := s.notifier.Publish(ctx, notify.FormatEntryMessage(entry)); err != nil {
				s.logger.Warn("publishing notification",
					zap.String("id", entry.Entry.ID),
					zap.Error(err),
				)
			}
		}
	}
}
