package sink

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/feed"
)

// Broadcaster fans payloads out to live subscribers.
type Broadcaster interface {
	Broadcast(payload []byte) bool
}

// Hub pushes dated entries to websocket subscribers.
type Hub struct {
	hub    Broadcaster
	logger *zap.Logger
}

func NewHub(hub Broadcaster, logger *zap.Logger) *Hub {
	return &Hub{hub: hub, logger: logger}
}

func (s *Hub) Name() string { return "websocket" }

func (s *Hub) Deliver(_ context.Context, entry feed.DatedEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("encoding entry", zap.String("id", entry.Entry.ID), zap.Error(err))
		return
	}
	if !s.hub.Broadcast(payload) {
		s.logger.Debug("entry dropped by hub", zap.String("id", entry.Entry.ID))
	}
}
