package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/needanevo/Handyman-app-sub000/internal/logger"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
)

// Pusher delivers a payload to a user's live connections.
type Pusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Service delivers events over the websocket hub and persists them. Email
// and SMS channels are stubs that only log; real providers plug in behind
// the same call.
type Service struct {
	pusher Pusher
	store  NotificationStore
}

func NewService(pusher Pusher, store NotificationStore) *Service {
	return &Service{pusher: pusher, store: store}
}

// Notify is best effort on every channel: a delivery failure is logged and
// never surfaced to the caller. The hub persists each pushed event through
// its saver, so the store is written directly only when no pusher is wired.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, event string, payload interface{}) {
	if s.pusher != nil {
		if err := s.pusher.BroadcastToUser(userID, event, payload); err != nil {
			logger.Log.WithError(err).WithField("event", event).Warn("notify: websocket push failed")
		}
	} else {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Log.WithError(err).WithField("event", event).Warn("notify: cannot marshal payload")
			return
		}
		if err := s.store.Create(ctx, &models.Notification{
			ID:     uuid.New(),
			UserID: userID,
			Event:  event,
			Data:   data,
		}); err != nil {
			logger.Log.WithError(err).WithField("event", event).Warn("notify: failed to persist notification")
		}
	}

	// Email/SMS stub. TODO: wire a real provider once one is chosen.
	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID,
		"event":   event,
	}).Debug("notify: email/sms dispatch skipped (stub)")
}

// SaverAdapter lets the websocket hub persist notifications through the
// same store.
type SaverAdapter struct {
	store NotificationStore
}

func NewSaverAdapter(store NotificationStore) *SaverAdapter {
	return &SaverAdapter{store: store}
}

func (a *SaverAdapter) CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return a.store.Create(ctx, &models.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Event:  event,
		Data:   raw,
	})
}
