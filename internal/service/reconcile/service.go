// Package reconcile applies asynchronous provider delivery events to
// tracking records. Events arrive out of order and arbitrarily many
// times; application is last-applied-wins with no timestamp ordering.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mail-dispatch-service/internal/docstore"
	"mail-dispatch-service/internal/mailer"
	"mail-dispatch-service/internal/model"
	"mail-dispatch-service/pkg/logger"
	"mail-dispatch-service/pkg/metrics"
)

type Service struct {
	store  docstore.Store
	logger *zap.Logger
}

func NewService(store docstore.Store, log *zap.Logger) *Service {
	return &Service{store: store, logger: log}
}

// ProcessEvents applies every element of the payload array, each one
// isolated: an undecodable element, a malformed event, an unknown
// emailId, or a store error on one event never aborts its siblings.
// Events are applied concurrently with no ordering guarantee among them.
func (s *Service) ProcessEvents(ctx context.Context, raw []json.RawMessage) {
	var wg sync.WaitGroup
	for _, item := range raw {
		wg.Add(1)
		go func(item json.RawMessage) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					metrics.RecordWebhookEvent("failed")
					logger.WithTrace(ctx, s.logger).Error("panic applying webhook event",
						zap.Any("panic", r),
						zap.ByteString("event", item),
					)
				}
			}()

			var ev model.WebhookEvent
			if err := json.Unmarshal(item, &ev); err != nil {
				metrics.RecordWebhookEvent("skipped")
				logger.WithTrace(ctx, s.logger).Info("skipping undecodable webhook event",
					zap.ByteString("event", item),
					zap.Error(err),
				)
				return
			}
			s.applyEvent(ctx, ev)
		}(item)
	}
	wg.Wait()
}

func (s *Service) applyEvent(ctx context.Context, ev model.WebhookEvent) {
	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("email_id", ev.EmailID),
		zap.String("event", ev.Event),
	)

	if ev.EmailID == "" || ev.Event == "" || ev.Timestamp == 0 {
		metrics.RecordWebhookEvent("skipped")
		log.Info("skipping malformed webhook event", zap.Any("payload", ev))
		return
	}

	status, ok := model.MapEventStatus(ev.Event)
	if !ok {
		metrics.RecordWebhookEvent("skipped")
		log.Info("skipping unsupported webhook event type")
		return
	}

	trackingPath := docstore.TrackingPath(ev.EmailID)

	var record model.TrackingRecord
	err := s.store.Get(ctx, trackingPath, &record)
	if errors.Is(err, docstore.ErrNotFound) {
		metrics.RecordWebhookEvent("skipped")
		log.Info("no tracking record for webhook event")
		return
	}
	if err != nil {
		metrics.RecordWebhookEvent("failed")
		log.Error("failed to load tracking record", zap.Error(err))
		return
	}
	if record.Recipients == nil {
		metrics.RecordWebhookEvent("skipped")
		log.Info("tracking record has no recipients map")
		return
	}

	eventTime := time.Unix(ev.Timestamp, 0).UTC()

	// Only the event's own recipient slot is written, so sibling events
	// for other recipients of the same message never clobber each other.
	// The slot itself is overwritten unconditionally: whichever event is
	// applied last wins, regardless of its wall-clock timestamp.
	slot := model.PerRecipientStatus{
		Email:     ev.Email,
		Status:    status,
		Timestamp: eventTime,
		Reason:    ev.Reason,
		Code:      ev.Status,
		IP:        ev.IP,
		UserAgent: ev.UserAgent,
		Response:  ev.Response,
	}
	slotField := "recipients." + mailer.SanitizeKey(ev.Email)

	if err := s.store.Update(ctx, trackingPath, map[string]any{slotField: slot}); err != nil {
		metrics.RecordWebhookEvent("failed")
		log.Error("failed to update tracking record", zap.Error(err))
		return
	}

	// Terminal statuses propagate to the primary recipient's personal
	// copies only. CC/BCC statuses stay inside the tracking record.
	if (status == model.StatusDelivered || status == model.StatusFailed) && ev.Email == record.RecipientEmail {
		s.propagateStatus(ctx, log, &record, status, eventTime)
	}

	metrics.RecordWebhookEvent("applied")
}

func (s *Service) propagateStatus(ctx context.Context, log *zap.Logger, record *model.TrackingRecord, status string, at time.Time) {
	fields := map[string]any{
		"status":   status,
		"statusAt": at,
	}

	inboxPath := docstore.InboxPath(record.RecipientKey, record.EmailID)
	if err := s.store.Update(ctx, inboxPath, fields); err != nil {
		log.Warn("failed to propagate status to inbox copy",
			zap.String("path", inboxPath),
			zap.Error(err),
		)
	}

	sentPath := docstore.SentPath(record.SenderKey, record.EmailID)
	if err := s.store.Update(ctx, sentPath, fields); err != nil {
		log.Warn("failed to propagate status to sent copy",
			zap.String("path", sentPath),
			zap.Error(err),
		)
	}
}
