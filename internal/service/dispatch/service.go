// Package dispatch orchestrates one batch send: validate and normalize
// recipients, build provider message specs, submit them in a single
// provider call, then write the tracking record and its denormalized
// copies for every dispatched recipient.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	mqcontracts "mail-dispatch-service/contracts/mq"
	"mail-dispatch-service/internal/docstore"
	"mail-dispatch-service/internal/mailer"
	"mail-dispatch-service/internal/model"
	"mail-dispatch-service/internal/provider"
	"mail-dispatch-service/pkg/logger"
	"mail-dispatch-service/pkg/metrics"
)

var (
	// ErrNoRecipients rejects an empty batch before any send attempt.
	ErrNoRecipients = errors.New("dispatch: empty recipient list")

	// ErrProviderRejected is the opaque error surfaced to the caller when
	// the provider rejects the whole call. Diagnostics go to the audit
	// record, never to the caller.
	ErrProviderRejected = errors.New("dispatch: provider rejected batch")
)

// Sender submits a batch of message specs to the delivery provider.
type Sender interface {
	SendBatch(ctx context.Context, specs []provider.MessageSpec) error
}

// FailureAuditor persists failure-audit records.
type FailureAuditor interface {
	RecordDispatchFailure(ctx context.Context, senderEmail string, recipients []model.RecipientSpec, providerErr string) error
	RecordPublishFailure(ctx context.Context, emailID, routingKey string, payload any, errMsg string) error
}

// EventPublisher publishes post-dispatch events. May be nil.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Service struct {
	store     docstore.Store
	sender    Sender
	builder   *mailer.Builder
	audit     FailureAuditor
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(
	store docstore.Store,
	sender Sender,
	builder *mailer.Builder,
	audit FailureAuditor,
	publisher EventPublisher,
	log *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		sender:    sender,
		builder:   builder,
		audit:     audit,
		publisher: publisher,
		logger:    log,
	}
}

// Dispatch validates the batch, submits every valid recipient to the
// provider in one call, and writes tracking state. The provider call is
// all-or-nothing: on rejection no tracking record is written for any
// recipient of the call. The tracking writes afterwards are best-effort
// and independent per recipient; the provider has already accepted the
// batch at that point, so a partial write failure leaves mail sent with
// incomplete tracking state, which is logged, not rolled back.
func (s *Service) Dispatch(ctx context.Context, batch model.DispatchBatch) (*model.DispatchResult, error) {
	log := logger.WithTrace(ctx, s.logger)

	if len(batch.Recipients) == 0 {
		return nil, ErrNoRecipients
	}

	outcome := mailer.ValidateRecipients(batch.Recipients)
	if len(outcome.Invalid) > 0 {
		metrics.RecordEmailDispatched("invalid", len(outcome.Invalid))
		log.Info("filtered invalid recipient addresses",
			zap.Int("count", len(outcome.Invalid)),
			zap.Strings("invalid", outcome.Invalid),
		)
	}

	result := &model.DispatchResult{
		Timestamp:     time.Now(),
		FailedCount:   len(outcome.Invalid),
		InvalidEmails: outcome.Invalid,
	}

	if len(outcome.Valid) == 0 {
		return result, nil
	}

	built := s.builder.Build(model.DispatchBatch{
		Recipients: outcome.Valid,
		Sender:     batch.Sender,
	})

	specs := make([]provider.MessageSpec, len(built))
	for i, m := range built {
		specs[i] = m.Spec
	}

	start := time.Now()
	err := s.sender.SendBatch(ctx, specs)
	if err != nil {
		metrics.RecordProviderCallLatency("error", time.Since(start))
		metrics.RecordEmailDispatched("failed", len(built))
		log.Error("provider rejected batch",
			zap.Int("recipients", len(built)),
			zap.Error(err),
		)
		if auditErr := s.audit.RecordDispatchFailure(ctx, batch.Sender.Email, outcome.Valid, err.Error()); auditErr != nil {
			log.Error("failed to persist dispatch failure audit", zap.Error(auditErr))
		}
		return nil, ErrProviderRejected
	}
	metrics.RecordProviderCallLatency("ok", time.Since(start))
	metrics.RecordEmailDispatched("sent", len(built))

	// One independent write set per recipient, joined before returning.
	var wg sync.WaitGroup
	for _, m := range built {
		wg.Add(1)
		go func(m mailer.BuiltMessage) {
			defer wg.Done()
			s.writeRecipientSet(ctx, m)
		}(m)
	}
	wg.Wait()

	result.Success = true
	result.SuccessfulCount = len(built)
	return result, nil
}

// writeRecipientSet persists one recipient's tracking record and
// denormalized copies. Each write is best-effort: a failure is logged and
// the remaining writes still run.
func (s *Service) writeRecipientSet(ctx context.Context, m mailer.BuiltMessage) {
	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("email_id", m.EmailID),
		zap.String("recipient", m.Recipient.To),
	)

	now := time.Now()
	recipientKey := mailer.SanitizeKey(m.Recipient.To)
	senderKey := mailer.SanitizeKey(m.Sender.Email)

	record := model.TrackingRecord{
		EmailID:        m.EmailID,
		RecipientKey:   recipientKey,
		SenderKey:      senderKey,
		RecipientEmail: m.Recipient.To,
		SenderEmail:    m.Sender.Email,
		SenderName:     m.Sender.Name,
		Subject:        m.Recipient.Subject,
		CreatedAt:      now,
		Sent:           true,
		Metadata: model.TrackingMetadata{
			CourseID:      m.Recipient.CourseID,
			CourseName:    m.Recipient.CourseName,
			UseDoNotReply: m.Recipient.UseDoNotReply,
		},
		Recipients: seedRecipients(m.Recipient, now),
	}

	s.write(ctx, log, "tracking", docstore.TrackingPath(m.EmailID), record)

	copyDoc := model.MessageCopy{
		EmailID:   m.EmailID,
		Subject:   m.Recipient.Subject,
		FromEmail: m.Sender.Email,
		FromName:  m.Sender.Name,
		ToEmail:   m.Recipient.To,
		HTML:      m.Recipient.HTML,
		Text:      m.Recipient.Text,
		Status:    model.StatusSent,
		StatusAt:  now,
		CreatedAt: now,
	}
	s.write(ctx, log, "inbox", docstore.InboxPath(recipientKey, m.EmailID), copyDoc)
	s.write(ctx, log, "sent", docstore.SentPath(senderKey, m.EmailID), copyDoc)

	s.write(ctx, log, "notification", docstore.NotificationPath(recipientKey, m.EmailID), model.NotificationEntry{
		EmailID:        m.EmailID,
		RecipientEmail: m.Recipient.To,
		Subject:        m.Recipient.Subject,
		Read:           false,
		CreatedAt:      now,
	})

	if m.Recipient.CourseID != "" {
		s.appendCourseNote(ctx, log, m, now)
	}

	s.publishDispatched(ctx, log, m, now)
}

func (s *Service) write(ctx context.Context, log *zap.Logger, doc, path string, value any) {
	start := time.Now()
	err := s.store.Set(ctx, path, value)
	metrics.RecordStoreWriteDuration(doc, time.Since(start))
	if err != nil {
		log.Error("document write failed",
			zap.String("doc", doc),
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

// appendCourseNote appends to the course's student-notes array through the
// store's optimistic transaction, so concurrent appenders do not clobber
// each other.
func (s *Service) appendCourseNote(ctx context.Context, log *zap.Logger, m mailer.BuiltMessage, now time.Time) {
	note := model.CourseNote{
		EmailID:        m.EmailID,
		CourseName:     m.Recipient.CourseName,
		RecipientEmail: m.Recipient.To,
		Subject:        m.Recipient.Subject,
		CreatedAt:      now,
	}

	path := docstore.CourseNotesPath(m.Recipient.CourseID)
	start := time.Now()
	err := s.store.RunTransaction(ctx, path, func(current []byte) (any, error) {
		var notes []model.CourseNote
		if current != nil {
			if err := json.Unmarshal(current, &notes); err != nil {
				return nil, err
			}
		}
		return append(notes, note), nil
	})
	metrics.RecordStoreWriteDuration("course_note", time.Since(start))
	if err != nil {
		log.Error("course note append failed",
			zap.String("course_id", m.Recipient.CourseID),
			zap.Error(err),
		)
	}
}

func (s *Service) publishDispatched(ctx context.Context, log *zap.Logger, m mailer.BuiltMessage, now time.Time) {
	if s.publisher == nil {
		return
	}

	payload := mqcontracts.EmailDispatchedPayload{
		EmailID:        m.EmailID,
		RecipientEmail: m.Recipient.To,
		SenderEmail:    m.Sender.Email,
		Subject:        m.Recipient.Subject,
		CourseID:       m.Recipient.CourseID,
		DispatchedAt:   now,
	}

	if err := s.publisher.Publish(ctx, "email.dispatched", payload); err != nil {
		log.Error("failed to publish email.dispatched", zap.Error(err))
		if auditErr := s.audit.RecordPublishFailure(ctx, m.EmailID, "email.dispatched", payload, err.Error()); auditErr != nil {
			log.Error("failed to persist publish failure", zap.Error(auditErr))
		}
	}
}

// seedRecipients builds the initial recipients map: every to/cc/bcc
// address starts as "sent" before any webhook event can arrive.
func seedRecipients(spec model.RecipientSpec, now time.Time) map[string]model.PerRecipientStatus {
	recipients := make(map[string]model.PerRecipientStatus, 1+len(spec.Cc)+len(spec.Bcc))

	add := func(addr string) {
		recipients[mailer.SanitizeKey(addr)] = model.PerRecipientStatus{
			Email:     addr,
			Status:    model.StatusSent,
			Timestamp: now,
		}
	}

	add(spec.To)
	for _, cc := range spec.Cc {
		add(cc)
	}
	for _, bcc := range spec.Bcc {
		add(bcc)
	}
	return recipients
}
