package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"mail-dispatch-service/internal/model"
)

// AuditRepository persists failure-audit records: provider rejections with
// the attempted recipient snapshot, and failed event publishes kept for
// replay. Nothing here is ever surfaced to the dispatch caller.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// RecordDispatchFailure stores a whole-batch provider rejection.
func (r *AuditRepository) RecordDispatchFailure(ctx context.Context, senderEmail string, recipients []model.RecipientSpec, providerErr string) error {
	snapshot, err := json.Marshal(recipients)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dispatch_failures (sender_email, recipients, error_message, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err = r.db.Exec(ctx, query, senderEmail, snapshot, providerErr)
	return err
}

// RecordPublishFailure stores a failed event publish so it can be replayed.
func (r *AuditRepository) RecordPublishFailure(ctx context.Context, emailID, routingKey string, payload any, errMsg string) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO failed_events (email_id, routing_key, payload, error_message, status)
		VALUES ($1, $2, $3, $4, 'pending')
		ON CONFLICT DO NOTHING
	`
	_, err = r.db.Exec(ctx, query, emailID, routingKey, payloadJSON, errMsg)
	return err
}
