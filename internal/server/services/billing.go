package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/dbx"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/billing"
	"github.com/instantbranding/brandkit/internal/server/models"
	"github.com/instantbranding/brandkit/internal/server/repositories/repomanager"
)

// WebhookResult tells the caller what a delivery did.
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Duplicate bool   `json:"duplicate"`
	Ignored   bool   `json:"ignored"`
}

type BillingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    *billing.Verifier
	prices      map[string]string
	log         logging.Logger
}

// NewBillingService takes the webhook verifier and the price id to plan map
// used when an event carries no explicit plan.
func NewBillingService(db *sql.DB, m repomanager.RepositoryManager, v *billing.Verifier, prices map[string]string, log logging.Logger) *BillingService {
	return &BillingService{db: db, repomanager: m, verifier: v, prices: prices, log: log.With("module", "billing")}
}

// ProcessWebhook verifies, decodes and applies one delivery. Replays of an
// already processed event id succeed without writing anything. The ledger
// row and the plan change commit together or not at all.
func (s *BillingService) ProcessWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if err := s.verifier.Verify(signature, body); err != nil {
		s.log.Warn(ctx, "webhook rejected", "error", err)
		return nil, err
	}

	ev, err := billing.ParseEvent(body)
	if err != nil {
		return nil, err
	}
	res := &WebhookResult{EventID: ev.EventID, EventType: ev.EventType}

	if !ev.Handled() {
		s.log.Debug(ctx, "webhook event ignored", "event_id", ev.EventID, "event_type", ev.EventType)
		res.Ignored = true
		return res, nil
	}

	change, err := ev.Resolve(s.prices)
	if err != nil {
		return nil, err
	}
	if !isUUID(change.UserID) {
		return nil, common.NewValidationError("custom_data.user_id", "must be a uuid")
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fresh, err := s.repomanager.BillingEvents(tx).Record(ctx, &models.BillingEvent{
			EventID:   ev.EventID,
			EventType: ev.EventType,
			UserID:    change.UserID,
		})
		if err != nil {
			return err
		}
		if !fresh {
			res.Duplicate = true
			return nil
		}
		if err := s.repomanager.Users(tx).UpdatePlan(ctx, change.UserID, change.Plan, change.SubscriptionID, change.Status); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("billing event %s: user %s: %w", ev.EventID, change.UserID, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "webhook processing failed", "event_id", ev.EventID, "error", err)
		return nil, err
	}

	if res.Duplicate {
		s.log.Info(ctx, "webhook replay acknowledged", "event_id", ev.EventID)
	} else {
		s.log.Info(ctx, "plan updated", "event_id", ev.EventID, "user_id", change.UserID, "plan", change.Plan)
	}
	return res, nil
}
