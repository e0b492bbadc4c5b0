package billing

import (
	"encoding/json"
	"fmt"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/server/models"
)

// Handled event types.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionCanceled  = "subscription.canceled"
)

// Event is the part of a webhook payload the processor cares about.
type Event struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Data      struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		CustomData struct {
			UserID string `json:"user_id"`
			Plan   string `json:"plan"`
		} `json:"custom_data"`
		Items []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"items"`
	} `json:"data"`
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, &common.ValidationError{Message: "malformed webhook payload: " + err.Error()}
	}
	if ev.EventID == "" || ev.EventType == "" {
		return nil, &common.ValidationError{
			Message: "malformed webhook payload",
			Fields:  map[string]string{"event_id": "and event_type are required"},
		}
	}
	return &ev, nil
}

// Handled reports whether the event changes subscription state.
func (e *Event) Handled() bool {
	switch e.EventType {
	case EventSubscriptionCreated, EventSubscriptionActivated, EventSubscriptionUpdated, EventSubscriptionCanceled:
		return true
	}
	return false
}

// PlanChange is the user row update derived from a handled event.
type PlanChange struct {
	UserID         string
	Plan           string
	SubscriptionID string
	Status         string
}

// Resolve derives the plan change. The plan comes from custom_data, then from
// the first item's price id in prices. Cancellation always means the free plan.
func (e *Event) Resolve(prices map[string]string) (*PlanChange, error) {
	userID := e.Data.CustomData.UserID
	if userID == "" {
		return nil, common.NewValidationError("custom_data.user_id", "is required")
	}

	pc := &PlanChange{
		UserID:         userID,
		SubscriptionID: e.Data.ID,
		Status:         e.Data.Status,
	}

	if e.EventType == EventSubscriptionCanceled {
		pc.Plan = models.PlanFree
		if pc.Status == "" {
			pc.Status = "canceled"
		}
		return pc, nil
	}

	pc.Plan = e.Data.CustomData.Plan
	if pc.Plan == "" {
		for _, it := range e.Data.Items {
			if p, ok := prices[it.Price.ID]; ok {
				pc.Plan = p
				break
			}
		}
	}
	if pc.Plan == "" {
		return nil, fmt.Errorf("event %s: %w", e.EventID,
			common.NewValidationError("custom_data.plan", "no plan and no known price id"))
	}
	return pc, nil
}
