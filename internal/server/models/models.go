// Package models holds the server-side records persisted in PostgreSQL.
//
// JSON tags use the internal camelCase names; the external snake_case names
// accepted and produced by the HTTP API live in package fieldmap.
package models

import (
	"encoding/json"
	"time"
)

// UpsertAction tells the caller whether an upsert inserted or updated a row.
type UpsertAction string

const (
	ActionCreated UpsertAction = "created"
	ActionUpdated UpsertAction = "updated"
)

// Onboarding states. The only allowed transition is pending -> complete.
const (
	OnboardingPending  = "PENDING"
	OnboardingComplete = "COMPLETE"
)

const PlanFree = "free"

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Plan               string    `json:"plan"`
	SubscriptionID     string    `json:"subscriptionId"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	OnboardingStatus   string    `json:"onboardingStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type Brand struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Name          string          `json:"name"`
	Config        json.RawMessage `json:"config"`
	SocialLinks   json.RawMessage `json:"socialLinks"`
	Images        json.RawMessage `json:"images"`
	InfoQuestions json.RawMessage `json:"infoQuestions"`
	BrandMark     json.RawMessage `json:"brandMark"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Design struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	BrandID    string          `json:"brandId"`
	AssetType  string          `json:"assetType"`
	StyleID    int             `json:"styleId"`
	TemplateID int             `json:"templateId"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// DesignPatch is a partial design update. Empty strings, nil pointers and
// nil data keep the stored values.
type DesignPatch struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	BrandID    string          `json:"brandId"`
	AssetType  string          `json:"assetType"`
	StyleID    *int            `json:"styleId"`
	TemplateID *int            `json:"templateId"`
	Data       json.RawMessage `json:"data"`
}

type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BrandID   string    `json:"brandId"`
	Content   string    `json:"content"`
	Hook      string    `json:"hook"`
	CreatedAt time.Time `json:"createdAt"`
}

// BillingEvent is the idempotency ledger row of a processed webhook.
type BillingEvent struct {
	EventID     string
	EventType   string
	UserID      string
	ProcessedAt time.Time
}

// DraftDesign is a design created locally before sign-in.
type DraftDesign struct {
	TempID     string          `json:"tempId"`
	AssetType  string          `json:"assetType"`
	TemplateID int             `json:"templateId"`
	StyleID    int             `json:"styleId"`
	Data       json.RawMessage `json:"data"`
	Timestamp  int64           `json:"timestamp"`
}

// DraftImport is the local draft payload replayed into the account after
// sign-in. Brand holds the partial brand keyed by external or internal
// field names.
type DraftImport struct {
	Brand   map[string]any `json:"brand"`
	Designs []DraftDesign  `json:"designs"`
	Version int            `json:"version"`
}

// DraftImportResult reports what a draft import wrote.
type DraftImportResult struct {
	Brand   *Brand       `json:"brand"`
	Action  UpsertAction `json:"action"`
	Designs []*Design    `json:"designs"`
}
