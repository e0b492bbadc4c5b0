// Package services contains the server-side business logic. Services own
// transactions and ownership rules; repositories only run SQL. Every
// operation takes the already authenticated user id.
package services

import (
	"github.com/google/uuid"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/server/fieldmap"
)

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// decodePayload maps an external payload onto a record and reports type
// mismatches as validation errors.
func decodePayload(t *fieldmap.Table, payload map[string]any, dst any) error {
	if payload == nil {
		return &common.ValidationError{Message: t.Name() + " payload is required"}
	}
	if err := t.DecodeMap(payload, dst); err != nil {
		return &common.ValidationError{Message: err.Error()}
	}
	return nil
}
