package models

import "encoding/json"

// Setting is one configuration value attached to an owner record. Values are
// inherited along the owner's fallback chain.
type Setting struct {
	OwnerKind string          `json:"ownerKind" db:"owner_kind" example:"facility"`
	OwnerID   int64           `json:"ownerId" db:"owner_id" example:"1"`
	Key       string          `json:"key" db:"key" example:"department_label"`
	Value     json.RawMessage `json:"value" db:"value" swaggertype:"object"`
	Audit
}
