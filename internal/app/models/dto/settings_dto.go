package dto

import "encoding/json"

// SettingOwner identifies the record a setting is attached to
type SettingOwner struct {
	Kind string `json:"kind" example:"facility"`
	ID   int64  `json:"id" example:"1"`
}

// PutSettingRequest stores a JSON value under a key
type PutSettingRequest struct {
	Value json.RawMessage `json:"value" binding:"required" swaggertype:"object"`
}

// SettingResponse is a single resolved setting. Source is the owner the value came from.
type SettingResponse struct {
	Owner  SettingOwner    `json:"owner"`
	Key    string          `json:"key" example:"department_label"`
	Value  json.RawMessage `json:"value" swaggertype:"object"`
	Source SettingOwner    `json:"source"`
}

// ChainResponse lists the fallback chain of an owner in lookup order
type ChainResponse struct {
	Owner SettingOwner   `json:"owner"`
	Chain []SettingOwner `json:"chain"`
}

// EffectiveSettingsResponse is the merged view of all settings visible to an owner
type EffectiveSettingsResponse struct {
	Owner  SettingOwner               `json:"owner"`
	Chain  []SettingOwner             `json:"chain"`
	Values map[string]json.RawMessage `json:"values" swaggertype:"object"`
}
