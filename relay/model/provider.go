package model

import "strings"

// Provider is an OpenAI compatible endpoint together with its credentials.
type Provider struct {
	Id            string        `json:"id"`
	Name          string        `json:"name" validate:"required"`
	Endpoint      string        `json:"endpoint" validate:"required,url"`
	APIKey        string        `json:"apiKey"`
	RequestParams RequestParams `json:"requestParams,omitempty"`
}

// ModelSlot is a comparison target. It references a provider by id.
type ModelSlot struct {
	Id          string `json:"id"`
	ProviderId  string `json:"providerId,omitempty"`
	ModelId     string `json:"modelId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// IsActive reports whether both a provider and a model are assigned.
func (s ModelSlot) IsActive() bool {
	return s.ProviderId != "" && s.ModelId != ""
}

// Clear resets every field but the id.
func (s *ModelSlot) Clear() {
	*s = ModelSlot{Id: s.Id}
}

// Label is the name shown for the slot.
func (s ModelSlot) Label() string {
	if name := strings.TrimSpace(s.DisplayName); name != "" {
		return name
	}
	return s.ModelId
}

// ActiveSlot is a slot resolved against its provider, ready to be run.
type ActiveSlot struct {
	Slot     ModelSlot
	Provider Provider
}
