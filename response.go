package fastrouter

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Usage represents token usage information, including the cost fields
// FastRouter adds on top of the OpenAI schema.
type Usage struct {
	PromptTokens            int             `json:"prompt_tokens"`
	CompletionTokens        int             `json:"completion_tokens"`
	TotalTokens             int             `json:"total_tokens"`
	Cost                    float64         `json:"cost,omitempty"`
	Provider                string          `json:"provider,omitempty"`
	ChatID                  string          `json:"chat_id,omitempty"`
	PromptTokensDetails     json.RawMessage `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails json.RawMessage `json:"completion_tokens_details,omitempty"`
}

// Choice represents a single completion choice. FinishReason is nil when the
// backend did not report one.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// ChatCompletion is a fully materialized, non-streaming completion response.
// Unrecognized top-level keys from the backend payload (guardrails,
// citations, future extensions) are preserved in Extra so that no data is
// lost across a round-trip.
type ChatCompletion struct {
	ID          string
	Object      string
	Created     int64
	Model       string
	ServiceTier string
	Choices     []Choice
	Usage       *Usage
	Extra       map[string]json.RawMessage
}

// takeField unmarshals raw[key] into dst and removes the key when the value
// matches the expected shape. A value of an unexpected shape stays in the
// raw map so the original payload survives a round-trip. Zero values
// (`"created":0`, `"model":""`, `"usage":null`) also stay in the raw map:
// the structured field cannot distinguish them from an absent key, so the
// raw form is the record of presence.
func takeField(raw map[string]json.RawMessage, key string, dst any) {
	v, ok := raw[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return
	}
	if reflect.ValueOf(dst).Elem().IsZero() {
		return
	}
	delete(raw, key)
}

// UnmarshalJSON builds the completion from a raw payload. It fails only
// when a contract-required field (id, choices) is missing or has the wrong
// shape; every other key is either mapped to a structured field or kept in
// Extra.
func (c *ChatCompletion) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewMalformedResponseError("completion body is not a JSON object", err)
	}

	idRaw, ok := raw["id"]
	if !ok {
		return NewMalformedResponseError(`completion is missing required field "id"`, nil)
	}
	if err := json.Unmarshal(idRaw, &c.ID); err != nil {
		return NewMalformedResponseError(`completion field "id" has the wrong shape`, err)
	}
	delete(raw, "id")

	choicesRaw, ok := raw["choices"]
	if !ok {
		return NewMalformedResponseError(`completion is missing required field "choices"`, nil)
	}
	if err := json.Unmarshal(choicesRaw, &c.Choices); err != nil {
		return NewMalformedResponseError(`completion field "choices" has the wrong shape`, err)
	}
	delete(raw, "choices")

	takeField(raw, "object", &c.Object)
	takeField(raw, "created", &c.Created)
	takeField(raw, "model", &c.Model)
	takeField(raw, "service_tier", &c.ServiceTier)
	takeField(raw, "usage", &c.Usage)

	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// MarshalJSON reconstructs a payload equivalent to the one the completion
// was built from.
func (c *ChatCompletion) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+7)
	for k, v := range c.Extra {
		m[k] = v
	}
	m["id"] = c.ID
	m["choices"] = c.Choices
	if c.Object != "" {
		m["object"] = c.Object
	}
	if c.Created != 0 {
		m["created"] = c.Created
	}
	if c.Model != "" {
		m["model"] = c.Model
	}
	if c.ServiceTier != "" {
		m["service_tier"] = c.ServiceTier
	}
	if c.Usage != nil {
		m["usage"] = c.Usage
	}
	return json.Marshal(m)
}

// ToMap returns an unordered-key mapping view derived from the structured
// fields. The two views always agree; the map is never a second source of
// truth.
func (c *ChatCompletion) ToMap() map[string]any {
	return mapView(c)
}

// HealthResponse is the result of the health check endpoint. Backends that
// answer with a bare string instead of a JSON object are tolerated by using
// the raw text as the status.
type HealthResponse struct {
	Status string
	Extra  map[string]json.RawMessage
}

// UnmarshalJSON accepts either a JSON object with a status field or a JSON
// string.
func (h *HealthResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		takeField(raw, "status", &h.Status)
		if len(raw) > 0 {
			h.Extra = raw
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		h.Status = s
		return nil
	}
	return NewMalformedResponseError("health body is neither a JSON object nor a string", nil)
}

// MarshalJSON reconstructs the health payload.
func (h *HealthResponse) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(h.Extra)+1)
	for k, v := range h.Extra {
		m[k] = v
	}
	m["status"] = h.Status
	return json.Marshal(m)
}

// ToMap returns the mapping view of the health response.
func (h *HealthResponse) ToMap() map[string]any {
	return mapView(h)
}

// parseHealthResponse never fails: a body that is not JSON at all becomes a
// plain-text status.
func parseHealthResponse(body []byte) *HealthResponse {
	var h HealthResponse
	if err := json.Unmarshal(body, &h); err != nil {
		return &HealthResponse{Status: strings.TrimSpace(string(body))}
	}
	return &h
}

// mapView derives a map representation from a value's JSON form.
func mapView(v json.Marshaler) map[string]any {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
