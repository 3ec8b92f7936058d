package fastrouter

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

var validRoles = map[Role]bool{
	RoleSystem:    true,
	RoleUser:      true,
	RoleAssistant: true,
	RoleTool:      true,
}

// Message represents a single message in the chat. Annotations only appear
// on assistant messages returned by the backend.
type Message struct {
	Role        Role            `json:"role"`
	Content     string          `json:"content"`
	Annotations json.RawMessage `json:"annotations,omitempty"`
}

// ProviderOptions selects or excludes upstream providers for a request. It
// is passed through to the backend verbatim; the SDK performs no routing.
type ProviderOptions struct {
	Only    []string `json:"only,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// CompletionRequest is the payload for the chat completions endpoint.
// Optional numeric parameters are pointers so that an unset field is never
// confused with a real zero; only fields the caller set appear on the wire.
type CompletionRequest struct {
	Model            string           `json:"model"`
	Messages         []Message        `json:"messages"`
	MaxTokens        *int             `json:"max_tokens,omitempty"`
	Temperature      *float64         `json:"temperature,omitempty"`
	TopP             *float64         `json:"top_p,omitempty"`
	FrequencyPenalty *float64         `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64         `json:"presence_penalty,omitempty"`
	Stop             []string         `json:"stop,omitempty"`
	Stream           bool             `json:"stream,omitempty"`
	Provider         *ProviderOptions `json:"provider,omitempty"`

	// ExtraFields are merged into the outgoing payload as additional
	// top-level keys. A key that collides with a named field overrides it.
	ExtraFields map[string]any `json:"-"`
}

// WithStreaming returns a shallow copy of the request with Stream set to
// true. This avoids mutating the caller's request object.
func (r *CompletionRequest) WithStreaming() *CompletionRequest {
	cp := *r
	cp.Stream = true
	return &cp
}

// Validate checks the request locally. Violations are reported as
// validation errors before any network call is made.
func (r *CompletionRequest) Validate() error {
	if r.Model == "" {
		return NewValidationError("model must not be empty")
	}
	if len(r.Messages) == 0 {
		return NewValidationError("messages must not be empty")
	}
	for i, m := range r.Messages {
		if !validRoles[m.Role] {
			return NewValidationError(fmt.Sprintf("messages[%d]: unrecognized role %q", i, m.Role))
		}
		if m.Content == "" {
			return NewValidationError(fmt.Sprintf("messages[%d]: content must not be empty", i))
		}
	}
	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return NewValidationError("max_tokens must be at least 1")
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return NewValidationError("temperature must be between 0 and 2")
	}
	if r.TopP != nil && (*r.TopP < 0 || *r.TopP > 1) {
		return NewValidationError("top_p must be between 0 and 1")
	}
	if r.FrequencyPenalty != nil && (*r.FrequencyPenalty < -2 || *r.FrequencyPenalty > 2) {
		return NewValidationError("frequency_penalty must be between -2 and 2")
	}
	if r.PresencePenalty != nil && (*r.PresencePenalty < -2 || *r.PresencePenalty > 2) {
		return NewValidationError("presence_penalty must be between -2 and 2")
	}
	return nil
}

type completionRequestAlias CompletionRequest

// MarshalJSON merges ExtraFields into the serialized request.
func (r *CompletionRequest) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal((*completionRequestAlias)(r))
	if err != nil {
		return nil, err
	}
	if len(r.ExtraFields) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.ExtraFields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// ToMap returns the request as it will appear on the wire: exactly the
// fields the caller set, with no implicit defaults injected.
func (r *CompletionRequest) ToMap() (map[string]any, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Int returns a pointer to v, for optional request fields.
func Int(v int) *int { return &v }

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 { return &v }
