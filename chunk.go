package fastrouter

import (
	"encoding/json"
	"strings"
)

// Delta holds the incremental content carried by one streaming chunk.
// Both fields are pointers so an empty fragment can be distinguished from
// an absent field.
type Delta struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// RoleOrEmpty returns the delta role, or "" when absent.
func (d Delta) RoleOrEmpty() string {
	if d.Role == nil {
		return ""
	}
	return *d.Role
}

// HasContent reports whether the delta carries non-whitespace content.
func (d Delta) HasContent() bool {
	return d.Content != nil && strings.TrimSpace(*d.Content) != ""
}

// ContentOrEmpty returns the delta content, or "" when absent. It never
// panics on a missing field.
func (d Delta) ContentOrEmpty() string {
	if d.Content == nil {
		return ""
	}
	return *d.Content
}

// ChunkChoice represents a streaming choice delta. FinishReason is nil
// until the final chunk for the choice.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// ChatCompletionChunk is one incremental unit of a streaming completion,
// corresponding to one server-sent event. Unrecognized top-level keys are
// preserved in Extra.
type ChatCompletionChunk struct {
	ID      string
	Object  string
	Created int64
	Model   string
	Choices []ChunkChoice
	Usage   *Usage
	Extra   map[string]json.RawMessage
}

// UnmarshalJSON builds the chunk from a raw payload under the same contract
// as ChatCompletion: id and choices are required, everything else is
// optional and preserved.
func (c *ChatCompletionChunk) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewMalformedResponseError("chunk body is not a JSON object", err)
	}

	idRaw, ok := raw["id"]
	if !ok {
		return NewMalformedResponseError(`chunk is missing required field "id"`, nil)
	}
	if err := json.Unmarshal(idRaw, &c.ID); err != nil {
		return NewMalformedResponseError(`chunk field "id" has the wrong shape`, err)
	}
	delete(raw, "id")

	choicesRaw, ok := raw["choices"]
	if !ok {
		return NewMalformedResponseError(`chunk is missing required field "choices"`, nil)
	}
	if err := json.Unmarshal(choicesRaw, &c.Choices); err != nil {
		return NewMalformedResponseError(`chunk field "choices" has the wrong shape`, err)
	}
	delete(raw, "choices")

	takeField(raw, "object", &c.Object)
	takeField(raw, "created", &c.Created)
	takeField(raw, "model", &c.Model)
	takeField(raw, "usage", &c.Usage)

	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// MarshalJSON reconstructs a payload equivalent to the one the chunk was
// built from.
func (c *ChatCompletionChunk) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+6)
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
	if c.Usage != nil {
		m["usage"] = c.Usage
	}
	return json.Marshal(m)
}

// ToMap returns the mapping view of the chunk.
func (c *ChatCompletionChunk) ToMap() map[string]any {
	return mapView(c)
}

// HasContent reports whether the first choice of the chunk carries
// non-whitespace content. Safe to call on chunks with no choices.
func (c *ChatCompletionChunk) HasContent() bool {
	if len(c.Choices) == 0 {
		return false
	}
	return c.Choices[0].Delta.HasContent()
}

// Content returns the content of the first choice, or "" when the chunk
// carries none.
func (c *ChatCompletionChunk) Content() string {
	if !c.HasContent() {
		return ""
	}
	return *c.Choices[0].Delta.Content
}
