// Package api defines the wire shapes of the Data API: commands, response
// envelopes, and the protocol error taxonomy. It knows nothing about
// transport, retries, or timeouts beyond embedding their diagnostics.
package api

import "encoding/json"

// Command is one Data API command. On the wire it serializes as a
// single-key object: {"find": {...}}, {"insertMany": {...}}, and so on.
type Command struct {
	Name string
	body map[string]any
}

// NewCommand creates a command with the given wire name.
func NewCommand(name string) *Command {
	return &Command{Name: name, body: map[string]any{}}
}

// Set adds a body field and returns the command for chaining.
func (c *Command) Set(key string, value any) *Command {
	c.body[key] = value

	return c
}

// SetIfNotNil adds a body field only when the value is non-nil.
func (c *Command) SetIfNotNil(key string, value any) *Command {
	if value != nil {
		c.body[key] = value
	}

	return c
}

// SetAll merges the given fields into the body. Nil maps are ignored.
func (c *Command) SetAll(fields map[string]any) *Command {
	for k, v := range fields {
		c.body[k] = v
	}

	return c
}

// Body returns the command's body map. Mutating it mutates the command.
func (c *Command) Body() map[string]any {
	return c.body
}

// MarshalJSON serializes the command into its single-key wire form.
func (c *Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]any{c.Name: c.body})
}

// Response is the Data API response envelope. Exactly which of the three
// sections are present depends on the command; errors may accompany partial
// data (an insertMany that only partly succeeded, for instance).
type Response struct {
	Status map[string]json.RawMessage `json:"status,omitempty"`
	Data   *ResponseData              `json:"data,omitempty"`
	Errors []ErrorDescriptor          `json:"errors,omitempty"`
}

// ResponseData is the data section of a response. NextPageState is the
// opaque continuation token: absent means the result set is exhausted, and
// its value must be passed back verbatim to request the following page.
type ResponseData struct {
	Documents     []json.RawMessage `json:"documents,omitempty"`
	Document      json.RawMessage   `json:"document,omitempty"`
	NextPageState *string           `json:"nextPageState,omitempty"`
	SortVector    []float32         `json:"sortVector,omitempty"`
}
