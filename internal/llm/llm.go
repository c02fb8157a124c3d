// Package llm talks to the hosted language models behind the AI tutor and
// the study-plan coach.
package llm

import (
	"context"
	"encoding/json"
)

// Provider produces one model completion.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single completion call. The tutor sends its recent chat
// window; the coach sends one message describing section scores.
type Request struct {
	System   string
	Messages []Message

	// Schema asks the vendor for JSON of that shape. The reply is checked
	// against it before Generate returns. Without a schema the reply is text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema names a JSON Schema document. Name doubles as the vendor-side
// format name and the compiled-schema cache key, e.g. "study-coach-note".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Response struct {
	// Content is the validated JSON object for schema requests and the raw
	// reply text otherwise.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// Text returns the reply as plain text, unquoting a JSON string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var s string
	if json.Unmarshal(r.Content, &s) == nil {
		return s
	}
	return string(r.Content)
}

// finish applies the schema checks every vendor shares: a structured reply
// cut off at the token limit is reported as such, anything else must
// validate.
func finish(req Request, resp *Response) (*Response, error) {
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}
