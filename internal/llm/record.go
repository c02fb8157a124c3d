package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/store"
)

// RecordingProvider stores every attempt as an LLM event, tagged with the
// vendor and the request purpose, for `examina llm list`, `view` and
// `stats`. A failed write is logged and never fails the request.
type RecordingProvider struct {
	inner  Provider
	vendor string
	events store.EventRepo
	log    *zap.Logger
}

func WithRecording(p Provider, vendor string, events store.EventRepo, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordingProvider{inner: p, vendor: vendor, events: events, log: log}
}

func (r *RecordingProvider) ModelID() string { return r.inner.ModelID() }

func (r *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    r.vendor,
		Model:       r.inner.ModelID(),
		Purpose:     string(purpose),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(purpose, req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// A cancelled tutor request is still recorded.
	if werr := r.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
		r.log.Warn("record LLM request",
			zap.String("purpose", ev.Purpose),
			zap.String("model", ev.Model),
			zap.Error(werr))
	}
	return resp, err
}

// transcript renders req for `examina llm view`, labelling turns by who
// speaks in the given purpose.
func transcript(p Purpose, req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", speaker(p, m.Role), m.Content)
	}
	if req.Schema != nil {
		fmt.Fprintf(&b, "[schema %s]\n", req.Schema.Name)
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			b.Write(def)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func speaker(p Purpose, role Role) string {
	switch {
	case p == PurposeTutor && role == RoleAssistant:
		return "tutor"
	case p == PurposeTutor:
		return "student"
	case role == RoleAssistant:
		return "model"
	default:
		return "prompt"
	}
}
