package llm

import (
	"context"
	"fmt"
	"strings"
)

// Purpose labels why a request was made. It rides on the context so the
// recorder and the retry policy see it without widening Request.
type Purpose string

const (
	PurposeTutor     Purpose = "tutor"
	PurposeStudyPlan Purpose = "study-plan"
	PurposeUnknown   Purpose = "unknown"
)

// Purposes lists the labels the app issues, in display order.
var Purposes = []Purpose{PurposeTutor, PurposeStudyPlan}

type profile struct {
	maxTokens   int
	temperature float64
	// interactive requests get a single attempt.
	interactive bool
}

var profiles = map[Purpose]profile{
	PurposeTutor:     {maxTokens: 1500, temperature: 0.7, interactive: true},
	PurposeStudyPlan: {maxTokens: 400, temperature: 0.3},
}

type purposeKey struct{}

// WithPurpose tags ctx with p.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the tag set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}

// NewRequest builds a request with the token budget and temperature used
// for p.
func (p Purpose) NewRequest(system string, msgs ...Message) Request {
	prof := profiles[p]
	return Request{
		System:      system,
		Messages:    msgs,
		MaxTokens:   prof.maxTokens,
		Temperature: prof.temperature,
	}
}

func (p Purpose) interactive() bool { return profiles[p].interactive }

// ParsePurpose accepts one of Purposes. The empty string is returned as is.
func ParsePurpose(s string) (Purpose, error) {
	if s == "" {
		return "", nil
	}
	for _, p := range Purposes {
		if string(p) == s {
			return p, nil
		}
	}
	names := make([]string, len(Purposes))
	for i, p := range Purposes {
		names[i] = string(p)
	}
	return "", fmt.Errorf("unknown purpose %q (want %s)", s, strings.Join(names, " or "))
}
