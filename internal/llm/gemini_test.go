package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchemaFromCoachNote(t *testing.T) {
	s := geminiSchema(coachNoteSchema.Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("Type = %s, want OBJECT", s.Type)
	}
	if len(s.Properties) != 3 {
		t.Fatalf("got %d properties, want 3", len(s.Properties))
	}
	topics := s.Properties["focus_topics"]
	if topics.Type != genai.TypeArray || topics.Items == nil || topics.Items.Type != genai.TypeString {
		t.Errorf("focus_topics = %+v", topics)
	}
	if got := s.Properties["section"].Enum; len(got) != 4 || got[1] != "maths" {
		t.Errorf("section enum = %v", got)
	}
	if len(s.Required) != 2 || s.Required[0] != "focus_topics" {
		t.Errorf("Required = %v", s.Required)
	}
}

func TestGeminiSchemaUnknownTypeIsString(t *testing.T) {
	s := geminiSchema(map[string]any{"type": "null", "description": "unused"})
	if s.Type != genai.TypeString || s.Description != "unused" {
		t.Errorf("schema = %+v", s)
	}
}

func TestNewGeminiResolvesAlias(t *testing.T) {
	p, err := newGemini(t.Context(), VendorConfig{APIKey: "test-key", Model: "gemini-flash"})
	if err != nil {
		t.Fatalf("newGemini: %v", err)
	}
	if p.ModelID() != "gemini-2.0-flash" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}
	if _, err := newGemini(t.Context(), VendorConfig{Model: "gemini-flash"}); err == nil {
		t.Error("expected an error without an API key")
	}
}
