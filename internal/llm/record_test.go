package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/examina/internal/store"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestRecordingTutorTurn(t *testing.T) {
	repo := openEventRepo(t)
	mock := NewMockProvider(MockResponse{
		Content: MockText("Yes, 80.").Content,
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	ctx, req := tutorRequest()

	resp, err := WithRecording(mock, "gemini", repo, nil).Generate(ctx, req)
	if err != nil || resp.Text() != "Yes, 80." {
		t.Fatalf("Generate = %v, %v", resp, err)
	}

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil || len(events) != 1 {
		t.Fatalf("events = %d, %v", len(events), err)
	}
	e := events[0]
	if e.Provider != "gemini" || e.Model != "mock" || e.Purpose != "tutor" || !e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 7 {
		t.Errorf("tokens = %d/%d", e.InputTokens, e.OutputTokens)
	}
	for _, want := range []string{"[student]\nSo the answer is 80?", "[tutor]\n12.5% is one eighth."} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
}

func TestRecordingCoachFailure(t *testing.T) {
	repo := openEventRepo(t)
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")})
	ctx, req := coachRequest()

	if _, err := WithRecording(mock, "openai", repo, nil).Generate(ctx, req); err == nil {
		t.Fatal("expected error")
	}

	events, _ := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	e := events[0]
	if e.Success || e.ErrorMessage != "boom" || e.Purpose != "study-plan" {
		t.Errorf("event = %+v", e)
	}
	if !strings.Contains(e.RequestBody, "[prompt]\nenglish: 3/4") || !strings.Contains(e.RequestBody, "[schema study-coach-note]") {
		t.Errorf("request body:\n%s", e.RequestBody)
	}
}

type failingEvents struct{ store.EventRepo }

func (failingEvents) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("database is locked")
}

func TestRecordingWriteFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := NewMockProvider(MockText("fine"))
	ctx, req := tutorRequest()

	resp, err := WithRecording(mock, "anthropic", failingEvents{}, zap.New(core)).Generate(ctx, req)
	if err != nil || resp.Text() != "fine" {
		t.Fatalf("reply should survive a failed write: %v", err)
	}
	entries := logs.FilterMessage("record LLM request").All()
	if len(entries) != 1 || entries[0].ContextMap()["purpose"] != "tutor" {
		t.Fatalf("log entries = %+v", logs.All())
	}
}

func TestRecordingSurvivesCancelledTutorRequest(t *testing.T) {
	repo := openEventRepo(t)
	mock := NewMockProvider(MockResponse{Err: context.Canceled})
	ctx, req := tutorRequest()
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_, _ = WithRecording(mock, "openai", repo, nil).Generate(ctx, req)

	events, _ := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if len(events) != 1 || events[0].Success {
		t.Fatalf("events = %+v", events)
	}
}

func TestNewProvider(t *testing.T) {
	t.Run("mock", func(t *testing.T) {
		p, err := NewProvider(t.Context(), Config{Provider: "mock"}, nil, nil)
		if err != nil || p.ModelID() != "mock" {
			t.Fatalf("NewProvider = %v, %v", p, err)
		}
	})
	t.Run("openrouter is recorded and retried", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = "openrouter"
		vc := cfg.Vendors["openrouter"]
		vc.APIKey = "sk-or-test"
		cfg.Vendors["openrouter"] = vc

		p, err := NewProvider(t.Context(), cfg, openEventRepo(t), nil)
		if err != nil {
			t.Fatalf("NewProvider: %v", err)
		}
		retry, ok := p.(*RetryProvider)
		if !ok {
			t.Fatalf("outermost = %T, want *RetryProvider", p)
		}
		if _, ok := retry.inner.(*RecordingProvider); !ok {
			t.Errorf("inner = %T, want *RecordingProvider", retry.inner)
		}
		if p.ModelID() != "google/gemini-2.0-flash-001" {
			t.Errorf("ModelID() = %q", p.ModelID())
		}
	})
	t.Run("missing key", func(t *testing.T) {
		if _, err := NewProvider(t.Context(), Config{Provider: "anthropic"}, nil, nil); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("unknown", func(t *testing.T) {
		if _, err := NewProvider(t.Context(), Config{Provider: "bard"}, nil, nil); err == nil {
			t.Fatal("expected error")
		}
	})
}
