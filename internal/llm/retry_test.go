package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
}

func TestRetryCoachRecoversFromOutage(t *testing.T) {
	mock := NewMockProvider(down(), MockJSON(map[string]any{"weekly_goal": "Revise idioms"}))
	ctx, req := coachRequest()

	resp, err := WithRetry(mock, fastRetry()).Generate(ctx, req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"weekly_goal":"Revise idioms"}` || mock.CallCount() != 2 {
		t.Errorf("content %s after %d calls", resp.Content, mock.CallCount())
	}
}

func TestRetryTutorMakesOneAttempt(t *testing.T) {
	mock := NewMockProvider(down(), MockText("unused"))
	ctx, req := tutorRequest()

	if _, err := WithRetry(mock, fastRetry()).Generate(ctx, req); err == nil {
		t.Fatal("expected the outage to surface")
	}
	if mock.CallCount() != 1 || mock.Pending() != 1 {
		t.Errorf("calls = %d, pending = %d", mock.CallCount(), mock.Pending())
	}
}

func TestRetryGivesUp(t *testing.T) {
	tests := []struct {
		name      string
		script    []MockResponse
		wantCalls int
	}{
		{"outage exhausts attempts", []MockResponse{down(), down(), down()}, 3},
		{"cut off reply", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, MockText("unused")}, 1},
		{"rejected key", []MockResponse{{Err: &ErrRequestRejected{Status: 401, Err: errors.New("bad key")}}, MockText("unused")}, 1},
		{"invalid reply asked again once", []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("missing weekly_goal")}},
			{Err: &ErrInvalidResponse{Err: errors.New("missing weekly_goal")}},
			MockText("unused"),
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			ctx, req := coachRequest()
			if _, err := WithRetry(mock, fastRetry()).Generate(ctx, req); err == nil {
				t.Fatal("expected an error")
			}
			if mock.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetryHonoursRateLimitWait(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
		MockJSON(map[string]string{"weekly_goal": "Two mocks"}),
	)
	ctx, req := coachRequest()
	if _, err := WithRetry(mock, fastRetry()).Generate(ctx, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	mock := NewMockProvider(down(), down(), MockText("unused"))
	ctx, req := coachRequest()
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := WithRetry(mock, fastRetry()).Generate(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetryDelayIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialWait: time.Second, MaxWait: 4 * time.Second, Multiplier: 2}
	for attempt, ceiling := range []time.Duration{1200 * time.Millisecond, 2400 * time.Millisecond, 4800 * time.Millisecond, 4800 * time.Millisecond} {
		if d := cfg.delay(attempt, errors.New("x")); d <= 0 || d > ceiling {
			t.Errorf("delay(%d) = %s, want (0, %s]", attempt, d, ceiling)
		}
	}
}

func TestRetryModelID(t *testing.T) {
	if id := WithRetry(NewMockProvider(), fastRetry()).ModelID(); id != "mock" {
		t.Errorf("ModelID() = %q", id)
	}
}
