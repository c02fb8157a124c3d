package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/store"
)

// NewProvider builds the configured vendor, chained as
// caller → retry → recorder → vendor. A nil events repo skips recording;
// a nil log discards recorder warnings.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *zap.Logger) (Provider, error) {
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}
	v, ok := lookupVendor(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	p, err := v.build(ctx, cfg.Vendors[v.name])
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", v.name, err)
	}
	if events != nil {
		p = WithRecording(p, v.name, events, log)
	}
	return WithRetry(p, cfg.Retry), nil
}
