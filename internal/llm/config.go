package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects a vendor and holds settings for all of them, so switching
// EXAMINA_LLM_PROVIDER needs no other change.
type Config struct {
	// Provider is a vendor name or "mock".
	Provider string
	Vendors  map[string]VendorConfig
	Retry    RetryConfig
}

type VendorConfig struct {
	APIKey  string
	Model   string // friendly alias or vendor model ID
	BaseURL string // optional API endpoint override
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	// Timeout bounds one Generate call including its retries.
	Timeout time.Duration
}

type vendor struct {
	name    string
	keyEnv  string // the vendor's own key variable, read by DiscoverConfig
	model   string
	baseURL string
	build   func(ctx context.Context, vc VendorConfig) (Provider, error)
}

// vendors is in discovery order.
var vendors = []vendor{
	{name: "gemini", keyEnv: "GEMINI_API_KEY", model: "gemini-flash", build: newGemini},
	{name: "openai", keyEnv: "OPENAI_API_KEY", model: "gpt-4o-mini", build: newOpenAI},
	{name: "anthropic", keyEnv: "ANTHROPIC_API_KEY", model: "claude-haiku", build: newAnthropic},
	{
		name:    "openrouter",
		keyEnv:  "OPENROUTER_API_KEY",
		model:   "google/gemini-2.0-flash-001",
		baseURL: "https://openrouter.ai/api/v1",
		build:   newOpenRouter,
	},
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// envName is the EXAMINA_* variable for one vendor setting.
func envName(v vendor, setting string) string {
	return "EXAMINA_" + strings.ToUpper(v.name) + "_" + setting
}

func DefaultConfig() Config {
	cfg := Config{
		Provider: "openai",
		Vendors:  make(map[string]VendorConfig, len(vendors)),
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
			Timeout:     45 * time.Second,
		},
	}
	for _, v := range vendors {
		cfg.Vendors[v.name] = VendorConfig{Model: v.model, BaseURL: v.baseURL}
	}
	return cfg
}

// ConfigFromEnv reads EXAMINA_LLM_PROVIDER and, per vendor,
// EXAMINA_<VENDOR>_API_KEY, _MODEL and _BASE_URL over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("EXAMINA_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	for _, v := range vendors {
		vc := cfg.Vendors[v.name]
		for setting, dst := range map[string]*string{
			"API_KEY":  &vc.APIKey,
			"MODEL":    &vc.Model,
			"BASE_URL": &vc.BaseURL,
		} {
			if val := os.Getenv(envName(v, setting)); val != "" {
				*dst = val
			}
		}
		cfg.Vendors[v.name] = vc
	}
	return cfg
}

// DiscoverConfig picks the first vendor whose own API key variable is set,
// e.g. GEMINI_API_KEY.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, v := range vendors {
		key := os.Getenv(v.keyEnv)
		if key == "" {
			continue
		}
		vc := cfg.Vendors[v.name]
		vc.APIKey = key
		cfg.Vendors[v.name] = vc
		cfg.Provider = v.name
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected vendor exists and has a key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		names := make([]string, 0, len(vendors)+1)
		for _, v := range vendors {
			names = append(names, v.name)
		}
		names = append(names, "mock")
		return fmt.Errorf("unknown LLM provider %q (want one of %s)", c.Provider, strings.Join(names, ", "))
	}
	if c.Vendors[v.name].APIKey == "" {
		return fmt.Errorf("%s is required for the %s provider", envName(v, "API_KEY"), v.name)
	}
	return nil
}

// modelAliases maps the short names accepted in *_MODEL to vendor model
// IDs. Names not listed pass through unchanged.
var modelAliases = map[string]string{
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"claude-sonnet": "claude-sonnet-4-5-20250929",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.5-pro",
}

func resolveModel(name string) string {
	if id, ok := modelAliases[name]; ok {
		return id
	}
	return name
}
