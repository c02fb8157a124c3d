// Package records stores schema-validated JSON documents in a
// store.KeyValueStore.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/examina/internal/store"
)

// ErrInvalid wraps decode and schema failures of a stored document.
var ErrInvalid = errors.New("invalid record")

// Compile compiles a JSON schema document registered under name.
func Compile(name, def string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return compiled, nil
}

// MustCompile is like Compile but panics on error. For package-level schemas.
func MustCompile(name, def string) *jsonschema.Schema {
	s, err := Compile(name, def)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks raw JSON against schema.
func Validate(schema *jsonschema.Schema, raw []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Decode validates raw against schema and unmarshals it into dst.
func Decode(schema *jsonschema.Schema, raw []byte, dst any) error {
	if err := Validate(schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Read loads key into dst. found is false when the key is absent. A record
// that fails validation returns an error wrapping ErrInvalid.
func Read(ctx context.Context, kv store.KeyValueStore, key string, schema *jsonschema.Schema, dst any) (found bool, err error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := Decode(schema, raw, dst); err != nil {
		return true, fmt.Errorf("%s: %w", key, err)
	}
	return true, nil
}

// Write marshals v and stores it under key.
func Write(ctx context.Context, kv store.KeyValueStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Put(ctx, key, raw)
}
