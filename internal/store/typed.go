package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GetInt reads a decimal integer. An absent key reads as 0.
func GetInt(ctx context.Context, s Store, key string) (int, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrCorrupt, key, raw)
	}
	return n, nil
}

// SetInt writes n as a decimal string.
func SetInt(ctx context.Context, s Store, key string, n int) error {
	return s.Set(ctx, key, strconv.Itoa(n))
}

// GetStrings reads a JSON array of strings. An absent key reads as empty.
func GetStrings(ctx context.Context, s Store, key string) ([]string, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// SetStrings writes values as a JSON array.
func SetStrings(ctx context.Context, s Store, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
