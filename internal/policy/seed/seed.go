// Package seed loads retention policies from YAML and writes them to a store.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gdprkv/internal/policy/models"
)

type file struct {
	Policies []models.Policy `yaml:"policies"`
}

// Upserter writes policies.
type Upserter interface {
	Upsert(ctx context.Context, policy *models.Policy) error
}

// TxRunner groups the seed writes. A nil runner writes without a transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Load returns the policies in path, or the defaults when path is empty.
func Load(path string) ([]models.Policy, error) {
	if path == "" {
		return models.Defaults(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a policy document. Unknown fields are rejected
// and each purpose may appear once.
func Parse(raw []byte) ([]models.Policy, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode policy file: %w", err)
	}
	if len(f.Policies) == 0 {
		return nil, fmt.Errorf("policy file declares no policies")
	}
	seen := make(map[string]struct{}, len(f.Policies))
	for i := range f.Policies {
		if err := f.Policies[i].Validate(); err != nil {
			return nil, fmt.Errorf("policy %d: %w", i, err)
		}
		if _, dup := seen[f.Policies[i].Purpose]; dup {
			return nil, fmt.Errorf("policy %d: duplicate purpose %q", i, f.Policies[i].Purpose)
		}
		seen[f.Policies[i].Purpose] = struct{}{}
	}
	return f.Policies, nil
}

// Apply upserts every policy stamped with now.
func Apply(ctx context.Context, store Upserter, tx TxRunner, policies []models.Policy, now time.Time) error {
	write := func(ctx context.Context) error {
		for i := range policies {
			p := policies[i]
			p.LastUpdatedAt = now.UnixMilli()
			if err := store.Upsert(ctx, &p); err != nil {
				return fmt.Errorf("seed policy %s: %w", p.Purpose, err)
			}
		}
		return nil
	}
	if tx == nil {
		return write(ctx)
	}
	return tx.RunInTx(ctx, write)
}
