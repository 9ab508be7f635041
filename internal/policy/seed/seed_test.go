package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdprkv/internal/policy/models"
	"gdprkv/internal/policy/store"
)

func TestParse(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		policies, err := Parse([]byte(`
policies:
  - purpose: FULFILLMENT
    retention_days: 30
    description: Order fulfillment data
  - purpose: SUPPORT
    retention_days: 14
`))
		require.NoError(t, err)
		require.Len(t, policies, 2)
		assert.Equal(t, "SUPPORT", policies[1].Purpose)
		assert.Equal(t, 14, policies[1].RetentionDays)
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"empty", `policies: []`},
		{"unknown field", "policies:\n  - purpose: A\n    retention_days: 1\n    ttl: 3\n"},
		{"non-positive retention", "policies:\n  - purpose: A\n    retention_days: 0\n"},
		{"duplicate purpose", "policies:\n  - purpose: A\n    retention_days: 1\n  - purpose: A\n    retention_days: 2\n"},
		{"not yaml", "policies: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		policies, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, models.Defaults(), policies)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policies.yaml")
		require.NoError(t, os.WriteFile(path, []byte("policies:\n  - purpose: X\n    retention_days: 7\n"), 0o600))
		policies, err := Load(path)
		require.NoError(t, err)
		require.Len(t, policies, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

type recordingTx struct {
	calls int
	err   error
}

func (r *recordingTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return r.err
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1756335600000)

	s := store.NewInMemory()
	tx := &recordingTx{}
	require.NoError(t, Apply(ctx, s, tx, models.Defaults(), now))
	assert.Equal(t, 1, tx.calls)

	p, err := s.FindByPurpose(ctx, "FULFILLMENT")
	require.NoError(t, err)
	assert.Equal(t, 30, p.RetentionDays)
	assert.Equal(t, now.UnixMilli(), p.LastUpdatedAt)

	commitErr := errors.New("commit failed")
	err = Apply(ctx, store.NewInMemory(), &recordingTx{err: commitErr}, models.Defaults(), now)
	require.ErrorIs(t, err, commitErr)

	require.NoError(t, Apply(ctx, store.NewInMemory(), nil, models.Defaults(), now))
}
