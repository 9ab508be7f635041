package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdprkv/internal/record/models"
	"gdprkv/pkg/platform/sentinel"
)

func active(subjectID, key string, version int64) *models.Record {
	return &models.Record{
		SubjectID:     subjectID,
		RecordKey:     key,
		Purpose:       "FULFILLMENT",
		Value:         []byte(`{"city":"Lisbon"}`),
		Version:       version,
		CreatedAt:     1000,
		UpdatedAt:     1000,
		RetentionDays: 30,
		RequestID:     "req",
	}
}

func TestInMemorySaveIsConditional(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	require.NoError(t, s.Save(ctx, active("s1", "k1", 1), 0))
	require.ErrorIs(t, s.Save(ctx, active("s1", "k1", 1), 0), sentinel.ErrConflict)

	require.NoError(t, s.Save(ctx, active("s1", "k1", 2), 1))
	require.ErrorIs(t, s.Save(ctx, active("s1", "k1", 3), 1), sentinel.ErrConflict)
	require.ErrorIs(t, s.Save(ctx, active("s1", "missing", 2), 1), sentinel.ErrConflict)

	got, err := s.FindByKey(ctx, "s1", "k1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)

	_, err = s.FindByKey(ctx, "s1", "nope")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryFindAllBySubjectOrdersByKey(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	for _, k := range []string{"phone", "address", "email"} {
		require.NoError(t, s.Save(ctx, active("s1", k, 1), 0))
	}
	require.NoError(t, s.Save(ctx, active("s2", "zzz", 1), 0))

	recs, err := s.FindAllBySubject(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "address", recs[0].RecordKey)
	assert.Equal(t, "email", recs[1].RecordKey)
	assert.Equal(t, "phone", recs[2].RecordKey)
}

func TestInMemoryFindDueForPurge(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	due := active("s1", "due", 1)
	due.Tombstone(1000, 1, "del")
	notYet := active("s1", "later", 1)
	notYet.Tombstone(1000+models.MillisPerHour*5, 1, "del")
	require.NoError(t, s.Save(ctx, due, 0))
	require.NoError(t, s.Save(ctx, notYet, 0))
	require.NoError(t, s.Save(ctx, active("s1", "live", 1), 0))

	recs, err := s.FindDueForPurge(ctx, due.PurgeBucket, *due.PurgeDueAt)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "due", recs[0].RecordKey)

	recs, err = s.FindDueForPurge(ctx, due.PurgeBucket, *due.PurgeDueAt-1)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestInMemoryDeleteIsConditional(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.Save(ctx, active("s1", "k1", 1), 0))

	require.ErrorIs(t, s.Delete(ctx, active("s1", "k1", 7)), sentinel.ErrConflict)
	require.NoError(t, s.Delete(ctx, active("s1", "k1", 1)))
	require.ErrorIs(t, s.Delete(ctx, active("s1", "k1", 1)), sentinel.ErrNotFound)
}
