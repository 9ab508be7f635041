package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(s string) int64 {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t.UnixMilli()
}

func TestPurgeDueAt(t *testing.T) {
	t0 := ms("2025-08-27T21:15:00Z")
	assert.Equal(t, t0+30*86_400_000, PurgeDueAt(t0, 30))
	assert.Equal(t, t0, PurgeDueAt(t0, 0))
}

func TestPurgeBucket(t *testing.T) {
	tests := []struct {
		at   string
		want string
	}{
		{"2025-08-27T21:00:00Z", "h#20250827T21"},
		{"2025-08-27T21:59:59.999Z", "h#20250827T21"},
		{"2025-08-27T22:00:00Z", "h#20250827T22"},
		{"2025-12-31T23:30:00+02:00", "h#20251231T21"},
	}
	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			assert.Equal(t, tt.want, PurgeBucket(ms(tt.at)))
		})
	}
}

func TestLookbackBuckets(t *testing.T) {
	now := ms("2025-08-28T01:10:00Z")

	got := LookbackBuckets(now, 3)
	assert.Equal(t, []string{"h#20250828T01", "h#20250828T00", "h#20250827T23", "h#20250827T22"}, got)

	assert.Equal(t, []string{"h#20250828T01"}, LookbackBuckets(now, 0))
	assert.Equal(t, []string{"h#20250828T01"}, LookbackBuckets(now, -5))
}

func TestTombstone(t *testing.T) {
	t1 := ms("2025-08-27T21:15:00Z")
	r := &Record{SubjectID: "s1", RecordKey: "k1", Purpose: "P", Version: 1, RetentionDays: 30, RequestID: "put"}

	r.Tombstone(t1, 30, "del")

	require.True(t, r.Tombstoned)
	require.NotNil(t, r.TombstonedAt)
	require.NotNil(t, r.PurgeDueAt)
	assert.Equal(t, t1, *r.TombstonedAt)
	assert.Equal(t, t1+30*MillisPerDay, *r.PurgeDueAt)
	assert.Equal(t, PurgeBucket(*r.PurgeDueAt), r.PurgeBucket)
	assert.Equal(t, int64(2), r.Version)
	assert.Equal(t, "del", r.RequestID)
	assert.Equal(t, t1, r.UpdatedAt)

	r.ClearTombstone()
	assert.False(t, r.Tombstoned)
	assert.Nil(t, r.TombstonedAt)
	assert.Nil(t, r.PurgeDueAt)
	assert.Empty(t, r.PurgeBucket)
}

func TestPurgeable(t *testing.T) {
	past := int64(1000)
	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{"tombstoned and due", Record{Tombstoned: true, PurgeDueAt: &past}, true},
		{"not tombstoned though due", Record{Tombstoned: false, PurgeDueAt: &past}, false},
		{"tombstoned without due time", Record{Tombstoned: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Purgeable(2000))
		})
	}

	future := int64(3000)
	r := Record{Tombstoned: true, PurgeDueAt: &future}
	assert.False(t, r.Purgeable(2999))
	assert.True(t, r.Purgeable(3000))
}

func TestCloneIsDeep(t *testing.T) {
	due := int64(5)
	r := Record{Value: []byte(`{"a":1}`), PurgeDueAt: &due}
	c := r.Clone()
	c.Value[0] = '['
	*c.PurgeDueAt = 6
	assert.Equal(t, `{"a":1}`, string(r.Value))
	assert.Equal(t, int64(5), *r.PurgeDueAt)
}
