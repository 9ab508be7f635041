package models

import (
	"encoding/json"
	"time"
)

const (
	MillisPerDay  int64 = 86_400_000
	MillisPerHour int64 = 3_600_000

	bucketLayout = "20060102T15"
	bucketPrefix = "h#"
)

// Record is one subject-owned, purpose-tagged value.
//
// Invariants:
//   - Tombstoned implies TombstonedAt, PurgeDueAt and PurgeBucket are set
//   - !Tombstoned implies all three are unset
//   - *PurgeDueAt == *TombstonedAt + RetentionDays*MillisPerDay
type Record struct {
	SubjectID     string
	RecordKey     string
	Purpose       string
	Value         json.RawMessage
	Version       int64
	CreatedAt     int64
	UpdatedAt     int64
	RetentionDays int
	Tombstoned    bool
	TombstonedAt  *int64
	PurgeDueAt    *int64
	PurgeBucket   string
	RequestID     string
}

// PurgeDueAt returns when a record tombstoned at tombstonedAt may be purged.
func PurgeDueAt(tombstonedAt int64, retentionDays int) int64 {
	return tombstonedAt + int64(retentionDays)*MillisPerDay
}

// PurgeBucket labels the UTC hour containing purgeDueAt, e.g. "h#20250827T21".
func PurgeBucket(purgeDueAt int64) string {
	return bucketPrefix + time.UnixMilli(purgeDueAt).UTC().Format(bucketLayout)
}

// LookbackBuckets returns the bucket for now's hour followed by the previous
// lookbackHours hours.
func LookbackBuckets(now int64, lookbackHours int) []string {
	if lookbackHours < 0 {
		lookbackHours = 0
	}
	out := make([]string, 0, lookbackHours+1)
	for i := 0; i <= lookbackHours; i++ {
		out = append(out, PurgeBucket(now-int64(i)*MillisPerHour))
	}
	return out
}

// Tombstone marks the record deleted as of now and schedules its purge.
// Version and RequestID record this mutation.
func (r *Record) Tombstone(now int64, retentionDays int, requestID string) {
	due := PurgeDueAt(now, retentionDays)
	r.Tombstoned = true
	r.TombstonedAt = &now
	r.PurgeDueAt = &due
	r.PurgeBucket = PurgeBucket(due)
	r.RetentionDays = retentionDays
	r.RequestID = requestID
	r.UpdatedAt = now
	r.Version++
}

// ClearTombstone brings a tombstoned record back to the active state.
func (r *Record) ClearTombstone() {
	r.Tombstoned = false
	r.TombstonedAt = nil
	r.PurgeDueAt = nil
	r.PurgeBucket = ""
}

// Purgeable reports whether the record may be physically deleted at now.
func (r *Record) Purgeable(now int64) bool {
	return r.Tombstoned && r.PurgeDueAt != nil && *r.PurgeDueAt <= now
}

// Clone returns a deep copy.
func (r *Record) Clone() Record {
	out := *r
	if r.Value != nil {
		out.Value = append(json.RawMessage(nil), r.Value...)
	}
	if r.TombstonedAt != nil {
		v := *r.TombstonedAt
		out.TombstonedAt = &v
	}
	if r.PurgeDueAt != nil {
		v := *r.PurgeDueAt
		out.PurgeDueAt = &v
	}
	return out
}
