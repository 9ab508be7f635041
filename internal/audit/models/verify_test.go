package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T, subjectID string, n int) []Event {
	t.Helper()
	events := make([]Event, 0, n)
	prev := ZeroHash
	var latest *Event
	for i := range n {
		ms, key := NextTsUlid(int64(1000+i), latest)
		e := Event{
			SubjectID: subjectID,
			TsUlid:    key,
			EventType: EventPutRequested,
			RequestID: "req",
			Timestamp: ms,
			PrevHash:  prev,
			ItemKey:   "k1",
			Details:   map[string]any{"i": i},
		}
		require.NoError(t, e.Seal())
		events = append(events, e)
		prev = e.Hash
		latest = &events[len(events)-1]
	}
	return events
}

func TestVerifyChain(t *testing.T) {
	t.Run("empty chain is valid", func(t *testing.T) {
		report := VerifyChain("s1", nil)
		assert.True(t, report.Valid)
		assert.Equal(t, 0, report.Events)
	})

	t.Run("intact chain", func(t *testing.T) {
		events := buildChain(t, "s1", 5)
		report := VerifyChain("s1", events)
		assert.True(t, report.Valid)
		assert.True(t, report.Anchored)
		assert.Equal(t, events[4].Hash, report.HeadHash)
		assert.Equal(t, ZeroHash, events[0].PrevHash)
		for i := 1; i < len(events); i++ {
			assert.Equal(t, events[i-1].Hash, events[i].PrevHash)
		}
	})

	t.Run("mutated event", func(t *testing.T) {
		events := buildChain(t, "s1", 4)
		events[2].RequestID = "forged"
		report := VerifyChain("s1", events)
		require.False(t, report.Valid)
		assert.Equal(t, ProblemHashMismatch, report.Problems[0].Kind)
		assert.Equal(t, 2, report.Problems[0].Index)
	})

	t.Run("deleted event", func(t *testing.T) {
		events := buildChain(t, "s1", 4)
		events = append(events[:1], events[2:]...)
		report := VerifyChain("s1", events)
		require.False(t, report.Valid)
		assert.Equal(t, ProblemBrokenLink, report.Problems[0].Kind)
	})

	t.Run("fork", func(t *testing.T) {
		events := buildChain(t, "s1", 2)
		twin := events[1]
		twin.RequestID = "concurrent"
		_, twin.TsUlid = NextTsUlid(twin.Timestamp, &events[1])
		require.NoError(t, twin.Seal())
		events = append(events, twin)

		report := VerifyChain("s1", events)
		require.False(t, report.Valid)
		kinds := make([]ProblemKind, 0, len(report.Problems))
		for _, p := range report.Problems {
			kinds = append(kinds, p.Kind)
		}
		assert.Contains(t, kinds, ProblemFork)
	})

	t.Run("pruned head is valid but unanchored", func(t *testing.T) {
		events := buildChain(t, "s1", 5)
		report := VerifyChain("s1", events[2:])
		assert.True(t, report.Valid)
		assert.False(t, report.Anchored)
	})

	t.Run("foreign subject", func(t *testing.T) {
		events := buildChain(t, "s2", 1)
		report := VerifyChain("s1", events)
		require.False(t, report.Valid)
		assert.Equal(t, ProblemSubjectMismatch, report.Problems[0].Kind)
	})
}
