package models

import "fmt"

// ProblemKind classifies a chain verification failure.
type ProblemKind string

const (
	ProblemHashMismatch    ProblemKind = "hash_mismatch"
	ProblemBrokenLink      ProblemKind = "broken_link"
	ProblemFork            ProblemKind = "fork"
	ProblemOutOfOrder      ProblemKind = "out_of_order"
	ProblemSubjectMismatch ProblemKind = "subject_mismatch"
)

// Problem is one verification failure at a position in the chain.
type Problem struct {
	Index  int         `json:"index"`
	TsUlid string      `json:"ts_ulid"`
	Kind   ProblemKind `json:"kind"`
	Detail string      `json:"detail"`
}

// VerifyReport summarizes a replay of one subject's chain.
//
// Anchored is true when the first event links to ZeroHash. An unanchored but
// otherwise valid chain is what remains after audit retention pruned its head.
type VerifyReport struct {
	SubjectID string    `json:"subject_id"`
	Events    int       `json:"events"`
	Valid     bool      `json:"valid"`
	Anchored  bool      `json:"anchored"`
	HeadHash  string    `json:"head_hash,omitempty"`
	Problems  []Problem `json:"problems,omitempty"`
}

// VerifyChain replays events (ascending by TsUlid) and recomputes every hash
// and link.
func VerifyChain(subjectID string, events []Event) VerifyReport {
	report := VerifyReport{SubjectID: subjectID, Events: len(events)}
	if len(events) == 0 {
		report.Valid = true
		report.Anchored = true
		return report
	}

	report.Anchored = events[0].PrevHash == ZeroHash
	seenPrev := make(map[string]int, len(events))

	for i := range events {
		e := &events[i]
		add := func(kind ProblemKind, format string, args ...any) {
			report.Problems = append(report.Problems, Problem{
				Index:  i,
				TsUlid: e.TsUlid,
				Kind:   kind,
				Detail: fmt.Sprintf(format, args...),
			})
		}

		if e.SubjectID != subjectID {
			add(ProblemSubjectMismatch, "event belongs to subject %q", e.SubjectID)
		}

		want, err := ComputeHash(e)
		if err != nil {
			add(ProblemHashMismatch, "recompute hash: %v", err)
		} else if want != e.Hash {
			add(ProblemHashMismatch, "stored hash %s, recomputed %s", e.Hash, want)
		}

		if j, ok := seenPrev[e.PrevHash]; ok {
			add(ProblemFork, "shares prev_hash with event %d", j)
		} else {
			seenPrev[e.PrevHash] = i
		}

		if i > 0 {
			prev := &events[i-1]
			if e.TsUlid <= prev.TsUlid {
				add(ProblemOutOfOrder, "ts_ulid does not sort after %s", prev.TsUlid)
			}
			if e.PrevHash != prev.Hash {
				add(ProblemBrokenLink, "prev_hash %s, previous event hash %s", e.PrevHash, prev.Hash)
			}
		}
	}

	report.HeadHash = events[len(events)-1].Hash
	report.Valid = len(report.Problems) == 0
	return report
}
