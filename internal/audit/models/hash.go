package models

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ZeroHash is the prevHash of a subject's genesis event.
const ZeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ComputeHash returns the lowercase hex SHA-256 of the event's canonical form:
//
//	subjectId|tsUlid|eventType|requestId|itemKey|purpose|timestamp|details|prevHash
//
// where details is CanonicalDetails(e.Details). Hash itself is not an input.
func ComputeHash(e *Event) (string, error) {
	details, err := CanonicalDetails(e.Details)
	if err != nil {
		return "", err
	}
	canon := strings.Join([]string{
		e.SubjectID,
		e.TsUlid,
		string(e.EventType),
		e.RequestID,
		e.ItemKey,
		e.Purpose,
		strconv.FormatInt(e.Timestamp, 10),
		details,
		e.PrevHash,
	}, "|")
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:]), nil
}

// CanonicalDetails serializes details as compact JSON with map keys sorted at
// every level and no HTML escaping. Nil and empty maps both yield "{}".
func CanonicalDetails(details map[string]any) (string, error) {
	if len(details) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(details); err != nil {
		return "", fmt.Errorf("encode audit details: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeDetails parses canonical details JSON. Numbers are kept as
// json.Number so re-encoding reproduces the stored bytes.
func DecodeDetails(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode audit details: %w", err)
	}
	return out, nil
}
