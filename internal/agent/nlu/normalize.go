// Package nlu turns raw utterances into slots and a single intent, and resolves
// loosely named fields of external payloads.
package nlu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

// FieldMatchThreshold is the minimum similarity for accepting a fuzzy key match.
const FieldMatchThreshold = 0.66

// Normalize renders v as trimmed text; nil becomes "".
func Normalize(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Lower is Normalize followed by lowercasing.
func Lower(v any) string {
	return strings.ToLower(Normalize(v))
}

// Compact uppercases s and strips every character outside [A-Z0-9].
func Compact(s string) string {
	up := strings.ToUpper(s)
	var b strings.Builder
	b.Grow(len(up))
	for i := 0; i < len(up); i++ {
		c := up[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Similarity is the case-insensitive SequenceMatcher ratio of a and b, in [0,1].
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(chars(strings.ToLower(a)), chars(strings.ToLower(b)))
	return m.Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// FieldMatch is the result of FieldAlias. Key is empty when no payload key reached
// FieldMatchThreshold; Value is nil when the matched field is blank.
type FieldMatch struct {
	Key   string
	Value any
	Score float64
}

// Present reports whether a key was accepted and carries a non-blank value.
func (m FieldMatch) Present() bool {
	return m.Key != "" && m.Value != nil
}

// FieldAlias finds the payload key most similar to any alias. Keys are visited in
// sorted order so ties resolve deterministically to the first best key.
func FieldAlias(payload model.Record, aliases []string) FieldMatch {
	if len(payload) == 0 {
		return FieldMatch{}
	}
	best, score := BestKey(keysOf(payload), aliases)
	if score < FieldMatchThreshold {
		return FieldMatch{Score: score}
	}
	val := payload[best]
	if Normalize(val) == "" {
		val = nil
	}
	return FieldMatch{Key: best, Value: val, Score: score}
}

// BestKey returns the key with the highest similarity to any alias and that score.
func BestKey(keys []string, aliases []string) (string, float64) {
	var best string
	bestScore := 0.0
	for _, k := range keys {
		for _, a := range aliases {
			if sc := Similarity(k, a); sc > bestScore {
				bestScore = sc
				best = k
			}
		}
	}
	return best, bestScore
}

func keysOf(r model.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
