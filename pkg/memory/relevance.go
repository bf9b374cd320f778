package memory

import (
	"slices"
	"strings"
)

// DefaultTopK is the number of snippets returned when no limit is configured.
const DefaultTopK = 3

// Tokenize lowercases s and splits it on whitespace into a set of tokens.
func Tokenize(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Score is the number of distinct tokens query and snippet share.
func Score(query map[string]struct{}, snippet string) int {
	n := 0
	for tok := range Tokenize(snippet) {
		if _, ok := query[tok]; ok {
			n++
		}
	}
	return n
}

// FindRelevant ranks knowledge by token overlap with query and returns at most
// topK snippets with a non-zero score. Equal scores keep knowledge order.
func FindRelevant(query string, knowledge []string, topK int) []string {
	if topK <= 0 {
		return []string{}
	}
	qt := Tokenize(query)
	if len(qt) == 0 {
		return []string{}
	}

	type scored struct {
		text  string
		score int
	}
	matches := []scored{}
	for _, snippet := range knowledge {
		if s := Score(qt, snippet); s > 0 {
			matches = append(matches, scored{text: snippet, score: s})
		}
	}

	slices.SortStableFunc(matches, func(a, b scored) int {
		return b.score - a.score
	})

	out := make([]string, 0, min(topK, len(matches)))
	for _, m := range matches[:min(topK, len(matches))] {
		out = append(out, m.text)
	}
	return out
}
