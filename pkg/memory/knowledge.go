package memory

// BuildKnowledge derives UnifiedKnowledge: one sentence per fact in order,
// followed by the flattened biography. The order is the tie-break order used
// by FindRelevant.
func BuildKnowledge(facts *Facts, biography Node) []string {
	out := []string{}
	if facts != nil {
		facts.Each(func(key, value string) bool {
			out = append(out, factSentence(key, value))
			return true
		})
	}
	if biography != nil {
		out = append(out, FlattenBiography(biography)...)
	}
	return out
}

func factSentence(key, value string) string {
	return "A known fact about '" + key + "' is '" + value + "'."
}
