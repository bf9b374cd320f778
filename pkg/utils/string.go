package utils

// Truncate shortens s to at most maxLen runes, appending "..." when anything
// was cut. Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}

	count := 0
	for i := range s {
		if count == maxLen {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
