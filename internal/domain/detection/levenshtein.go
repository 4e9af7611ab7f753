package detection

// LevenshteinDistance returns the unit-cost edit distance (insert, delete,
// substitute) between a and b, counted in runes.
func LevenshteinDistance(a, b string) int {
	return editDistance([]rune(a), []rune(b))
}

// LevenshteinSimilarity returns (maxLen - distance) / maxLen, where maxLen is
// the rune length of the longer string. Two empty strings are identical (1.0);
// an empty string against a non-empty one scores 0.0.
func LevenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	longer := max(len(ra), len(rb))
	return float64(longer-editDistance(ra, rb)) / float64(longer)
}

// editDistance keeps two rows of the classic DP matrix.
func editDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
