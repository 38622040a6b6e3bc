// Package lcs computes minimal edit scripts between two sequences
// using the longest common subsequence.
package lcs

// Change describes a contiguous region that differs between the
// original and the modified sequence.
type Change struct {
	OriginalStart  int
	OriginalLength int
	ModifiedStart  int
	ModifiedLength int
}

// ComputeDiff returns the changes needed to turn original into modified,
// ordered by ascending OriginalStart. Adjacent deletions and insertions
// are reported as a single change.
func ComputeDiff[T comparable](original, modified []T) []Change {
	prefix := 0
	for prefix < len(original) && prefix < len(modified) && original[prefix] == modified[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(original)-prefix && suffix < len(modified)-prefix &&
		original[len(original)-1-suffix] == modified[len(modified)-1-suffix] {
		suffix++
	}

	a := original[prefix : len(original)-suffix]
	b := modified[prefix : len(modified)-suffix]

	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	// table[i][j] holds the LCS length of a[i:] and b[j:].
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	var (
		changes []Change
		current *Change
	)

	flush := func() {
		if current != nil {
			changes = append(changes, *current)
			current = nil
		}
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			flush()
			i++
			j++
		case j < len(b) && (i == len(a) || table[i][j+1] >= table[i+1][j]):
			if current == nil {
				current = &Change{OriginalStart: prefix + i, ModifiedStart: prefix + j}
			}
			current.ModifiedLength++
			j++
		default:
			if current == nil {
				current = &Change{OriginalStart: prefix + i, ModifiedStart: prefix + j}
			}
			current.OriginalLength++
			i++
		}
	}
	flush()

	return changes
}
