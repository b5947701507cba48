package resolver

import "github.com/duoshoumiao/bilibilisearch/internal/util"

// RenameKind classifies a display-name change observed for the same
// creator key between two reconcile passes.
type RenameKind int

const (
	RenameUnchanged RenameKind = iota
	RenameChanged
	// RenameSuspicious marks a change so large it may indicate the
	// account changed hands. Callers log a warning but still apply it.
	RenameSuspicious
)

// A rename whose similarity to the old name falls below this ratio is
// flagged as suspicious.
const suspiciousSimilarity = 0.3

// ClassifyRename compares a stored display name against a newly observed
// one. Case-only differences are not renames.
func ClassifyRename(oldName, newName string) RenameKind {
	a := util.NormalizeName(oldName)
	b := util.NormalizeName(newName)
	if a == b {
		return RenameUnchanged
	}
	if similarity(a, b) < suspiciousSimilarity {
		return RenameSuspicious
	}
	return RenameChanged
}

// similarity is 1 - normalized edit distance over runes, in [0, 1].
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
