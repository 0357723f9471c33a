package gen

import (
	"strings"
)

// Similarity weights. MinSimilarity is the lowest score accepted by the
// similarity strategy.
const (
	scoreExact       = 100
	scoreContains    = 50
	scoreContainedIn = 30
	scorePlural      = 40
	scoreLCSPerRune  = 5
	minLCS           = 3
	MinSimilarity    = 30
)

// Similarity scores how well the entity name matches a field name.
// Higher is better; zero means no relation at all.
func (n *Namer) Similarity(entity, field string) int {
	ne, nf := n.Normalize(entity), n.Normalize(field)
	if ne == "" || nf == "" {
		return 0
	}
	score := 0
	switch {
	case ne == nf:
		score += scoreExact
	case strings.Contains(ne, nf):
		score += scoreContains
	case strings.Contains(nf, ne):
		score += scoreContainedIn
	}
	if n.SingularName(strings.ToLower(entity)) == n.SingularName(strings.ToLower(field)) {
		score += scorePlural
	}
	if l := lcs(ne, nf); l >= minLCS {
		score += l * scoreLCSPerRune
	}
	return score
}

// Candidate is an entity scored against a field name.
type Candidate struct {
	Entity string
	Score  int
}

// bestCandidate scores every name against the field, skipping owner. The
// first name wins ties. It returns false when the best score is below
// MinSimilarity.
func (n *Namer) bestCandidate(field, owner string, names []string) (Candidate, bool) {
	var best Candidate
	for _, name := range names {
		if name == owner {
			continue
		}
		if s := n.Similarity(name, field); s > best.Score {
			best = Candidate{Entity: name, Score: s}
		}
	}
	return best, best.Score >= MinSimilarity
}

// lcs returns the length of the longest common substring of a and b.
func lcs(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	best := 0
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
				best = max(best, cur[j])
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}
