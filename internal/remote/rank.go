package remote

import (
	"sort"
	"strings"
	"time"
)

// MaxSuggestions caps the number of ranked repositories returned.
const MaxSuggestions = 20

// Candidate is a repository offered as a workspace source.
type Candidate struct {
	NameWithOwner string `json:"nameWithOwner"`
	URL           string `json:"url"`
	IsPrivate     bool   `json:"isPrivate"`
	UpdatedAt     string `json:"updatedAt"`
}

// Suggestion is a ranked candidate.
type Suggestion struct {
	Candidate
	Score int `json:"score"`
}

// Per-token bonuses. Only the highest applicable bonus counts for a token.
const (
	baseScore       = 10
	bonusExact      = 150
	bonusNamePrefix = 80
	bonusURLPrefix  = 60
	bonusNameHas    = 30
	bonusURLHas     = 20
)

// Rank filters and orders candidates for a free-text query. Every
// whitespace-separated token must appear in the candidate's name or URL.
// An empty query keeps every candidate with a score of 1.
func Rank(query string, candidates []Candidate) []Suggestion {
	tokens := strings.Fields(strings.ToLower(query))

	out := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		if len(tokens) == 0 {
			out = append(out, Suggestion{Candidate: c, Score: 1})
			continue
		}
		if score, ok := scoreCandidate(tokens, c); ok {
			out = append(out, Suggestion{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if c := compareUpdated(a.UpdatedAt, b.UpdatedAt); c != 0 {
			return c > 0
		}
		return a.NameWithOwner < b.NameWithOwner
	})

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func scoreCandidate(tokens []string, c Candidate) (int, bool) {
	name := strings.ToLower(c.NameWithOwner)
	url := strings.ToLower(c.URL)
	haystack := name + " " + url

	score := baseScore
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return 0, false
		}
		switch {
		case tok == name || tok == url:
			score += bonusExact
		case strings.HasPrefix(name, tok):
			score += bonusNamePrefix
		case strings.HasPrefix(url, tok):
			score += bonusURLPrefix
		case strings.Contains(name, tok):
			score += bonusNameHas
		case strings.Contains(url, tok):
			score += bonusURLHas
		}
	}
	return score, true
}

// compareUpdated orders timestamps, newest first. Unparseable values sort
// after parseable ones and compare lexically among themselves.
func compareUpdated(a, b string) int {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	switch {
	case errA == nil && errB == nil:
		return ta.Compare(tb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}
