package remote

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func candidate(name, updated string) Candidate {
	return Candidate{
		NameWithOwner: name,
		URL:           "https://github.com/" + name,
		UpdatedAt:     updated,
	}
}

func names(s []Suggestion) []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.NameWithOwner
	}
	return out
}

func TestRank_EmptyQueryKeepsAll(t *testing.T) {
	cands := []Candidate{
		candidate("acme/widgets", "2026-01-01T00:00:00Z"),
		candidate("other/tools", "2026-02-01T00:00:00Z"),
	}
	got := Rank("   ", cands)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, s := range got {
		if s.Score != 1 {
			t.Errorf("%s score = %d, want 1", s.NameWithOwner, s.Score)
		}
	}
	if diff := cmp.Diff([]string{"other/tools", "acme/widgets"}, names(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_FiltersNonMatching(t *testing.T) {
	cands := []Candidate{
		candidate("acme/widgets", "2026-01-01T00:00:00Z"),
		candidate("other/tools", "2026-02-01T00:00:00Z"),
	}
	got := Rank("acme", cands)
	if diff := cmp.Diff([]string{"acme/widgets"}, names(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got[0].Score != baseScore+bonusNamePrefix {
		t.Errorf("score = %d, want %d", got[0].Score, baseScore+bonusNamePrefix)
	}
}

func TestRank_ExactBeatsSubstring(t *testing.T) {
	cands := []Candidate{
		candidate("acme/widgets-legacy", "2026-03-01T00:00:00Z"),
		candidate("acme/widgets", "2026-01-01T00:00:00Z"),
	}
	got := Rank("acme/widgets", cands)
	if diff := cmp.Diff([]string{"acme/widgets", "acme/widgets-legacy"}, names(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got[0].Score != baseScore+bonusExact {
		t.Errorf("exact score = %d", got[0].Score)
	}
	if got[1].Score != baseScore+bonusNamePrefix {
		t.Errorf("prefix score = %d", got[1].Score)
	}
}

func TestRank_Bonuses(t *testing.T) {
	c := candidate("acme/widgets", "")
	tests := []struct {
		query string
		want  int
	}{
		{"https://github.com/acme/widgets", baseScore + bonusExact},
		{"acme", baseScore + bonusNamePrefix},
		{"https://github", baseScore + bonusURLPrefix},
		{"widg", baseScore + bonusNameHas},
		{"github", baseScore + bonusURLHas},
		{"ACME widg", baseScore + bonusNamePrefix + bonusNameHas},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Rank(tt.query, []Candidate{c})
			if len(got) != 1 {
				t.Fatalf("candidate filtered out for %q", tt.query)
			}
			if got[0].Score != tt.want {
				t.Errorf("score = %d, want %d", got[0].Score, tt.want)
			}
		})
	}
}

func TestRank_AllTokensRequired(t *testing.T) {
	got := Rank("acme gadgets", []Candidate{candidate("acme/widgets", "")})
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", names(got))
	}
}

func TestRank_TieBreaks(t *testing.T) {
	cands := []Candidate{
		candidate("acme/b-widgets", "2026-01-01T00:00:00Z"),
		candidate("acme/a-widgets", "2026-01-01T00:00:00Z"),
		candidate("acme/c-widgets", "2026-05-01T00:00:00Z"),
	}
	got := Rank("widgets", cands)
	want := []string{"acme/c-widgets", "acme/a-widgets", "acme/b-widgets"}
	if diff := cmp.Diff(want, names(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_Cap(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 30; i++ {
		cands = append(cands, candidate(fmt.Sprintf("acme/repo-%02d", i), ""))
	}
	got := Rank("repo", cands)
	if len(got) != MaxSuggestions {
		t.Fatalf("len = %d, want %d", len(got), MaxSuggestions)
	}
	if got[0].NameWithOwner != "acme/repo-00" {
		t.Errorf("first = %q, want alphabetical tie-break", got[0].NameWithOwner)
	}
}
