// SPDX-License-Identifier: Apache-2.0

package similarity_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gemaraproj/ooxml-compliance/internal/similarity"
)

func TestNormalize(t *testing.T) {
	want := similarity.Normalize("RLSE 0031115")
	assert.Equal(t, "rlse0031115", want)
	assert.Equal(t, want, similarity.Normalize("rlse-0031115"))
	assert.Equal(t, want, similarity.Normalize("rlse_0031115"))
	assert.Equal(t, want, similarity.Normalize("  Rlse 003-1115_ "))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "normalized equal", a: "Atlas Platform", b: "atlas-platform", want: 1},
		{name: "empty left", a: "", b: "atlas", want: 0},
		{name: "empty right", a: "atlas", b: "", want: 0},
		{name: "only separators", a: " - _ ", b: "atlas", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "partial overlap", a: "abc", b: "abd", want: 0.5},
		{name: "disjoint", a: "abc", b: "xyz", want: 0},
		{name: "order insensitive", a: "ab", b: "ba", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarity.Score(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScore_Symmetric(t *testing.T) {
	values := []string{"", "Atlas", "atlas platform", "RLSE0031115", "PRJ00015", "12345678", "Payments Hub", "x"}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, similarity.Score(a, b), similarity.Score(b, a), "score(%q,%q)", a, b)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		candidates []string
		wantMatch  bool
		wantScore  float64
		wantBest   string
		wantIndex  int
	}{
		{
			name:       "exact after normalization",
			target:     "Atlas Platform",
			candidates: []string{"Other", "atlas-platform"},
			wantMatch:  true, wantScore: 1, wantBest: "atlas-platform", wantIndex: 1,
		},
		{
			name:       "tie keeps first candidate",
			target:     "ab",
			candidates: []string{"ba", "ab"},
			wantMatch:  true, wantScore: 1, wantBest: "ba", wantIndex: 0,
		},
		{
			name:       "below threshold",
			target:     "abc",
			candidates: []string{"abd"},
			wantMatch:  false, wantScore: 0.5, wantBest: "abd", wantIndex: 0,
		},
		{
			name:       "empty target",
			target:     "  ",
			candidates: []string{"abc"},
			wantIndex:  -1,
		},
		{
			name:      "no candidates",
			target:    "abc",
			wantIndex: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarity.Match(tt.target, tt.candidates, similarity.DefaultThreshold)
			assert.Equal(t, tt.wantMatch, got.Matched)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantBest, got.Best)
			assert.Equal(t, tt.wantIndex, got.Index)
		})
	}
}

func TestMatchIdentifier(t *testing.T) {
	release := regexp.MustCompile(`(?i)^RLSE\d{7}$`)

	got := similarity.MatchIdentifier(release, "rlse0031115", []string{"RLSE0031115"})
	assert.True(t, got.Matched)
	assert.Equal(t, 1.0, got.Score)

	// equal text but wrong shape never matches
	got = similarity.MatchIdentifier(release, "RLSE 0031115", []string{"RLSE 0031115"})
	assert.False(t, got.Matched)
	assert.Zero(t, got.Score)

	// right shape, different value: partial credit only
	got = similarity.MatchIdentifier(release, "RLSE0031116", []string{"RLSE0031115"})
	assert.False(t, got.Matched)
	assert.Greater(t, got.Score, 0.0)
	assert.Less(t, got.Score, 1.0)

	// without a format it falls back to case-insensitive equality
	got = similarity.MatchIdentifier(nil, "Prj00015", []string{"x", "PRJ00015"})
	assert.True(t, got.Matched)
	assert.Equal(t, 1, got.Index)

	got = similarity.MatchIdentifier(release, "", []string{"RLSE0031115"})
	assert.False(t, got.Matched)
	assert.Zero(t, got.Score)
}

func TestNormalizeDate(t *testing.T) {
	tests := map[string]string{
		"08/11/2025":   "8/11/2025",
		"8/1/2025":     "8/1/2025",
		"01/05/2024":   "1/5/2024",
		" 12/31/2025 ": "12/31/2025",
		"2025-08-11":   "2025-08-11",
		"":             "",
	}
	for in, want := range tests {
		got := similarity.NormalizeDate(in)
		assert.Equal(t, want, got, "NormalizeDate(%q)", in)
		assert.Equal(t, got, similarity.NormalizeDate(got), "idempotent for %q", in)
	}
}
