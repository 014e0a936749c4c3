// SPDX-License-Identifier: Apache-2.0

// Package similarity scores extracted values against reference candidates.
//
// Scoring is deliberately cheap: after normalization, equal strings score 1.0
// and anything else scores the Jaccard index of the two character sets.
package similarity

import (
	"regexp"
	"strings"
)

// DefaultThreshold is the minimum score for a free-text match.
const DefaultThreshold = 0.8

var stripper = strings.NewReplacer(" ", "", "-", "", "_", "")

// Normalize trims, lowercases and drops spaces, hyphens and underscores.
func Normalize(s string) string {
	return stripper.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Score returns the similarity of a and b in [0,1]. It is symmetric.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	setA := runeSet(na)
	setB := runeSet(nb)
	inter := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// Result is the outcome of matching one value against candidates.
type Result struct {
	Matched bool    `json:"matched"`
	Score   float64 `json:"score"`
	// Best is the first candidate reaching Score; empty when nothing scored.
	Best string `json:"best_match,omitempty"`
	// Index of Best in the candidate list, -1 when there is none.
	Index int `json:"-"`
}

// Match scores target against every candidate and keeps the maximum.
// Ties go to the earliest candidate.
func Match(target string, candidates []string, threshold float64) Result {
	res := Result{Index: -1}
	if strings.TrimSpace(target) == "" || len(candidates) == 0 {
		return res
	}
	for i, c := range candidates {
		s := Score(target, c)
		if res.Index < 0 || s > res.Score {
			res.Score, res.Best, res.Index = s, c, i
		}
	}
	res.Matched = res.Score >= threshold
	return res
}

// MatchIdentifier matches an identifier-class value. The value must satisfy
// format before a case-insensitive equality with a candidate counts. A value
// with a valid format but no equal candidate keeps its best similarity score
// and does not match; an invalid format scores zero.
func MatchIdentifier(format *regexp.Regexp, value string, candidates []string) Result {
	value = strings.TrimSpace(value)
	res := Result{Index: -1}
	if value == "" || len(candidates) == 0 {
		return res
	}
	if format != nil && !format.MatchString(value) {
		return res
	}
	for i, c := range candidates {
		if strings.EqualFold(value, strings.TrimSpace(c)) {
			return Result{Matched: true, Score: 1, Best: c, Index: i}
		}
	}
	res = Match(value, candidates, DefaultThreshold)
	res.Matched = false
	return res
}
