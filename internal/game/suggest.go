package game

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns up to three candidates that are close to input, nearest
// first. It backs "did you mean" hints for unknown boost and character ids.
func Suggest(input string, candidates []string) []string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return nil
	}

	type scored struct {
		id   string
		dist int
	}
	var hits []scored
	for _, c := range candidates {
		cand := strings.ToLower(c)
		dist := levenshtein.ComputeDistance(in, cand)
		if strings.HasPrefix(cand, in) {
			dist = 0
		}
		if dist > suggestLimit(len(cand)) {
			continue
		}
		hits = append(hits, scored{id: c, dist: dist})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if len(hits) > 3 {
		hits = hits[:3]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.id)
	}
	return out
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
