package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanshika/fraudsight/internal/domain"
)

// MergeOverlappingRings collapses rings that share at least one member into
// a single ring per connected component. The representative is the ring with
// the most members (tie: highest risk score); its member list becomes the
// union across the component and differing pattern types are joined with
// "+". Ring ids are re-issued sequentially and every record's ring reference
// is remapped. The strict contract assumes unmerged per-pattern rings, so
// this runs only when explicitly enabled.
func MergeOverlappingRings(outcome Outcome) Outcome {
	n := len(outcome.Rings)
	if n == 0 {
		return outcome
	}

	uf := newUnionFind(n)
	memberRings := make(map[string][]int)
	for i, ring := range outcome.Rings {
		for _, member := range ring.Members {
			memberRings[member] = append(memberRings[member], i)
		}
	}
	for _, indices := range memberRings {
		for i := 1; i < len(indices); i++ {
			uf.union(indices[0], indices[i])
		}
	}

	components := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		components[root] = append(components[root], i)
	}

	// Components ordered by their lowest original ring index so re-issued
	// ids stay reproducible.
	roots := make([]int, 0, len(components))
	for root := range components {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool {
		return components[roots[i]][0] < components[roots[j]][0]
	})

	merged := make([]domain.FraudRing, 0, len(roots))
	remap := make(map[string]string)
	for seq, root := range roots {
		indices := components[root]
		sort.Slice(indices, func(a, b int) bool {
			ra, rb := outcome.Rings[indices[a]], outcome.Rings[indices[b]]
			if len(ra.Members) != len(rb.Members) {
				return len(ra.Members) > len(rb.Members)
			}
			if ra.RiskScore != rb.RiskScore {
				return ra.RiskScore > rb.RiskScore
			}
			return ra.ID < rb.ID
		})
		representative := outcome.Rings[indices[0]]

		memberSet := make(map[string]struct{})
		var patternTypes []string
		for _, idx := range indices {
			ring := outcome.Rings[idx]
			for _, member := range ring.Members {
				memberSet[member] = struct{}{}
			}
			if !containsString(patternTypes, ring.PatternType) {
				patternTypes = append(patternTypes, ring.PatternType)
			}
		}
		members := make([]string, 0, len(memberSet))
		for member := range memberSet {
			members = append(members, member)
		}
		sort.Strings(members)

		newID := fmt.Sprintf("RING_%03d", seq+1)
		merged = append(merged, domain.FraudRing{
			ID:          newID,
			Members:     members,
			PatternType: strings.Join(patternTypes, "+"),
			RiskScore:   representative.RiskScore,
		})
		for _, idx := range indices {
			remap[outcome.Rings[idx].ID] = newID
		}
	}

	outcome.Rings = merged
	for _, rec := range outcome.Records {
		if rec.RingID != "" {
			rec.RingID = remap[rec.RingID]
		}
	}
	return outcome
}

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

// unionFind is a weighted quick-union with path halving.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
