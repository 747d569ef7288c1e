// Package detect implements the read-only pattern detectors that run over a
// ledger index: circular routing, fan-in/fan-out structuring, layered shell
// chains, graph centrality, and the false-positive classifier. Detectors
// never mutate the index and are safe to run concurrently against it.
package detect

import (
	"context"
	"sort"
	"strings"

	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

const (
	minCycleLength = 3
	maxCycleLength = 5

	// DefaultCyclePathBudget bounds the number of search steps spent per
	// strongly connected component before enumeration degrades to a
	// partial result.
	DefaultCyclePathBudget = 250_000

	ctxCheckInterval = 1024
)

// CycleResult carries everything the cycle finder learned about one run.
type CycleResult struct {
	Hits    []domain.PatternHit
	Rings   []domain.RingCandidate
	Members map[string]struct{}

	// Truncated is set when any component exhausted its search budget or
	// the run was cancelled mid-search; coverage is then partial, not wrong.
	Truncated bool
}

// FindCycles enumerates simple directed cycles of length 3–5 over the
// collapsed graph. Components are decomposed first (Tarjan); within a
// component each cycle is discovered exactly once rooted at its
// lexicographically smallest member, which doubles as the canonical rotation.
func FindCycles(ctx context.Context, g *ledger.Graph, pathBudget int) CycleResult {
	if pathBudget <= 0 {
		pathBudget = DefaultCyclePathBudget
	}

	result := CycleResult{Members: make(map[string]struct{})}
	seen := make(map[string]struct{})
	kindSeen := make(map[string]map[domain.PatternKind]struct{})

	for _, component := range stronglyConnectedComponents(g) {
		if len(component) < minCycleLength {
			continue
		}
		finder := &cycleSearch{
			graph:   g,
			inScope: make(map[string]bool, len(component)),
			budget:  pathBudget,
			ctx:     ctx,
		}
		for _, node := range component {
			finder.inScope[node] = true
		}

		// Roots ascend lexicographically and each search only visits
		// nodes greater than its root, so the root is always the
		// smallest member of any cycle it finds.
		for _, root := range component {
			finder.root = root
			finder.path = finder.path[:0]
			finder.onPath = map[string]bool{}
			finder.extend(root)
			if finder.exhausted {
				break
			}
		}
		if finder.exhausted {
			result.Truncated = true
		}

		for _, cycle := range finder.found {
			key := strings.Join(cycle, ",")
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			kind := cycleKind(len(cycle))
			candidate := domain.NewRingCandidate(cycle, domain.RingPatternCycle)
			result.Rings = append(result.Rings, candidate)
			for _, member := range cycle {
				result.Members[member] = struct{}{}
				kinds, ok := kindSeen[member]
				if !ok {
					kinds = make(map[domain.PatternKind]struct{})
					kindSeen[member] = kinds
				}
				if _, dup := kinds[kind]; dup {
					continue
				}
				kinds[kind] = struct{}{}
				result.Hits = append(result.Hits, domain.NewPatternHit(member, kind))
			}
		}
	}

	return result
}

func cycleKind(length int) domain.PatternKind {
	switch length {
	case 3:
		return domain.PatternCycleLength3
	case 4:
		return domain.PatternCycleLength4
	default:
		return domain.PatternCycleLength5
	}
}

// cycleSearch is one component's bounded backtracking state.
type cycleSearch struct {
	graph     *ledger.Graph
	inScope   map[string]bool
	root      string
	path      []string
	onPath    map[string]bool
	found     [][]string
	budget    int
	steps     int
	exhausted bool
	ctx       context.Context
}

func (s *cycleSearch) extend(node string) {
	if s.exhausted {
		return
	}
	s.steps++
	if s.steps > s.budget {
		s.exhausted = true
		return
	}
	if s.steps%ctxCheckInterval == 0 && s.ctx.Err() != nil {
		s.exhausted = true
		return
	}

	s.path = append(s.path, node)
	s.onPath[node] = true

	for _, next := range s.graph.Successors(node) {
		if next == s.root {
			if len(s.path) >= minCycleLength {
				s.found = append(s.found, append([]string(nil), s.path...))
			}
			continue
		}
		// Restricting to nodes above the root guarantees each cycle is
		// enumerated exactly once, from its smallest member.
		if !s.inScope[next] || next <= s.root || s.onPath[next] {
			continue
		}
		if len(s.path) >= maxCycleLength {
			continue
		}
		s.extend(next)
		if s.exhausted {
			break
		}
	}

	s.path = s.path[:len(s.path)-1]
	delete(s.onPath, node)
}

// stronglyConnectedComponents runs an iterative Tarjan over the graph and
// returns components of size ≥ 2 with members sorted. Single nodes can never
// host a qualifying cycle (self-loops are excluded at graph build time).
func stronglyConnectedComponents(g *ledger.Graph) [][]string {
	index := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var components [][]string
	counter := 0

	type frame struct {
		node string
		succ []string
		pos  int
	}

	for _, start := range g.Nodes() {
		if _, visited := index[start]; visited {
			continue
		}

		callStack := []frame{{node: start, succ: g.Successors(start)}}
		index[start] = counter
		lowlink[start] = counter
		counter++
		stack = append(stack, start)
		onStack[start] = true

		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]

			if top.pos < len(top.succ) {
				next := top.succ[top.pos]
				top.pos++
				if _, visited := index[next]; !visited {
					index[next] = counter
					lowlink[next] = counter
					counter++
					stack = append(stack, next)
					onStack[next] = true
					callStack = append(callStack, frame{node: next, succ: g.Successors(next)})
				} else if onStack[next] {
					if index[next] < lowlink[top.node] {
						lowlink[top.node] = index[next]
					}
				}
				continue
			}

			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := &callStack[len(callStack)-1]
				if lowlink[top.node] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[top.node]
				}
			}

			if lowlink[top.node] == index[top.node] {
				var component []string
				for {
					popped := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[popped] = false
					component = append(component, popped)
					if popped == top.node {
						break
					}
				}
				if len(component) >= 2 {
					sort.Strings(component)
					components = append(components, component)
				}
			}
		}
	}

	return components
}
