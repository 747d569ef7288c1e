package detect

import (
	"context"
	"strings"

	"github.com/vanshika/fraudsight/internal/domain"
	"github.com/vanshika/fraudsight/internal/ledger"
)

const (
	// Shell accounts have a total transaction count inside [ShellMinTxns, ShellMaxTxns].
	ShellMinTxns = 2
	ShellMaxTxns = 3

	// MaxChainDepth caps the DFS at six hops (seven nodes). Unbounded DFS
	// over a heavily branching graph is exponential; the cap trades recall
	// for a bounded runtime.
	MaxChainDepth = 6

	minChainNodes = 4

	// DefaultShellStepBudget bounds total DFS steps over the whole graph.
	DefaultShellStepBudget = 500_000
)

// ShellChainResult reports layered-shell hits, their rings, and whether the
// search ran out of budget before covering the graph.
type ShellChainResult struct {
	Hits      []domain.PatternHit
	Rings     []domain.RingCandidate
	Truncated bool
}

// TraceShellChains finds multi-hop transfer chains routed through shell
// accounts: paths of four or more nodes starting at a non-shell account and
// extending exclusively through accounts with only 2–3 lifetime
// transactions. The terminal hop may land on any account. Requiring every
// interior node to be a shell keeps a busy intermediary from smuggling an
// ordinary payment path into the pattern. Chains are deduplicated by their
// exact directed node sequence; unlike cycles, direction matters, so
// A→B→C→D and D→C→B→A are distinct discoveries.
func TraceShellChains(ctx context.Context, idx *ledger.Index, stepBudget int) ShellChainResult {
	if stepBudget <= 0 {
		stepBudget = DefaultShellStepBudget
	}

	shells := make(map[string]bool)
	for id, acc := range idx.Accounts {
		if n := acc.TotalCount(); n >= ShellMinTxns && n <= ShellMaxTxns {
			shells[id] = true
		}
	}

	result := ShellChainResult{}
	if len(shells) == 0 {
		return result
	}

	tracer := &chainSearch{
		graph:  idx.Graph,
		shells: shells,
		seen:   make(map[string]struct{}),
		budget: stepBudget,
		ctx:    ctx,
	}

	for _, start := range idx.Graph.Nodes() {
		if shells[start] {
			continue
		}
		tracer.path = tracer.path[:0]
		tracer.onPath = map[string]bool{}
		tracer.walk(start, 0)
		if tracer.exhausted {
			result.Truncated = true
			break
		}
	}

	hitSeen := make(map[string]struct{})
	for _, chain := range tracer.found {
		result.Rings = append(result.Rings, domain.NewRingCandidate(chain, domain.RingPatternLayeredShell))
		for _, member := range chain {
			if _, dup := hitSeen[member]; dup {
				continue
			}
			hitSeen[member] = struct{}{}
			result.Hits = append(result.Hits, domain.NewPatternHit(member, domain.PatternLayeredShell))
		}
	}

	return result
}

type chainSearch struct {
	graph     *ledger.Graph
	shells    map[string]bool
	path      []string
	onPath    map[string]bool
	seen      map[string]struct{}
	found     [][]string
	budget    int
	steps     int
	exhausted bool
	ctx       context.Context
}

func (s *chainSearch) walk(node string, depth int) {
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

	s.record(s.path)

	if depth < MaxChainDepth {
		for _, next := range s.graph.Successors(node) {
			if s.onPath[next] {
				continue
			}
			if s.shells[next] {
				s.walk(next, depth+1)
			} else {
				// A non-shell account terminates the chain at this hop.
				s.steps++
				s.record(append(s.path, next))
			}
			if s.exhausted {
				break
			}
		}
	}

	s.path = s.path[:len(s.path)-1]
	delete(s.onPath, node)
}

func (s *chainSearch) record(path []string) {
	if len(path) < minChainNodes {
		return
	}
	key := strings.Join(path, ",")
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.found = append(s.found, append([]string(nil), path...))
}
