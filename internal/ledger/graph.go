package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vanshika/fraudsight/internal/domain"
)

// Edge is a collapsed sender→receiver pair. Parallel transfers between the
// same two accounts share one Edge for topology purposes while every
// underlying transaction stays attached as evidence.
type Edge struct {
	From         string
	To           string
	Total        decimal.Decimal
	Transactions []*domain.Transaction
}

type edgeKey struct {
	from string
	to   string
}

// Graph is the immutable directed account graph for one run. Node and
// successor slices are sorted so that every traversal order is deterministic.
type Graph struct {
	nodes []string
	succ  map[string][]string
	pred  map[string][]string
	edges map[edgeKey]*Edge
}

func newGraph() *Graph {
	return &Graph{
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
		edges: make(map[edgeKey]*Edge),
	}
}

func (g *Graph) addEdge(tx *domain.Transaction) {
	key := edgeKey{from: tx.SenderID, to: tx.ReceiverID}
	edge, ok := g.edges[key]
	if !ok {
		edge = &Edge{From: tx.SenderID, To: tx.ReceiverID, Total: decimal.Zero}
		g.edges[key] = edge
		g.succ[tx.SenderID] = append(g.succ[tx.SenderID], tx.ReceiverID)
		g.pred[tx.ReceiverID] = append(g.pred[tx.ReceiverID], tx.SenderID)
	}
	edge.Total = edge.Total.Add(tx.Amount)
	edge.Transactions = append(edge.Transactions, tx)
}

func (g *Graph) finalize(nodeSet map[string]struct{}) {
	g.nodes = make([]string, 0, len(nodeSet))
	for node := range nodeSet {
		g.nodes = append(g.nodes, node)
	}
	sort.Strings(g.nodes)
	for _, adj := range []map[string][]string{g.succ, g.pred} {
		for node := range adj {
			sort.Strings(adj[node])
		}
	}
}

// Nodes returns all account ids in lexicographic order.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// NodeCount returns the number of accounts in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of collapsed edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Successors returns the sorted list of accounts the given account sent to.
func (g *Graph) Successors(id string) []string {
	return g.succ[id]
}

// Predecessors returns the sorted list of accounts that sent to the given account.
func (g *Graph) Predecessors(id string) []string {
	return g.pred[id]
}

// HasEdge reports whether a collapsed from→to edge exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[edgeKey{from: from, to: to}]
	return ok
}

// EdgeBetween returns the collapsed edge from→to, or nil.
func (g *Graph) EdgeBetween(from, to string) *Edge {
	return g.edges[edgeKey{from: from, to: to}]
}

// Edges returns all collapsed edges sorted by (from, to).
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		out = append(out, edge)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
