package rooms

// Graph is the per-peer "currently matched with" relation. It is logically
// derived from room membership but kept standalone so a departure can be
// classified by the counterpart's degree: a survivor whose only adjacency is
// the departing peer was in a strict 1:1 pairing.
//
// Invariant: edges are symmetric until one side is explicitly removed, and a
// peer with no adjacencies has no map entry at all.
type Graph struct {
	adj map[string]map[string]struct{}
}

func NewGraph() *Graph {
	return &Graph{adj: make(map[string]map[string]struct{})}
}

// Link records a symmetric adjacency between a and b. Self-links are ignored.
func (g *Graph) Link(a, b string) {
	if a == b {
		return
	}
	g.link(a, b)
	g.link(b, a)
}

func (g *Graph) link(from, to string) {
	set, ok := g.adj[from]
	if !ok {
		set = make(map[string]struct{})
		g.adj[from] = set
	}
	set[to] = struct{}{}
}

// Unlink removes the a–b edge in both directions, deleting entries that
// become empty.
func (g *Graph) Unlink(a, b string) {
	g.unlink(a, b)
	g.unlink(b, a)
}

func (g *Graph) unlink(from, to string) {
	if set, ok := g.adj[from]; ok {
		delete(set, to)
		if len(set) == 0 {
			delete(g.adj, from)
		}
	}
}

// Drop removes every edge touching the peer.
func (g *Graph) Drop(peerID string) {
	for other := range g.adj[peerID] {
		g.unlink(other, peerID)
	}
	delete(g.adj, peerID)
}

// Adjacent returns a copy of the peer's adjacency set.
func (g *Graph) Adjacent(peerID string) []string {
	set := g.adj[peerID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adj[a][b]
	return ok
}

func (g *Graph) Degree(peerID string) int { return len(g.adj[peerID]) }

// SoleMatch reports whether the peer's only adjacency is other — the strict
// 1:1 case from the peer's perspective.
func (g *Graph) SoleMatch(peerID, other string) bool {
	set := g.adj[peerID]
	if len(set) != 1 {
		return false
	}
	_, ok := set[other]
	return ok
}
