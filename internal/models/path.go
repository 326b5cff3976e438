package models

// Direction tells which end of a bidirectional search discovered a node.
type Direction int

const (
	// Forward expansion starts at the start node and follows adjacency entries.
	Forward Direction = iota
	// Backward expansion starts at the end node and follows reverse-adjacency lookups.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}

	return "forward"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Backward
	}

	return Forward
}

// SearchRecord is the discovery metadata kept per visited node and direction.
// Parent is empty for roots.
type SearchRecord struct {
	ID        NodeKey   `json:"id"`
	Depth     int       `json:"depth"`
	Direction Direction `json:"direction"`
	Parent    NodeKey   `json:"parent,omitempty"`
}

// IsRoot reports whether the record seeded its direction.
func (r SearchRecord) IsRoot() bool {
	return r.Parent == ""
}

// Algorithm names a search strategy.
type Algorithm string

// Supported algorithms.
const (
	AlgorithmBFS           Algorithm = "bfs"
	AlgorithmWeighted      Algorithm = "weighted"
	AlgorithmBidirectional Algorithm = "bidirectional"
	AlgorithmBatch         Algorithm = "batch"
)

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmBFS, AlgorithmWeighted, AlgorithmBidirectional, AlgorithmBatch:
		return true
	default:
		return false
	}
}

// SearchStats records the cost of one search invocation.
type SearchStats struct {
	StoreQueries  int   `json:"store_queries"`
	NodesVisited  int   `json:"nodes_visited"`
	Rounds        int   `json:"rounds"`
	VisitedBytes  int64 `json:"visited_bytes"`
	FrontierBytes int64 `json:"frontier_bytes"`
}

// Path is the uniform result of every search strategy. When Found is false
// Nodes is empty and Depth/NodeCount carry no meaning.
type Path struct {
	Found       bool        `json:"found"`
	Depth       int         `json:"depth"`
	Nodes       []Document  `json:"nodes"`
	NodeCount   int         `json:"nodeCount"`
	EdgeWeights []float64   `json:"edgeWeights,omitempty"`
	TotalWeight *float64    `json:"totalWeight,omitempty"`
	Stats       SearchStats `json:"stats"`
}

// NotFound returns an empty result.
func NotFound() *Path {
	return &Path{Nodes: []Document{}}
}

// NewPath builds a found path from ordered records start to end.
func NewPath(nodes []Document) *Path {
	return &Path{
		Found:     true,
		Depth:     len(nodes) - 1,
		Nodes:     nodes,
		NodeCount: len(nodes),
	}
}

// WithWeights attaches per-hop weights and their sum.
func (p *Path) WithWeights(weights []float64) *Path {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	p.EdgeWeights = weights
	p.TotalWeight = &total

	return p
}

// Keys returns the keys of the path's nodes read from keyField.
func (p *Path) Keys(keyField string) []NodeKey {
	keys := make([]NodeKey, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		k, _ := n.Key(keyField)
		keys = append(keys, k)
	}

	return keys
}
