package client

// Document is an opaque record of a collection.
type Document = map[string]any

// Algorithm selects the search strategy.
type Algorithm string

// Supported algorithms.
const (
	BFS           Algorithm = "bfs"
	Weighted      Algorithm = "weighted"
	Bidirectional Algorithm = "bidirectional"
	Batch         Algorithm = "batch"
)

// PathRequest asks for a path between two documents of a collection.
type PathRequest struct {
	Collection         string    `json:"collection"`
	Algorithm          Algorithm `json:"algorithm,omitempty"`
	Start              string    `json:"start"`
	End                string    `json:"end"`
	AdjacencyField     string    `json:"adjacency_field"`
	IDField            string    `json:"id_field,omitempty"`
	WeightField        string    `json:"weight_field,omitempty"`
	MaxDepth           *int      `json:"max_depth,omitempty"`
	StopAtFirstMeeting *bool     `json:"stop_at_first_meeting,omitempty"`
}

// SearchStats reports the cost of a search.
type SearchStats struct {
	StoreQueries  int   `json:"store_queries"`
	NodesVisited  int   `json:"nodes_visited"`
	Rounds        int   `json:"rounds"`
	VisitedBytes  int64 `json:"visited_bytes"`
	FrontierBytes int64 `json:"frontier_bytes"`
}

// Path is a search result. Nodes is empty when Found is false.
type Path struct {
	Found       bool        `json:"found"`
	Depth       int         `json:"depth"`
	Nodes       []Document  `json:"nodes"`
	NodeCount   int         `json:"nodeCount"`
	EdgeWeights []float64   `json:"edgeWeights,omitempty"`
	TotalWeight *float64    `json:"totalWeight,omitempty"`
	Stats       SearchStats `json:"stats"`
}

// LookupRequest runs a $bidirectionalGraphLookup stage over Documents.
type LookupRequest struct {
	Stage     map[string]any `json:"stage"`
	Documents []Document     `json:"documents"`
}

// LookupResult holds one output per consumed input.
type LookupResult struct {
	Results []Document `json:"results"`
}

// BulkResult reports a bulk upsert.
type BulkResult struct {
	Upserted int `json:"upserted"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Backend       string  `json:"backend"`
	Store         string  `json:"store"`
	Subscribers   int     `json:"subscribers"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is returned by the readiness endpoint.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
