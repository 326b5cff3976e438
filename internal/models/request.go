package models

// Field length and depth limits for API requests.
const (
	MaxCollectionLength = 128
	MaxKeyLength        = 1024
	MaxFieldLength      = 255
	MaxPathDepth        = 100
	MaxLookupDocuments  = 1000
	MaxBulkDocuments    = 5000
)

// PathRequest asks for a path between two nodes of a collection.
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

// Validate checks the request and fills in the default algorithm.
func (r *PathRequest) Validate() error {
	if r.Collection == "" {
		return ErrMissingCollection
	}

	if len(r.Collection) > MaxCollectionLength {
		return ErrFieldTooLong("collection", MaxCollectionLength)
	}

	if r.Start == "" {
		return ErrMissingStart
	}

	if r.End == "" {
		return ErrMissingEnd
	}

	if len(r.Start) > MaxKeyLength {
		return ErrFieldTooLong("start", MaxKeyLength)
	}

	if len(r.End) > MaxKeyLength {
		return ErrFieldTooLong("end", MaxKeyLength)
	}

	if r.Algorithm == "" {
		r.Algorithm = AlgorithmBFS
	}

	if !r.Algorithm.Valid() {
		return ErrUnknownAlgorithm
	}

	if _, ok := FieldPath(r.AdjacencyField); !ok {
		return ErrMissingField
	}

	for name, v := range map[string]string{
		"adjacency_field": r.AdjacencyField,
		"id_field":        r.IDField,
		"weight_field":    r.WeightField,
	} {
		if len(v) > MaxFieldLength {
			return ErrFieldTooLong(name, MaxFieldLength)
		}
	}

	if r.Algorithm == AlgorithmWeighted {
		if _, ok := FieldPath(r.WeightField); !ok {
			return InvalidArgument("weight_field is required for weighted search")
		}
	}

	if r.MaxDepth != nil && (*r.MaxDepth < 0 || *r.MaxDepth > MaxPathDepth) {
		return InvalidArgument("max_depth must be between 0 and %d", MaxPathDepth)
	}

	return nil
}

// LookupRequest runs a graph lookup stage over a batch of input documents.
type LookupRequest struct {
	Stage     map[string]any `json:"stage"`
	Documents []Document     `json:"documents"`
}

// Validate checks the request.
func (r *LookupRequest) Validate() error {
	if len(r.Stage) == 0 {
		return InvalidArgument("stage is required")
	}

	if len(r.Documents) == 0 {
		return ErrMissingDocuments
	}

	if len(r.Documents) > MaxLookupDocuments {
		return InvalidArgument("at most %d documents per lookup", MaxLookupDocuments)
	}

	return nil
}

// LookupResult holds the stage outputs for a LookupRequest.
type LookupResult struct {
	Results []Document `json:"results"`
}

// BulkDocumentsRequest upserts documents into a collection.
type BulkDocumentsRequest struct {
	Documents []Document `json:"documents"`
}

// Validate checks that every document carries a key in keyField.
func (r *BulkDocumentsRequest) Validate(keyField string) error {
	if len(r.Documents) == 0 {
		return ErrMissingDocuments
	}

	if len(r.Documents) > MaxBulkDocuments {
		return InvalidArgument("at most %d documents per request", MaxBulkDocuments)
	}

	for i, d := range r.Documents {
		k, ok := d.Key(keyField)
		if !ok {
			return InvalidArgument("document %d has no %s", i, keyField)
		}

		if len(k) > MaxKeyLength {
			return ErrFieldTooLong(keyField, MaxKeyLength)
		}
	}

	return nil
}

// BulkResult reports a bulk upsert.
type BulkResult struct {
	Upserted int `json:"upserted"`
}

// Event is published to websocket subscribers after a search or lookup completes.
type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	Algorithm  Algorithm `json:"algorithm,omitempty"`
	Found      bool      `json:"found"`
	Depth      int       `json:"depth"`
	Inputs     int       `json:"inputs,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// Event types.
const (
	EventSearchCompleted = "search.completed"
	EventLookupCompleted = "lookup.completed"
)
