package client

import "context"

// LookupService runs graph lookup stages.
type LookupService struct {
	c *Client
}

// Run evaluates stage against docs.
func (s *LookupService) Run(ctx context.Context, stage map[string]any, docs []Document) ([]Document, error) {
	var resp LookupResult
	if err := s.c.post(ctx, "/api/v1/lookup", LookupRequest{Stage: stage, Documents: docs}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
