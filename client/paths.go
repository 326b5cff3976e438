package client

import (
	"context"
	"fmt"
	"net/url"
)

// PathService runs path searches.
type PathService struct {
	c *Client
}

// Find runs the search described by req.
func (s *PathService) Find(ctx context.Context, req PathRequest) (*Path, error) {
	var resp Path
	if err := s.c.post(ctx, "/api/v1/paths", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Between searches collection from one key to another over field with the
// given algorithm and server defaults for everything else.
func (s *PathService) Between(ctx context.Context, collection, from, to, field string, alg Algorithm) (*Path, error) {
	path := fmt.Sprintf("/api/v1/paths/%s/%s/%s",
		url.PathEscape(collection), url.PathEscape(from), url.PathEscape(to))

	params := url.Values{}
	params.Set("field", field)
	if alg != "" {
		params.Set("algorithm", string(alg))
	}

	var resp Path
	if err := s.c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
