package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/pathfinder/internal/api"
	"github.com/persistorai/pathfinder/internal/models"
)

func lookupRouter(svc *mockLookupService) *gin.Engine {
	r := gin.New()
	r.POST("/lookup", api.NewLookupHandler(svc, testLogger()).Run)

	return r
}

func TestLookup_Valid(t *testing.T) {
	t.Parallel()

	svc := &mockLookupService{
		lookupFn: func(_ context.Context, req models.LookupRequest) (*models.LookupResult, error) {
			if _, ok := req.Stage["$bidirectionalGraphLookup"]; !ok {
				t.Errorf("stage not decoded: %v", req.Stage)
			}

			out := make([]models.Document, 0, len(req.Documents))
			for _, d := range req.Documents {
				d = d.Clone()
				d["route"] = []any{}
				out = append(out, d)
			}

			return &models.LookupResult{Results: out}, nil
		},
	}

	w := doRequest(lookupRouter(svc), http.MethodPost, "/lookup",
		`{"stage":{"$bidirectionalGraphLookup":{"from":"g"}},"documents":[{"from":"A"}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res models.LookupResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(res.Results) != 1 || res.Results[0]["from"] != "A" {
		t.Errorf("unexpected results %v", res.Results)
	}
}

func TestLookup_EmptyResultsEncodeAsArray(t *testing.T) {
	t.Parallel()

	svc := &mockLookupService{
		lookupFn: func(context.Context, models.LookupRequest) (*models.LookupResult, error) {
			return &models.LookupResult{}, nil
		},
	}

	w := doRequest(lookupRouter(svc), http.MethodPost, "/lookup", `{"stage":{},"documents":[]}`)

	if strings.TrimSpace(w.Body.String()) != `{"results":[]}` {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestLookup_InvalidStage(t *testing.T) {
	t.Parallel()

	svc := &mockLookupService{
		lookupFn: func(context.Context, models.LookupRequest) (*models.LookupResult, error) {
			return nil, fmt.Errorf("%w: from is required", models.ErrInvalidStageSpec)
		},
	}

	w := doRequest(lookupRouter(svc), http.MethodPost, "/lookup", `{"stage":{},"documents":[{}]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)

	if body["code"] != api.ErrCodeInvalidStage {
		t.Errorf("code = %q", body["code"])
	}
}
