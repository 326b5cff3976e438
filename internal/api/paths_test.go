package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/pathfinder/internal/api"
	"github.com/persistorai/pathfinder/internal/models"
)

func pathRouter(svc *mockPathService) *gin.Engine {
	r := gin.New()
	h := api.NewPathHandler(svc, testLogger())
	r.POST("/paths", h.Find)
	r.GET("/paths/:collection/:from/:to", h.Get)

	return r
}

func TestPathFind_Valid(t *testing.T) {
	t.Parallel()

	var got models.PathRequest
	svc := &mockPathService{
		findFn: func(_ context.Context, req models.PathRequest) (*models.Path, error) {
			got = req
			return models.NewPath([]models.Document{{"_id": "A"}, {"_id": "B"}}), nil
		},
	}

	w := doRequest(pathRouter(svc), http.MethodPost, "/paths",
		`{"collection":"graph","algorithm":"bidirectional","start":"A","end":"B","adjacency_field":"connections","max_depth":4}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got.Algorithm != models.AlgorithmBidirectional || got.MaxDepth == nil || *got.MaxDepth != 4 {
		t.Errorf("request not decoded: %+v", got)
	}

	var path models.Path
	if err := json.Unmarshal(w.Body.Bytes(), &path); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if !path.Found || path.Depth != 1 || path.NodeCount != 2 {
		t.Errorf("unexpected path %+v", path)
	}
}

func TestPathGet_QueryParameters(t *testing.T) {
	t.Parallel()

	var got models.PathRequest
	svc := &mockPathService{
		findFn: func(_ context.Context, req models.PathRequest) (*models.Path, error) {
			got = req
			return models.NotFound(), nil
		},
	}

	w := doRequest(pathRouter(svc), http.MethodGet,
		"/paths/airports/JFK/LAX?algorithm=weighted&field=routes&weight_field=miles&max_depth=3&stop_at_first_meeting=false", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got.Collection != "airports" || got.Start != "JFK" || got.End != "LAX" {
		t.Errorf("path params not mapped: %+v", got)
	}

	if got.WeightField != "miles" || *got.MaxDepth != 3 || *got.StopAtFirstMeeting {
		t.Errorf("query params not mapped: %+v", got)
	}
}

func TestPathGet_BadQuery(t *testing.T) {
	t.Parallel()

	svc := &mockPathService{}

	for _, q := range []string{"max_depth=abc", "stop_at_first_meeting=maybe"} {
		w := doRequest(pathRouter(svc), http.MethodGet, "/paths/g/A/B?field=c&"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestPathFind_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", models.ErrMissingEnd, http.StatusBadRequest, api.ErrCodeValidationError},
		{"field too long", models.ErrFieldTooLong("start", 10), http.StatusBadRequest, api.ErrCodeValidationError},
		{"unknown algorithm", models.ErrUnknownAlgorithm, http.StatusBadRequest, api.ErrCodeValidationError},
		{"collection", fmt.Errorf("resolving collection x: %w", models.ErrCollectionNotFound), http.StatusNotFound, api.ErrCodeNotFound},
		{"memory", fmt.Errorf("bfs search: %w", models.ErrMemoryLimitExceeded), http.StatusInsufficientStorage, api.ErrCodeMemoryLimit},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, api.ErrCodeTimeout},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, api.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockPathService{
				findFn: func(context.Context, models.PathRequest) (*models.Path, error) { return nil, tt.err },
			}

			w := doRequest(pathRouter(svc), http.MethodPost, "/paths", `{"collection":"x"}`)

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if body["code"] != tt.wantBody {
				t.Errorf("code = %q, want %q", body["code"], tt.wantBody)
			}

			if tt.wantCode == http.StatusInternalServerError && body["message"] != "internal server error" {
				t.Errorf("internal error leaked: %q", body["message"])
			}
		})
	}
}

func TestPathFind_MalformedJSON(t *testing.T) {
	t.Parallel()

	w := doRequest(pathRouter(&mockPathService{}), http.MethodPost, "/paths", `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
