package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
)

const defaultSearchLimit = 5

// QdrantClient implements the VectorBackend interface against the Qdrant
// HTTP API.
type QdrantClient struct {
	client         *http.Client
	baseURL        string
	apiKey         string
	filteredDelete bool
	logger         arbor.ILogger
}

// NewQdrantClient creates a new Qdrant-backed vector store client
func NewQdrantClient(config *common.QdrantConfig, timeout time.Duration, logger arbor.ILogger) (interfaces.VectorBackend, error) {
	base := strings.TrimRight(config.URL, "/")
	if base == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	return &QdrantClient{
		client:         &http.Client{Timeout: timeout},
		baseURL:        base,
		apiKey:         config.APIKey,
		filteredDelete: config.SupportsFilteredDelete,
		logger:         logger,
	}, nil
}

// qdrantCollectionInfo captures the subset of the collection descriptor this
// application reads.
type qdrantCollectionInfo struct {
	Result struct {
		PointsCount int `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

func (q *QdrantClient) GetCollectionInfo(ctx context.Context, name string) (*models.CollectionInfo, error) {
	var info qdrantCollectionInfo
	err := q.doRequest(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", name), nil, &info)
	if err != nil {
		return nil, err
	}
	return &models.CollectionInfo{
		VectorSize: info.Result.Config.Params.Vectors.Size,
		Distance:   info.Result.Config.Params.Vectors.Distance,
		PointCount: info.Result.PointsCount,
	}, nil
}

func (q *QdrantClient) CreateCollection(ctx context.Context, name string, vectorSize int, distance string) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": distance,
		},
	}
	return q.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", name), body, nil)
}

func (q *QdrantClient) DeleteCollection(ctx context.Context, name string) error {
	return q.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/collections/%s", name), nil, nil)
}

func (q *QdrantClient) UpsertPoints(ctx context.Context, collection string, points []models.Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	return q.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", collection), body, nil)
}

func (q *QdrantClient) Search(ctx context.Context, collection string, req models.SearchRequest) ([]models.ScoredPoint, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	request := map[string]any{
		"vector":       req.Vector,
		"limit":        limit,
		"with_payload": req.WithPayload,
	}
	if req.Filter != nil && len(req.Filter.Must) > 0 {
		request["filter"] = req.Filter
	}

	var response struct {
		Result []models.ScoredPoint `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", collection)
	if err := q.doRequest(ctx, http.MethodPost, path, request, &response); err != nil {
		return nil, err
	}
	return response.Result, nil
}

func (q *QdrantClient) Scroll(ctx context.Context, collection string, req models.ScrollRequest) (*models.ScrollResult, error) {
	request := map[string]any{
		"limit":        req.Limit,
		"with_payload": req.WithPayload,
	}
	if req.Offset != nil {
		request["offset"] = req.Offset
	}
	if req.Filter != nil && len(req.Filter.Must) > 0 {
		request["filter"] = req.Filter
	}

	var response struct {
		Result models.ScrollResult `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/scroll", collection)
	if err := q.doRequest(ctx, http.MethodPost, path, request, &response); err != nil {
		return nil, err
	}
	return &response.Result, nil
}

func (q *QdrantClient) DeletePoints(ctx context.Context, collection string, selector models.PointSelector) error {
	request := map[string]any{}
	if len(selector.IDs) > 0 {
		request["points"] = selector.IDs
	}
	if selector.Filter != nil && len(selector.Filter.Must) > 0 {
		request["filter"] = selector.Filter
	}
	if len(request) == 0 {
		return nil
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", collection)
	return q.doRequest(ctx, http.MethodPost, path, request, nil)
}

func (q *QdrantClient) SupportsFilteredDelete() bool {
	return q.filteredDelete
}

func (q *QdrantClient) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var buf *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("qdrant: marshal request: %w", err)
		}
		buf = bytes.NewReader(payload)
	} else {
		buf = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("qdrant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrStoreUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("%w: read response: %v", ErrStoreUnavailable, readErr)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, path)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Status struct {
				Error string `json:"error"`
			} `json:"status"`
		}
		if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Status.Error != "" {
			return fmt.Errorf("%w: %s (%d)", ErrStoreUnavailable, apiErr.Status.Error, resp.StatusCode)
		}
		return fmt.Errorf("%w: request failed with status %d", ErrStoreUnavailable, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrStoreUnavailable, err)
		}
	}
	return nil
}
