package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

const upsertBatchSize = 64

// pointNamespace makes point IDs a pure function of chunk identity, so
// re-ingesting the same corpus yields the same IDs and result ordering
// stays reproducible across identical index states.
var pointNamespace = uuid.MustParse("5f2b9c41-cf1d-4f77-9a83-2e9c3be0a8d1")

// Client is a Qdrant HTTP client serving one logical collection behind an
// alias. Ingestion builds a fresh versioned collection and atomically moves
// the alias; queries always search through the alias and therefore never
// observe a partially built index.
type Client struct {
	baseURL    string
	alias      string
	httpClient *http.Client
}

func New(baseURL, alias string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		alias:      alias,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ReplaceCollection publishes chunks as a new index version: create a
// timestamped collection, index the role payload field, upsert all points,
// swap the alias in one request, then drop the superseded collection.
func (c *Client) ReplaceCollection(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "replace collection", errors.New("no chunks to index"))
	}
	vectorSize := len(chunks[0].Vector)
	if vectorSize == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "replace collection", errors.New("chunks carry no vectors"))
	}

	versioned := fmt.Sprintf("%s_v%d", c.alias, time.Now().UnixNano())

	if err := c.createCollection(ctx, versioned, vectorSize); err != nil {
		return err
	}
	if err := c.createRoleIndex(ctx, versioned); err != nil {
		c.cleanupCollection(ctx, versioned)
		return err
	}
	if err := c.upsertChunks(ctx, versioned, chunks); err != nil {
		c.cleanupCollection(ctx, versioned)
		return err
	}

	previous, err := c.aliasTarget(ctx)
	if err != nil {
		c.cleanupCollection(ctx, versioned)
		return err
	}
	if err := c.swapAlias(ctx, versioned, previous); err != nil {
		c.cleanupCollection(ctx, versioned)
		return err
	}
	if previous != "" && previous != versioned {
		// Old version is unreachable once the alias moved; dropping it is
		// cleanup, not correctness, so a failure is only reported.
		if err := c.deleteCollection(ctx, previous); err != nil {
			slog.Warn("superseded_collection_drop_failed", "collection", previous, "error", err)
		}
	}
	return nil
}

// cleanupCollection removes a half-built versioned collection after a failed
// publish. The alias never pointed at it, so this is best effort: a failure
// here leaves an orphan behind but cannot corrupt the published index.
func (c *Client) cleanupCollection(ctx context.Context, name string) {
	if err := c.deleteCollection(ctx, name); err != nil {
		slog.Warn("orphan_collection_cleanup_failed", "collection", name, "error", err)
	}
}

// Search returns up to limit nearest neighbors whose role payload is in
// allowedRoles. The filter is part of the search request itself, enforced
// by the engine during candidate traversal; a disallowed point is never a
// candidate, no matter how close it is. An empty allowedRoles is rejected
// outright: the retriever short-circuits that case, and refusing it here
// keeps a miswired caller from turning "no access" into "no filter".
func (c *Client) Search(ctx context.Context, queryVector []float32, limit int, allowedRoles []string) ([]domain.RetrievedChunk, error) {
	if len(allowedRoles) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "vector search", errors.New("empty allowed role set"))
	}

	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "role",
					"match": map[string]any{"any": allowedRoles},
				},
			},
		},
	}

	var searchResp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", c.alias)
	if err := c.doJSON(ctx, http.MethodPost, path, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.RetrievedChunk, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.RetrievedChunk{
			ID:          r.ID,
			Text:        payloadString(r.Payload, "text"),
			ContentRole: payloadString(r.Payload, "role"),
			SourceName:  payloadString(r.Payload, "source"),
			SectionPath: payloadStrings(r.Payload, "section_path"),
			Score:       r.Score,
		})
	}
	return out, nil
}

// Count reports the number of points behind the alias. A missing alias or a
// zero count means the index has not been published yet.
func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", c.alias)
	err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"exact": true}, &countResp, "count")
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return 0, domain.WrapError(domain.ErrEmptyIndex, "count points", err)
		}
		return 0, err
	}
	return countResp.Result.Count, nil
}

func (c *Client) createCollection(ctx context.Context, name string, vectorSize int) error {
	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	return c.doJSON(ctx, http.MethodPut, "/collections/"+name, reqBody, nil, "create collection")
}

func (c *Client) createRoleIndex(ctx context.Context, name string) error {
	reqBody := map[string]any{
		"field_name":   "role",
		"field_schema": "keyword",
	}
	path := fmt.Sprintf("/collections/%s/index", name)
	return c.doJSON(ctx, http.MethodPut, path, reqBody, nil, "create role index")
}

func (c *Client) upsertChunks(ctx context.Context, name string, chunks []domain.Chunk) error {
	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", name)
	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		points := make([]point, 0, end-start)
		for i := start; i < end; i++ {
			chunk := chunks[i]
			points = append(points, point{
				ID:     pointID(chunk, i),
				Vector: chunk.Vector,
				Payload: map[string]any{
					"role":         chunk.ContentRole,
					"source":       chunk.SourceName,
					"section_path": chunk.SectionPath,
					"chunk_index":  i,
					"text":         chunk.Text,
				},
			})
		}

		if err := c.doJSON(ctx, http.MethodPut, path, map[string]any{"points": points}, nil, "upsert points"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) aliasTarget(ctx context.Context) (string, error) {
	var aliasResp struct {
		Result struct {
			Aliases []struct {
				AliasName      string `json:"alias_name"`
				CollectionName string `json:"collection_name"`
			} `json:"aliases"`
		} `json:"result"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/aliases", nil, &aliasResp, "list aliases"); err != nil {
		return "", err
	}
	for _, a := range aliasResp.Result.Aliases {
		if a.AliasName == c.alias {
			return a.CollectionName, nil
		}
	}
	return "", nil
}

// swapAlias repoints the alias in a single aliases request; Qdrant applies
// the action list atomically, so readers see the old or the new collection,
// never neither.
func (c *Client) swapAlias(ctx context.Context, target, previous string) error {
	actions := []map[string]any{}
	if previous != "" {
		actions = append(actions, map[string]any{
			"delete_alias": map[string]any{"alias_name": c.alias},
		})
	}
	actions = append(actions, map[string]any{
		"create_alias": map[string]any{
			"collection_name": target,
			"alias_name":      c.alias,
		},
	})
	return c.doJSON(ctx, http.MethodPost, "/collections/aliases", map[string]any{"actions": actions}, nil, "swap alias")
}

func (c *Client) deleteCollection(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodDelete, "/collections/"+name, nil, nil, "delete collection")
}

func pointID(chunk domain.Chunk, index int) string {
	seed := fmt.Sprintf("%s|%s|%d|%s", chunk.SourceName, chunk.ContentRole, index, chunk.Text)
	return uuid.NewSHA1(pointNamespace, []byte(seed)).String()
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func payloadStrings(payload map[string]any, key string) []string {
	raw, ok := payload[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
