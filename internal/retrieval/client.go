// Package retrieval is the long-term memory client. It stores and searches
// conversation text through a retrieval plugin exposing /upsert, /query and
// /delete.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"heygpt/pkg/schema"
)

// Client talks to the retrieval backend.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	topK    int
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewClient creates a client for the backend at baseURL. topK bounds both
// the per-scope request and the merged result.
func NewClient(baseURL, token string, topK int, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		http:    &http.Client{Timeout: time.Minute},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		topK:    topK,
		log:     log,
		now:     time.Now,
	}
}

// Save upserts each input under category and returns the assigned ids.
func (c *Client) Save(ctx context.Context, inputs []schema.MemoryInput, category string) ([]string, error) {
	createdAt := c.now().UTC().Format(time.RFC3339)
	docs := make([]upsertDocument, 0, len(inputs))
	for _, in := range inputs {
		docs = append(docs, upsertDocument{
			Metadata: &upsertMetadata{
				CreatedAt: createdAt,
				SourceID:  category,
				Source:    schema.MemorySource,
				Author:    in.Author,
			},
			Text: in.Text,
		})
	}

	var out upsertResponse
	if err := c.do(ctx, http.MethodPost, "/upsert", upsertRequest{Documents: docs}, &out); err != nil {
		return nil, err
	}
	c.log.Debugw("Saved memories", "category", category, "ids", out.IDs)
	return out.IDs, nil
}

// Query searches every scope with text and returns the best topK hits
// across all of them.
func (c *Client) Query(ctx context.Context, text string, scopes []schema.QueryScope) ([]schema.MemoryRecord, error) {
	queries := make([]query, 0, len(scopes))
	for i := range scopes {
		scope := scopes[i]
		if err := schema.ValidateQueryScope(&scope); err != nil {
			return nil, fmt.Errorf("query scope %d: %w", i, err)
		}
		category := scope.Category
		queries = append(queries, query{
			Query: text,
			TopK:  c.topK,
			Filter: &queryFilter{
				SourceID:  &category,
				Source:    schema.MemorySource,
				StartDate: formatBound(scope.Window.Min),
				EndDate:   formatBound(scope.Window.Max),
			},
		})
	}

	var out queryResponse
	if err := c.do(ctx, http.MethodPost, "/query", queryRequest{Queries: queries}, &out); err != nil {
		return nil, err
	}

	var records []schema.MemoryRecord
	for _, result := range out.Results {
		for _, doc := range result.Results {
			records = append(records, toRecord(doc))
		}
	}
	return TopK(records, c.topK), nil
}

// Delete removes the memory with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	c.log.Debugw("Deleting memory", "id", id)
	return c.do(ctx, http.MethodDelete, "/delete", deleteRequest{IDs: []string{id}}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := strings.TrimPrefix(path, "/")
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Message: "request failed", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warnw("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		msg := strings.TrimSpace(buf.String())
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Op: op, Code: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Op: op, Message: "decode response", Err: err}
	}
	return nil
}

func formatBound(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// toRecord maps a search hit to a record. Missing metadata becomes the zero
// value; an unparseable timestamp becomes the zero time.
func toRecord(doc documentResult) schema.MemoryRecord {
	rec := schema.MemoryRecord{
		ID:    doc.ID,
		Text:  doc.Text,
		Score: doc.Score,
	}
	if doc.Metadata.Author != nil {
		rec.Author = *doc.Metadata.Author
	}
	if doc.Metadata.SourceID != nil {
		rec.Category = *doc.Metadata.SourceID
	}
	if doc.Metadata.CreatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *doc.Metadata.CreatedAt); err == nil {
			rec.CreatedAt = t
		}
	}
	return rec
}
