package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opsbrain/ceo-operator/internal/models"
	"github.com/opsbrain/ceo-operator/internal/taskops"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Notion REST API root
	DefaultBaseURL = "https://api.notion.com/v1"
	// notionVersion pins the API schema; property shapes change between versions
	notionVersion = "2022-06-28"
	// DefaultTimeout bounds a single API call
	DefaultTimeout = 30 * time.Second

	// pageSize is the Notion query page size; queries paginate until has_more
	// is false
	pageSize = 100
)

// Client is a Notion REST client scoped to a single task database. It
// implements the task store interface consumed by the bulk operation engine.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	databaseID string
	logger     *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL overrides the API root (tests point it at a local server)
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Notion client for the given database
func NewClient(apiKey, databaseID string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		databaseID: databaseID,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// page is the subset of a Notion page object the assistant reads
type page struct {
	ID             string                     `json:"id"`
	CreatedTime    string                     `json:"created_time"`
	LastEditedTime string                     `json:"last_edited_time"`
	URL            string                     `json:"url"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

type queryResponse struct {
	Results    []page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// ListTasks fetches every page in the task database. Pages that fail to parse
// are skipped with a warning rather than failing the whole fetch.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	var cursor *string

	for {
		body := map[string]any{"page_size": pageSize}
		if cursor != nil {
			body["start_cursor"] = *cursor
		}

		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/databases/%s/query", c.databaseID), body, &resp); err != nil {
			return nil, fmt.Errorf("query database: %w", err)
		}

		for _, p := range resp.Results {
			tasks = append(tasks, c.taskFromPage(p))
		}

		if !resp.HasMore || resp.NextCursor == nil {
			break
		}
		cursor = resp.NextCursor
	}

	c.logger.Info("tasks_fetched", zap.Int("count", len(tasks)))
	return tasks, nil
}

// UpdateTask applies a patch to a single page. Only non-nil patch fields are
// sent.
func (c *Client) UpdateTask(ctx context.Context, id string, patch taskops.TaskPatch) error {
	props := map[string]any{}
	if patch.Status != nil {
		props["Status"] = selectProp(*patch.Status)
	}
	if patch.Priority != nil {
		props["Priority"] = selectProp(*patch.Priority)
	}
	if patch.Project != nil {
		props["Project"] = richTextProp(*patch.Project)
	}
	if patch.Notes != nil {
		props["Notes"] = richTextProp(*patch.Notes)
	}
	if patch.DueDate != nil {
		props["Due Date"] = map[string]any{"date": map[string]any{"start": *patch.DueDate}}
	}
	if len(props) == 0 {
		return nil
	}

	body := map[string]any{"properties": props}
	return c.do(ctx, http.MethodPatch, "/pages/"+id, body, nil)
}

// ArchiveTask archives a page. Notion has no hard delete over the API.
func (c *Client) ArchiveTask(ctx context.Context, id string) error {
	body := map[string]any{"archived": true}
	return c.do(ctx, http.MethodPatch, "/pages/"+id, body, nil)
}

// CreateTask creates a new page in the task database and returns its ID
func (c *Client) CreateTask(ctx context.Context, title string, patch taskops.TaskPatch) (string, error) {
	props := map[string]any{
		"Task": map[string]any{
			"title": []any{
				map[string]any{"text": map[string]any{"content": title}},
			},
		},
	}
	if patch.Status != nil {
		props["Status"] = selectProp(*patch.Status)
	}
	if patch.Priority != nil {
		props["Priority"] = selectProp(*patch.Priority)
	}
	if patch.Project != nil {
		props["Project"] = richTextProp(*patch.Project)
	}
	if patch.Notes != nil {
		props["Notes"] = richTextProp(*patch.Notes)
	}
	if patch.DueDate != nil {
		props["Due Date"] = map[string]any{"date": map[string]any{"start": *patch.DueDate}}
	}

	body := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": props,
	}

	var created page
	if err := c.do(ctx, http.MethodPost, "/pages", body, &created); err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	c.logger.Info("task_created", zap.String("page_id", created.ID))
	return created.ID, nil
}

// Ping verifies database access; used as the health probe
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/databases/"+c.databaseID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", notionVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx Notion API response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error (status %d): %s", e.StatusCode, e.Body)
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func richTextProp(content string) map[string]any {
	return map[string]any{
		"rich_text": []any{
			map[string]any{"text": map[string]any{"content": content}},
		},
	}
}
