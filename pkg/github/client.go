package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.github.com"

const clientTimeout = 20 * time.Second

// Client is a minimal REST client for the review platform. The pipeline only
// ever creates issue comments, so that is all it speaks.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type ClientOption func(*Client)

// WithBaseURL points the client at a different API root, used against
// GitHub Enterprise hosts and test servers.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: clientTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// CommentRequest identifies the pull request thread a report is published to.
// PR comments are issue comments in the REST API, keyed by issue number.
type CommentRequest struct {
	Owner  string `json:"-" validate:"required"`
	Repo   string `json:"-" validate:"required"`
	Number int    `json:"-" validate:"required,gt=0"`
	Body   string `json:"body" validate:"required"`
}

// CreateComment performs exactly one comment-creation call. It never edits or
// deduplicates earlier comments; every pipeline run produces a fresh comment.
func (c *Client) CreateComment(ctx context.Context, comment CommentRequest) error {
	payload, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("failed to encode comment body: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments",
		c.baseURL, comment.Owner, comment.Repo, comment.Number)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create comment request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create comment on %s/%s#%d: %w",
			comment.Owner, comment.Repo, comment.Number, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

		return fmt.Errorf("comment creation on %s/%s#%d returned status %d: %s",
			comment.Owner, comment.Repo, comment.Number, res.StatusCode, string(body))
	}

	return nil
}
