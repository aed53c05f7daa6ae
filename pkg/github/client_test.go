package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	err := client.CreateComment(context.Background(), CommentRequest{
		Owner:  "o",
		Repo:   "r",
		Number: 42,
		Body:   "benchmark report",
	})
	require.NoError(t, err)

	assert.Equal(t, "/repos/o/r/issues/42/comments", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, map[string]string{"body": "benchmark report"}, gotBody)
}

func TestCreateCommentSendsBodyUnmodified(t *testing.T) {
	raw := "line1\n```\ncode & <markup>\n```\nline2"

	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))

	require.NoError(t, client.CreateComment(context.Background(), CommentRequest{
		Owner: "o", Repo: "r", Number: 1, Body: raw,
	}))

	assert.Equal(t, raw, gotBody["body"])
}

func TestCreateCommentFailureStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "not_found", status: http.StatusNotFound},
		{name: "forbidden", status: http.StatusForbidden},
		{name: "rate_limited", status: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient("token", WithBaseURL(server.URL))

			err := client.CreateComment(context.Background(), CommentRequest{
				Owner: "o", Repo: "r", Number: 1, Body: "x",
			})
			assert.Error(t, err)
		})
	}
}
