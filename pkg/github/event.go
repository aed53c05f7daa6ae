// Package github holds the review-platform payload types and the REST client
// used to publish benchmark reports as pull request comments.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Label actions delivered by the platform for pull_request events.
const (
	ActionLabeled   = "labeled"
	ActionUnlabeled = "unlabeled"
)

var ErrMissingRepository = errors.New("event payload has no repository")

type User struct {
	Login string `json:"login"`
}

type Label struct {
	Name string `json:"name"`
}

type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Head   struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    User   `json:"owner"`
}

// LabelEvent is the pull_request webhook payload restricted to the fields the
// pipeline consumes. The same shape is written by the CI runner to the event
// payload file consumed in single-shot mode.
type LabelEvent struct {
	Action      string      `json:"action"`
	Label       Label       `json:"label"`
	PullRequest PullRequest `json:"pull_request"`
	Repository  Repository  `json:"repository"`
	Sender      User        `json:"sender"`
}

// TriggerEvent is the immutable, validated projection of a LabelEvent that the
// pipeline operates on.
type TriggerEvent struct {
	DeliveryID string `json:"delivery_id,omitempty"`
	Action     string `json:"action"      validate:"required"`
	Label      string `json:"label"       validate:"required"`
	Owner      string `json:"owner"       validate:"required"`
	Repo       string `json:"repo"        validate:"required"`
	Number     int    `json:"number"      validate:"required,gt=0"`
	HeadSHA    string `json:"head_sha,omitempty"`
	Sender     string `json:"sender,omitempty"`
}

// Key identifies the review thread, used for event-bus partitioning and run
// locks.
func (t TriggerEvent) Key() string {
	return fmt.Sprintf("%s/%s#%d", t.Owner, t.Repo, t.Number)
}

// Trigger flattens a parsed payload into the pipeline's event shape.
func (e *LabelEvent) Trigger() (TriggerEvent, error) {
	if e.Repository.Owner.Login == "" || e.Repository.Name == "" {
		return TriggerEvent{}, ErrMissingRepository
	}

	return TriggerEvent{
		Action:  e.Action,
		Label:   e.Label.Name,
		Owner:   e.Repository.Owner.Login,
		Repo:    e.Repository.Name,
		Number:  e.PullRequest.Number,
		HeadSHA: e.PullRequest.Head.SHA,
		Sender:  e.Sender.Login,
	}, nil
}

// ParseLabelEvent decodes a pull_request webhook payload.
func ParseLabelEvent(r io.Reader) (*LabelEvent, error) {
	var event LabelEvent
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to decode label event payload: %w", err)
	}

	return &event, nil
}

// ReadEventFile parses the event payload file the CI runner stages for
// single-shot pipeline runs.
func ReadEventFile(path string) (*LabelEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event payload %s: %w", path, err)
	}
	defer f.Close()

	return ParseLabelEvent(f)
}
