package github

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const labeledPayload = `{
	"action": "labeled",
	"label": {"name": "benchmark"},
	"pull_request": {
		"number": 42,
		"title": "Speed up proof construction",
		"state": "open",
		"head": {"sha": "abc123"}
	},
	"repository": {
		"name": "r",
		"full_name": "o/r",
		"owner": {"login": "o"}
	},
	"sender": {"login": "reviewer"}
}`

func TestParseLabelEvent(t *testing.T) {
	event, err := ParseLabelEvent(strings.NewReader(labeledPayload))
	require.NoError(t, err)

	trigger, err := event.Trigger()
	require.NoError(t, err)

	assert.Equal(t, ActionLabeled, trigger.Action)
	assert.Equal(t, "benchmark", trigger.Label)
	assert.Equal(t, "o", trigger.Owner)
	assert.Equal(t, "r", trigger.Repo)
	assert.Equal(t, 42, trigger.Number)
	assert.Equal(t, "abc123", trigger.HeadSHA)
	assert.Equal(t, "reviewer", trigger.Sender)
	assert.Equal(t, "o/r#42", trigger.Key())
}

func TestParseLabelEventMalformed(t *testing.T) {
	_, err := ParseLabelEvent(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestTriggerRequiresRepository(t *testing.T) {
	event := &LabelEvent{Action: ActionLabeled}

	_, err := event.Trigger()
	assert.ErrorIs(t, err, ErrMissingRepository)
}
