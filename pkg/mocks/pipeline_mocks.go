// Package mocks provides testify mocks for the pipeline collaborators.
package mocks

import (
	"context"

	"github.com/dukex/benchbot/pkg/bench"
	"github.com/dukex/benchbot/pkg/events"
	"github.com/dukex/benchbot/pkg/github"
	"github.com/stretchr/testify/mock"
)

// MockProvisioner is a mock implementation of pipeline.Provisioner.
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockRunner is a mock implementation of pipeline.Runner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, id bench.HarnessID) (bench.Invocation, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(bench.Invocation), args.Error(1)
}

// MockPublisher is a mock implementation of pipeline.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) CreateComment(ctx context.Context, comment github.CommentRequest) error {
	args := m.Called(ctx, comment)

	return args.Error(0)
}

// MockNotifier is a mock implementation of pipeline.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, topic, key string, event events.Event) error {
	args := m.Called(ctx, topic, key, event)

	return args.Error(0)
}

func (m *MockNotifier) GenerateID() string {
	args := m.Called()

	return args.String(0)
}
