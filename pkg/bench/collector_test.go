package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRequiresBothHarnesses(t *testing.T) {
	collector := NewCollector()

	assert.False(t, collector.Complete())

	_, _, err := collector.Outputs()
	require.ErrorIs(t, err, ErrIncomplete)

	require.NoError(t, collector.Add(Invocation{Harness: HarnessCounter, Output: "A-metrics"}))
	assert.False(t, collector.Complete())

	require.NoError(t, collector.Add(Invocation{Harness: HarnessStatistical, Output: "B-metrics"}))
	assert.True(t, collector.Complete())

	counter, statistical, err := collector.Outputs()
	require.NoError(t, err)
	assert.Equal(t, "A-metrics", counter)
	assert.Equal(t, "B-metrics", statistical)
}

func TestCollectorRejectsDuplicates(t *testing.T) {
	collector := NewCollector()

	require.NoError(t, collector.Add(Invocation{Harness: HarnessCounter}))

	err := collector.Add(Invocation{Harness: HarnessCounter})
	assert.ErrorIs(t, err, ErrDuplicateInvocation)
}

func TestCollectorRejectsUnknownHarness(t *testing.T) {
	collector := NewCollector()

	err := collector.Add(Invocation{Harness: "wallclock"})
	assert.ErrorIs(t, err, ErrUnknownHarness)
}

func TestCollectorDoesNotTransformContent(t *testing.T) {
	collector := NewCollector()
	noisy := "  raw\toutput\nwith ANSI \x1b[31mleftovers\x1b[0m\n"

	require.NoError(t, collector.Add(Invocation{Harness: HarnessCounter, Output: noisy}))
	require.NoError(t, collector.Add(Invocation{Harness: HarnessStatistical, Output: noisy}))

	counter, statistical, err := collector.Outputs()
	require.NoError(t, err)
	assert.Equal(t, noisy, counter)
	assert.Equal(t, noisy, statistical)
}
