package mediaforge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_flushesAtFlushSize(t *testing.T) {
	client := NewFakeCoordinatorClient(nil)
	reporter := NewReporter(client, 3, NewMetrics(), mustTestLogger())

	results := make(chan UrlResult, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reporter.Run(ctx, results) }()

	for i := 0; i < 3; i++ {
		results <- UrlResult{URL: "https://x", Outcome: SuccessOutcome{Mime: "image/png", Size: 400}}
	}

	require.Eventually(t, func() bool {
		return client.SubmittedCount() == 3
	}, time.Second, time.Millisecond, "expected a flush once FlushSize results were buffered")

	cancel()
	require.NoError(t, <-done)
}

func TestReporter_flushesRemainderOnChannelClose(t *testing.T) {
	client := NewFakeCoordinatorClient(nil)
	reporter := NewReporter(client, 100, NewMetrics(), mustTestLogger())

	results := make(chan UrlResult, 10)
	results <- UrlResult{URL: "https://x", Outcome: SuccessOutcome{Mime: "image/png", Size: 400}}
	close(results)

	err := reporter.Run(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, 1, client.SubmittedCount())
}

func TestReporter_flushesRemainderOnContextCancel(t *testing.T) {
	client := NewFakeCoordinatorClient(nil)
	reporter := NewReporter(client, 100, NewMetrics(), mustTestLogger())

	results := make(chan UrlResult, 10)
	results <- UrlResult{URL: "https://x", Outcome: SuccessOutcome{Mime: "image/png", Size: 400}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reporter.Run(ctx, results) }()

	// Wait until the reporter has taken the result into its buffer, so the
	// cancellation below finds it there.
	require.Eventually(t, func() bool {
		return len(results) == 0
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, client.SubmittedCount())
}

func TestReporter_transportErrorClearsBufferRegardless(t *testing.T) {
	client := NewFakeCoordinatorClient(nil)
	client.SubmitErr = errors.New("coordinator down")
	reporter := NewReporter(client, 1, NewMetrics(), mustTestLogger())

	results := make(chan UrlResult, 1)
	results <- UrlResult{URL: "https://x", Outcome: SuccessOutcome{Mime: "image/png", Size: 400}}
	close(results)

	err := reporter.Run(context.Background(), results)
	require.NoError(t, err, "a transport failure must be swallowed, not propagated")
	assert.Equal(t, 0, client.SubmittedCount(), "failed submissions are not recorded")
}
