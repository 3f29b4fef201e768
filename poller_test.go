package mediaforge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_enqueuesFetchedURLs(t *testing.T) {
	client := NewFakeCoordinatorClient([]string{"https://a", "https://b", "https://c"})
	poller := NewPoller(client, 10, time.Millisecond, mustTestLogger())

	tasks := make(chan Task, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx, tasks) }()

	var got []string
	for i := 0; i < 3; i++ {
		select {
		case task := <-tasks:
			got = append(got, task.(DownloadTask).URL)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for task")
		}
	}
	assert.Equal(t, []string{"https://a", "https://b", "https://c"}, got)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_retriesAfterFetchError(t *testing.T) {
	client := NewFakeCoordinatorClient(nil)
	client.FetchErr = errors.New("coordinator unavailable")
	poller := NewPoller(client, 10, 5*time.Millisecond, mustTestLogger())

	tasks := make(chan Task, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := poller.Run(ctx, tasks)
	require.NoError(t, err)
}

func TestPoller_blocksOnFullQueue(t *testing.T) {
	client := NewFakeCoordinatorClient([]string{"https://a", "https://b"})
	poller := NewPoller(client, 10, time.Millisecond, mustTestLogger())

	tasks := make(chan Task) // unbuffered: nothing ever reads it
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := poller.Run(ctx, tasks)
	require.NoError(t, err, "poller must return cleanly on ctx cancellation even mid-block")
}
