package mediaforge

import (
	"context"
	"sync"
)

// FakeCoordinatorClient is an in-memory CoordinatorClient for tests (A4):
// FetchAssetURLs drains a preloaded slice in batches; SubmitResults
// accumulates everything it receives for later assertions.
type FakeCoordinatorClient struct {
	mu        sync.Mutex
	pending   []string
	Submitted []UrlResult

	// FetchErr, when set, is returned by FetchAssetURLs instead of a batch.
	FetchErr error
	// SubmitErr, when set, is returned by SubmitResults.
	SubmitErr error
}

// NewFakeCoordinatorClient builds a fake preloaded with urls to serve from
// FetchAssetURLs, in order.
func NewFakeCoordinatorClient(urls []string) *FakeCoordinatorClient {
	return &FakeCoordinatorClient{pending: append([]string(nil), urls...)}
}

func (f *FakeCoordinatorClient) FetchAssetURLs(ctx context.Context, count uint32) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	if len(f.pending) == 0 {
		return nil, nil
	}
	n := int(count)
	if n > len(f.pending) {
		n = len(f.pending)
	}
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	return append([]string(nil), batch...), nil
}

func (f *FakeCoordinatorClient) SubmitResults(ctx context.Context, results []UrlResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	f.Submitted = append(f.Submitted, results...)
	return nil
}

// SubmittedCount reports how many results have been accepted so far.
func (f *FakeCoordinatorClient) SubmittedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Submitted)
}
