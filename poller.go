package mediaforge

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller repeatedly fetches batches of URLs from the coordinator and
// enqueues a DownloadTask per URL (§4.5). It never originates a StopTask;
// shutdown is external.
type Poller struct {
	Client      CoordinatorClient
	BatchSize   uint32
	RetryDelay  time.Duration
	log         *zap.Logger
}

// NewPoller builds a Poller. retryDelay is the fixed backoff applied after
// a failed fetch (§9's resolution of the backoff open question).
func NewPoller(client CoordinatorClient, batchSize uint32, retryDelay time.Duration, log *zap.Logger) *Poller {
	return &Poller{Client: client, BatchSize: batchSize, RetryDelay: retryDelay, log: log.Named("poller")}
}

// Run polls until ctx is canceled, block-sending each fetched URL onto
// tasks (the bounded queue that provides backpressure).
func (p *Poller) Run(ctx context.Context, tasks chan<- Task) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		urls, err := p.Client.FetchAssetURLs(ctx, p.BatchSize)
		if err != nil {
			p.log.Warn("fetch failed, backing off", zap.Error(err), zap.Duration("delay", p.RetryDelay))
			select {
			case <-time.After(p.RetryDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		for _, url := range urls {
			select {
			case tasks <- DownloadTask{URL: url}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
