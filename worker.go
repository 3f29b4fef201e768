package mediaforge

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// assetStore is the narrow write capability a Worker needs from C5;
// *ObjectStore satisfies it, and tests inject an in-memory fake instead of
// standing up a real S3-compatible endpoint.
type assetStore interface {
	Put(ctx context.Context, id string, body []byte, contentType string) error
}

// Worker consumes Tasks, runs the C3 -> C4 -> C5 chain, and emits a
// UrlResult per Download task (§4.4). It holds no state beyond handles to
// its collaborators, so any number of Workers can share one Task/Result
// channel pair safely.
type Worker struct {
	Downloader  *Downloader
	Store       assetStore
	PreviewEdge uint32
	Metrics     *Metrics
	log         *zap.Logger
	group       *singleflight.Group
}

// NewWorker builds a Worker. group is shared across all workers in a
// Pipeline so that concurrent downloads of the same URL within a poll
// batch are collapsed (§9's dedup note).
func NewWorker(d *Downloader, store assetStore, previewEdge uint32, metrics *Metrics, log *zap.Logger, group *singleflight.Group) *Worker {
	return &Worker{
		Downloader:  d,
		Store:       store,
		PreviewEdge: previewEdge,
		Metrics:     metrics,
		log:         log.Named("worker"),
		group:       group,
	}
}

// Run drains tasks until the channel closes or ctx is done, sending one
// UrlResult per DownloadTask to results. It returns nil in both cases (and
// on a StopTask); the supervisor tears the worker pool down by canceling
// ctx, not through worker-originated errors.
func (w *Worker) Run(ctx context.Context, tasks <-chan Task, results chan<- UrlResult) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-tasks:
			if !ok {
				return nil
			}
			switch t := task.(type) {
			case StopTask:
				return nil
			case DownloadTask:
				result := w.process(ctx, t.URL)
				select {
				case results <- result:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// process implements the per-URL chain described in §4.4.
func (w *Worker) process(ctx context.Context, url string) UrlResult {
	start := time.Now()
	defer func() {
		if w.Metrics != nil {
			w.Metrics.AssetProcessingSeconds.Observe(time.Since(start).Seconds())
		}
	}()

	v, err, _ := w.group.Do(url, func() (interface{}, error) {
		return w.ingest(ctx, url)
	})
	if err != nil {
		return UrlResult{URL: url, Outcome: FailureOutcome{Err: err}}
	}
	return UrlResult{URL: url, Outcome: v.(DownloadOutcome)}
}

func (w *Worker) ingest(ctx context.Context, url string) (DownloadOutcome, error) {
	body, mime, err := w.Downloader.Download(ctx, url)
	if err != nil {
		return nil, err
	}

	if mime.Class != MimeImage {
		return nil, errUnsupportedFormat(mime.Text)
	}

	id := AssetID(url)

	switch outcome := Resize(body, w.PreviewEdge).(type) {
	case ResizedOutcome:
		if err := w.Store.Put(ctx, id, outcome.Bytes, mime.Text); err != nil {
			w.log.Warn("object store put failed", zap.String("url", url), zap.Error(err))
			return nil, errCorruptedAsset(err.Error())
		}
	case UnchangedOutcome:
		if err := w.Store.Put(ctx, id, body, mime.Text); err != nil {
			w.log.Warn("object store put failed", zap.String("url", url), zap.Error(err))
			return nil, errCorruptedAsset(err.Error())
		}
	case FailedResizeOutcome:
		return nil, outcome.Err
	}

	return SuccessOutcome{Mime: mime.Text, Size: w.PreviewEdge}, nil
}
