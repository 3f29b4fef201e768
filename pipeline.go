package mediaforge

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Pipeline wires the poller, worker pool and reporter together (C9, §4.7).
type Pipeline struct {
	Coordinator CoordinatorClient
	Downloader  *Downloader
	Store       assetStore
	Metrics     *Metrics

	Workers     uint32
	BatchSize   uint32
	PreviewEdge uint32

	log *zap.Logger
	cfg pipelineConfig
}

// NewPipeline builds a Pipeline. workers and batchSize together determine
// the bounded queue capacity Q = workers * batchSize (§4.7 step 1).
func NewPipeline(
	coordinator CoordinatorClient,
	downloader *Downloader,
	store assetStore,
	metrics *Metrics,
	workers, batchSize, previewEdge uint32,
	log *zap.Logger,
	opts ...PipelineOption,
) *Pipeline {
	return &Pipeline{
		Coordinator: coordinator,
		Downloader:  downloader,
		Store:       store,
		Metrics:     metrics,
		Workers:     workers,
		BatchSize:   batchSize,
		PreviewEdge: previewEdge,
		log:         log.Named("pipeline"),
		cfg:         newPipelineConfig(opts),
	}
}

// Run spawns the poller, the worker pool and the reporter under an
// errgroup tied to ctx, and blocks until one of them returns a fatal error
// or ctx is canceled. Steady-state operation never requires this to
// return: the coordinator re-issues any URL whose result was not reported.
func (p *Pipeline) Run(ctx context.Context) error {
	queueCap := int(p.Workers) * int(p.BatchSize)
	if queueCap <= 0 {
		queueCap = 1
	}
	tasks := make(chan Task, queueCap)
	results := make(chan UrlResult, queueCap)

	group, ctx := errgroup.WithContext(ctx)
	var sf singleflight.Group

	for i := uint32(0); i < p.Workers; i++ {
		w := NewWorker(p.Downloader, p.Store, p.PreviewEdge, p.Metrics, p.log, &sf)
		group.Go(func() error { return w.Run(ctx, tasks, results) })
	}

	poller := NewPoller(p.Coordinator, p.BatchSize, p.cfg.pollRetryDelay, p.log)
	group.Go(func() error { return poller.Run(ctx, tasks) })

	reporter := NewReporter(p.Coordinator, p.cfg.flushSize, p.Metrics, p.log)
	group.Go(func() error { return reporter.Run(ctx, results) })

	return group.Wait()
}
