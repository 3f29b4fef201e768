package mediaforge

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultFlushSize is F from §4.6: the reporter flushes as soon as its
// buffer reaches this many results.
const DefaultFlushSize = 100

// Reporter batches UrlResults and delivers them to the coordinator (§4.6).
// A transport failure during a flush is logged and the buffer is cleared
// regardless — the coordinator is expected to re-issue unacknowledged URLs
// (§9's resolution of the at-least-once open question).
type Reporter struct {
	Client    CoordinatorClient
	FlushSize int
	Metrics   *Metrics
	log       *zap.Logger
}

// NewReporter builds a Reporter with the given flush size.
func NewReporter(client CoordinatorClient, flushSize int, metrics *Metrics, log *zap.Logger) *Reporter {
	if flushSize <= 0 {
		flushSize = DefaultFlushSize
	}
	return &Reporter{Client: client, FlushSize: flushSize, Metrics: metrics, log: log.Named("reporter")}
}

// Run buffers results from the channel and flushes at FlushSize or when
// the channel closes/ctx is canceled, whichever comes first.
func (r *Reporter) Run(ctx context.Context, results <-chan UrlResult) error {
	buf := make([]UrlResult, 0, r.FlushSize)
	lastFlush := time.Now()

	flush := func() {
		if len(buf) == 0 {
			return
		}
		if r.Metrics != nil {
			r.Metrics.FlowRateSeconds.Set(time.Since(lastFlush).Seconds() / float64(len(buf)))
		}
		if err := r.Client.SubmitResults(ctx, buf); err != nil {
			r.log.Warn("submit results failed, dropping batch", zap.Int("count", len(buf)), zap.Error(err))
		}
		buf = buf[:0]
		lastFlush = time.Now()
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil
		case result, ok := <-results:
			if !ok {
				flush()
				return nil
			}
			buf = append(buf, result)
			if len(buf) >= r.FlushSize {
				flush()
			}
		}
	}
}
