package mediaforge

import "time"

// PipelineOption configures a Pipeline at construction time. This follows
// the teacher's ConfFunc idiom (originally used to configure an
// http.Handler), generalized to configure a Pipeline instead.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	flushSize      int
	pollRetryDelay time.Duration
}

// WithFlushSize overrides the reporter's flush size F (default
// DefaultFlushSize).
func WithFlushSize(n int) PipelineOption {
	return func(c *pipelineConfig) { c.flushSize = n }
}

// WithPollRetryDelay overrides the poller's fixed backoff after a failed
// fetch (default 500ms, §4.5).
func WithPollRetryDelay(d time.Duration) PipelineOption {
	return func(c *pipelineConfig) { c.pollRetryDelay = d }
}

const defaultPollRetryDelay = 500 * time.Millisecond

func newPipelineConfig(opts []PipelineOption) pipelineConfig {
	c := pipelineConfig{
		flushSize:      DefaultFlushSize,
		pollRetryDelay: defaultPollRetryDelay,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
