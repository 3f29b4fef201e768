package mediaforge

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Downloader fetches asset bytes over HTTP, enforcing a size cap and
// classifying every failure into a DlError (§4.1).
type Downloader struct {
	Client   *http.Client
	MaxBytes int64
	Metrics  *Metrics
	log      *zap.Logger
}

// NewDownloader builds a Downloader backed by client, capping bodies at
// maxBytes and recording outcomes on metrics.
func NewDownloader(client *http.Client, maxBytes int64, metrics *Metrics, log *zap.Logger) *Downloader {
	return &Downloader{Client: client, MaxBytes: maxBytes, Metrics: metrics, log: log.Named("downloader")}
}

// Download fetches url and returns its body and parsed Mime, or a
// classified error per §4.1.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, Mime, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		d.record(DlErrDownloadFailed)
		return nil, Mime{}, errDownloadFailed()
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		d.record(DlErrNotFound)
		return nil, Mime{}, errNotFound()
	}
	defer resp.Body.Close()

	if resp.ContentLength > 0 && resp.ContentLength > d.MaxBytes {
		d.record(DlErrTooLarge)
		return nil, Mime{}, errTooLarge()
	}

	if kind, ok := classifyStatus(resp.StatusCode); ok {
		d.record(kind)
		return nil, Mime{}, classifiedError{kind: kind}
	}

	mime := ParseMime(resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.MaxBytes+1))
	if err != nil {
		d.record(DlErrDownloadFailed)
		return nil, Mime{}, errDownloadFailed()
	}
	if int64(len(body)) > d.MaxBytes {
		d.record(DlErrTooLarge)
		return nil, Mime{}, errTooLarge()
	}

	d.record(-1)
	return body, mime, nil
}

// classifyStatus maps an HTTP status code to a DlError per §4.1's table.
// The second return value is false for 2xx responses, which are not an
// error at this layer.
func classifyStatus(status int) (DlError, bool) {
	switch {
	case status >= 200 && status < 300:
		return 0, false
	case status == http.StatusTooManyRequests:
		return DlErrTooManyRequests, true
	case status >= 400 && status < 500:
		return DlErrNotFound, true
	case status >= 500:
		return DlErrServerError, true
	default:
		return DlErrDownloadFailed, true
	}
}

// record increments the downloads_total counter. kind < 0 means success.
func (d *Downloader) record(kind DlError) {
	if d.Metrics == nil {
		return
	}
	if kind < 0 {
		d.Metrics.Downloads.WithLabelValues("success").Inc()
		return
	}
	d.Metrics.Downloads.WithLabelValues(kind.String()).Inc()
}
