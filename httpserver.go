package mediaforge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PreviewMaxEdge bounds the accepted `size` query parameter on
// /preview/{id} (§4.8): values outside (0, PreviewMaxEdge) are treated as
// absent.
const PreviewMaxEdge = 8192

// previewStore is the narrow read capability the preview server needs;
// *ObjectStore satisfies it, and tests inject an in-memory fake instead of
// standing up a real S3-compatible endpoint.
type previewStore interface {
	Get(ctx context.Context, id string) (*StoredObject, error)
}

// PreviewServer serves stored previews, with optional on-the-fly resize
// (C10).
type PreviewServer struct {
	Store   previewStore
	Metrics *Metrics
	log     *zap.Logger
}

// NewPreviewServer builds the chi-routed http.Handler for C10.
func NewPreviewServer(store previewStore, metrics *Metrics, log *zap.Logger) http.Handler {
	s := &PreviewServer{Store: store, Metrics: metrics, log: log.Named("preview-server")}

	r := chi.NewRouter()
	r.Get("/", s.handleHealth)
	r.Get("/preview/{id}", s.handlePreview)
	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Healthy"))
}

func (s *PreviewServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if s.Metrics != nil {
			s.Metrics.PreviewRequestsNumber.Inc()
			s.Metrics.PreviewRequestsTotalTime.Observe(time.Since(start).Seconds())
		}
	}()

	id := chi.URLParam(r, "id")
	size, hasSize := parsePreviewSize(r.URL.Query().Get("size"))

	readStart := time.Now()
	obj, err := s.Store.Get(r.Context(), id)
	if s.Metrics != nil {
		s.Metrics.StorageReadsNumber.Inc()
		s.Metrics.StorageReadsTotalTime.Observe(time.Since(readStart).Seconds())
	}
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.log.Warn("object store get failed", zap.String("id", id), zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	defer obj.Body.Close()

	if !hasSize {
		w.Header().Set("Content-Type", obj.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, obj.Body)
		return
	}

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch outcome := Resize(body, size).(type) {
	case ResizedOutcome:
		w.Header().Set("Content-Type", obj.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(outcome.Bytes)
	case UnchangedOutcome:
		w.Header().Set("Content-Type", obj.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	case FailedResizeOutcome:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// parsePreviewSize parses and range-checks the `size` query parameter
// (§4.8): only 0 < size < PreviewMaxEdge is accepted; anything else
// (missing, non-numeric, out of range) is treated as absent.
func parsePreviewSize(raw string) (uint32, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	if n == 0 || n >= PreviewMaxEdge {
		return 0, false
	}
	return uint32(n), true
}
