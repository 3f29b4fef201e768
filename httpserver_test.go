package mediaforge

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePreviewStore struct {
	objects map[string]StoredObject
	bodies  map[string][]byte
	err     error
}

func (f *fakePreviewStore) Get(ctx context.Context, id string) (*StoredObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.bodies[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	obj := f.objects[id]
	obj.Body = io.NopCloser(bytes.NewReader(body))
	return &obj, nil
}

func TestPreviewServer_health(t *testing.T) {
	store := &fakePreviewStore{}
	srv := NewPreviewServer(store, NewMetrics(), mustTestLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestPreviewServer_notFound(t *testing.T) {
	store := &fakePreviewStore{bodies: map[string][]byte{}}
	srv := NewPreviewServer(store, NewMetrics(), mustTestLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/preview/missing", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewServer_streamsUnsizedRequest(t *testing.T) {
	png := solidPNG(t, 50, 50)
	store := &fakePreviewStore{
		bodies:  map[string][]byte{"abc": png},
		objects: map[string]StoredObject{"abc": {ContentType: "image/png"}},
	}
	srv := NewPreviewServer(store, NewMetrics(), mustTestLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/preview/abc", nil)
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestPreviewServer_resizesWhenSizeGiven(t *testing.T) {
	png := solidPNG(t, 800, 400)
	store := &fakePreviewStore{
		bodies:  map[string][]byte{"abc": png},
		objects: map[string]StoredObject{"abc": {ContentType: "image/png"}},
	}
	srv := NewPreviewServer(store, NewMetrics(), mustTestLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/preview/abc?size=200", nil)
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, png, rec.Body.Bytes(), "resized bytes must differ from the stored original")
}

func TestPreviewServer_outOfRangeSizeTreatedAsAbsent(t *testing.T) {
	png := solidPNG(t, 50, 50)
	store := &fakePreviewStore{
		bodies:  map[string][]byte{"abc": png},
		objects: map[string]StoredObject{"abc": {ContentType: "image/png"}},
	}
	srv := NewPreviewServer(store, NewMetrics(), mustTestLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/preview/abc?size=99999", nil)
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, rec.Body.Bytes(), "out-of-range size must be treated as absent and stream unchanged")
}

func TestPreviewServer_transientStorageErrorIs503(t *testing.T) {
	store := &fakePreviewStore{err: assert.AnError}
	srv := NewPreviewServer(store, NewMetrics(), mustTestLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/preview/abc", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPreviewServer_metricsEndpoint(t *testing.T) {
	store := &fakePreviewStore{}
	srv := NewPreviewServer(store, NewMetrics(), mustTestLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParsePreviewSize(t *testing.T) {
	cases := []struct {
		raw      string
		wantSize uint32
		wantOK   bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"200", 200, true},
		{"8192", 0, false},
		{"8191", 8191, true},
	}
	for _, tc := range cases {
		size, ok := parsePreviewSize(tc.raw)
		assert.Equal(t, tc.wantOK, ok, "raw=%q", tc.raw)
		if ok {
			assert.Equal(t, tc.wantSize, size, "raw=%q", tc.raw)
		}
	}
}
