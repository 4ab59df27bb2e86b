package media

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(7)
	for y := range h {
		for x := range w {
			seed = seed*1664525 + 1013904223
			img.Set(x, y, color.RGBA{R: uint8(seed >> 24), G: uint8(seed >> 16), B: uint8(seed >> 8), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  []string
	}{
		{"Parque solar en San Juan", []string{"solar panels", "photovoltaic", "renewable energy"}},
		{"Nuevo parque eólica patagónica", []string{"wind turbine", "wind energy", "wind farm"}},
		{"Represa hidroeléctrica en Neuquén", []string{"hydroelectric", "dam", "water power"}},
		{"Mercado eléctrico mayorista", []string{"renewable energy", "green energy", "sustainable power"}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Keywords(tt.title), tt.title)
	}
	require.Equal(t, "solar panels photovoltaic", Query([]string{"solar panels", "photovoltaic"}))
}

func TestPexelsResolve(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, "secret-pexels-key", r.Header.Get("Authorization"))
		require.Equal(t, "solar panels", r.URL.Query().Get("query"))
		require.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"photos": []map[string]any{
				{"width": 640, "height": 480, "src": map[string]string{"large": "https://img.example.com/small.jpg"}},
				{"width": 1600, "height": 900, "photographer": "Ana", "src": map[string]string{"original": "https://img.example.com/big.jpg"}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewPexels(ResolverConfig{APIKey: "secret-pexels-key", Endpoint: srv.URL})
	got, err := p.Resolve(context.Background(), []string{"solar panels"})
	require.NoError(t, err)
	require.Equal(t, "https://img.example.com/big.jpg", got.URL)
	require.Equal(t, "pexels", got.Source)
	require.Equal(t, "Ana", got.Photographer)
	require.Equal(t, "Imagen sobre solar panels", got.Alt)

	_, err = p.Resolve(context.Background(), []string{"solar panels"})
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load(), "second lookup is cached")
}

func TestPexelsWithoutKey(t *testing.T) {
	t.Parallel()

	_, err := NewPexels(ResolverConfig{}).Resolve(context.Background(), []string{"x"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestPixabayResolveAndNoResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "pix-key", r.URL.Query().Get("key"))
		require.Equal(t, "horizontal", r.URL.Query().Get("orientation"))
		if r.URL.Query().Get("q") == "vacio" {
			_, _ = w.Write([]byte(`{"hits":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"hits":[{"webformatURL":"https://pixabay.example/w.jpg","imageWidth":1920,"imageHeight":1080,"user":"leo"}]}`))
	}))
	t.Cleanup(srv.Close)

	p := NewPixabay(ResolverConfig{APIKey: "pix-key", Endpoint: srv.URL})
	got, err := p.Resolve(context.Background(), []string{"wind", "farm"})
	require.NoError(t, err)
	require.Equal(t, "https://pixabay.example/w.jpg", got.URL)
	require.Equal(t, 1920, got.Width)

	_, err = p.Resolve(context.Background(), []string{"vacio"})
	require.ErrorIs(t, err, pipeline.ErrNoResult)
}

func TestPixabayRedactsKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	p := NewPixabay(ResolverConfig{APIKey: "super-secret-key-123", Endpoint: endpoint, ReadTimeout: time.Second})
	_, err := p.Resolve(context.Background(), []string{"solar"})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "super-secret-key-123")
	require.Contains(t, err.Error(), redactedKey)
}

type stubResolver struct {
	mock.Mock
}

func (s *stubResolver) Name() string { return "stub" }

func (s *stubResolver) Resolve(ctx context.Context, keywords []string) (pipeline.ImageCandidate, error) {
	args := s.Called(ctx, keywords)
	return args.Get(0).(pipeline.ImageCandidate), args.Error(1)
}

func TestChainFallsThrough(t *testing.T) {
	t.Parallel()

	first := &stubResolver{}
	first.On("Resolve", mock.Anything, []string{"k"}).Return(pipeline.ImageCandidate{}, pipeline.ErrNoResult)
	second := &stubResolver{}
	second.On("Resolve", mock.Anything, []string{"k"}).Return(pipeline.ImageCandidate{URL: "https://x.example/a.jpg"}, nil)

	got, err := Chain{first, second}.Resolve(context.Background(), []string{"k"})
	require.NoError(t, err)
	require.Equal(t, "https://x.example/a.jpg", got.URL)
	first.AssertExpectations(t)
	second.AssertExpectations(t)

	_, err = Chain{first}.Resolve(context.Background(), []string{"k"})
	require.ErrorIs(t, err, pipeline.ErrNoResult)
}

func newImageServer(t *testing.T, body []byte, contentType string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/flaky.png":
			if hits.Load() < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
		case "/missing.png":
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testDownloader(opts ...DownloaderOption) *Downloader {
	base := []DownloaderOption{WithDownloadRetry(pipeline.NewLinearRetryPolicy(3, 0))}
	return NewDownloader(DownloaderConfig{ReadTimeout: 2 * time.Second}, append(base, opts...)...)
}

func TestDownloadValidImage(t *testing.T) {
	t.Parallel()

	body := noisePNG(t, 40, 30)
	srv := newImageServer(t, body, "image/png", nil)

	img, err := testDownloader().Download(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	require.Equal(t, "image/png", img.ContentType)
	require.Equal(t, body, img.Data)
	require.Equal(t, 40, img.Width)
	require.Equal(t, 30, img.Height)
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newImageServer(t, noisePNG(t, 40, 30), "image/png", &hits)

	_, err := testDownloader().Download(context.Background(), srv.URL+"/flaky.png")
	require.NoError(t, err)
	require.Equal(t, int32(3), hits.Load())
}

func TestDownloadRejections(t *testing.T) {
	t.Parallel()

	big := noisePNG(t, 40, 30)
	tests := []struct {
		name        string
		body        []byte
		contentType string
		path        string
		maxBytes    int64
		want        error
	}{
		{name: "not image", body: big, contentType: "text/html; charset=utf-8", path: "/a", want: pipeline.ErrNotImage},
		{name: "too small", body: []byte("tiny"), contentType: "image/png", path: "/a", want: pipeline.ErrTooSmall},
		{name: "too large", body: big, contentType: "image/png", path: "/a", maxBytes: 2048, want: pipeline.ErrTooLarge},
		{name: "not found", body: big, contentType: "image/png", path: "/missing.png", want: pipeline.ErrBadURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var hits atomic.Int32
			srv := newImageServer(t, tt.body, tt.contentType, &hits)
			d := NewDownloader(DownloaderConfig{MaxBytes: tt.maxBytes}, WithDownloadRetry(pipeline.NewLinearRetryPolicy(3, 0)))

			_, err := d.Download(context.Background(), srv.URL+tt.path)
			require.ErrorIs(t, err, tt.want)
			var valErr *pipeline.ValidationError
			require.ErrorAs(t, err, &valErr)
			require.Equal(t, int32(1), hits.Load(), "validation failures are not retried")
		})
	}
}

func TestDownloadBadURL(t *testing.T) {
	t.Parallel()

	_, err := testDownloader().Download(context.Background(), "ftp://example.com/a.png")
	require.ErrorIs(t, err, pipeline.ErrBadURL)
}

func TestOptimizerFitsBoundingBox(t *testing.T) {
	t.Parallel()

	src := noisePNG(t, 1800, 900)
	out, size, err := DefaultOptimizer().Optimize(src)
	require.NoError(t, err)
	require.Equal(t, image.Point{X: 1200, Y: 600}, size)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 1200, cfg.Width)

	_, _, err = DefaultOptimizer().Optimize([]byte("not an image"))
	require.Error(t, err)
}

func TestFitNeverEnlarges(t *testing.T) {
	t.Parallel()

	require.Equal(t, image.Point{X: 300, Y: 200}, fit(image.Point{X: 300, Y: 200}, 1200, 800))
	require.Equal(t, image.Point{X: 800, Y: 800}, fit(image.Point{X: 1600, Y: 1600}, 1200, 800))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	require.Nil(t, redact(nil, "k"))
	err := redact(textErr("GET https://x/?key=abc123: refused"), "abc123")
	require.Equal(t, "GET https://x/?key=[API_KEY_HIDDEN]: refused", err.Error())
	require.True(t, strings.Contains(redact(textErr("plain"), "").Error(), "plain"))
}

type textErr string

func (e textErr) Error() string { return string(e) }
