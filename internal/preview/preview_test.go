package preview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/gallr/internal/config"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestRenderer(t *testing.T, width, height int) *Renderer {
	t.Helper()
	cfg := config.TestConfig()
	cfg.UI.Preview.Width = width
	cfg.UI.Preview.Height = height
	cfg.UI.Preview.CacheSize = 8
	r, err := NewRenderer(cfg)
	require.NoError(t, err)
	return r
}

func lines(art string) []string {
	return strings.Split(art, "\n")
}

func TestHalfBlocksFitsWidth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))

	art := HalfBlocks(img, 10, 10)
	rows := lines(art)
	// 20x10 scaled to 10 wide is 5 pixel rows, padded to 6, so 3 cells.
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, 10, utf8.RuneCountInString(row))
	}
}

func TestHalfBlocksFitsHeight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 40))

	art := HalfBlocks(img, 20, 5)
	rows := lines(art)
	require.Len(t, rows, 5)
	assert.Equal(t, 2, utf8.RuneCountInString(rows[0]))
}

func TestHalfBlocksEmpty(t *testing.T) {
	assert.Equal(t, "", HalfBlocks(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 10))
	assert.Equal(t, "", HalfBlocks(image.NewRGBA(image.Rect(0, 0, 4, 4)), 0, 10))
}

func TestFit(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{"landscape", 200, 100, 40, 40, 40, 20},
		{"portrait", 100, 400, 40, 40, 10, 40},
		{"tiny", 1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fit(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestRendererRenderCaches(t *testing.T) {
	var hits atomic.Int32
	body := testPNG(t, 16, 16)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "gallr-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	r := newTestRenderer(t, 8, 8)

	art, err := r.Render(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)
	assert.Len(t, lines(art), 4)

	again, err := r.Render(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, art, again)
	assert.Equal(t, int32(1), hits.Load())

	_, err = r.RenderSize(context.Background(), server.URL+"/a.png", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "a different size is a different entry")
}

func TestRendererErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.png":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte("not an image"))
		}
	}))
	t.Cleanup(server.Close)

	r := newTestRenderer(t, 8, 8)

	_, err := r.Render(context.Background(), server.URL+"/missing.png")
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = r.Render(context.Background(), server.URL+"/garbage.png")
	assert.ErrorContains(t, err, "decoding")

	_, err = r.RenderSize(context.Background(), server.URL+"/a.png", 0, 4)
	assert.Error(t, err)
}

func TestRendererRenderAllKeepsOrder(t *testing.T) {
	body := testPNG(t, 8, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.png" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	r := newTestRenderer(t, 4, 4)
	urls := []string{server.URL + "/1.png", server.URL + "/bad.png", server.URL + "/3.png"}

	results, err := r.RenderAll(context.Background(), urls, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, urls[i], res.URL)
	}
	assert.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].Art)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestRendererRenderAllCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	r := newTestRenderer(t, 4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderAll(ctx, []string{server.URL + "/1.png"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
