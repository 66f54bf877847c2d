// Package preview renders image thumbnails as terminal half-block art.
package preview

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/debuglog"
)

const (
	halfBlock    = "▀"
	maxImageSize = 8 << 20
)

// Renderer downloads thumbnails and renders them width cells wide and at
// most height rows tall. Rendered art is cached by URL and size.
type Renderer struct {
	client    *http.Client
	userAgent string
	width     int
	height    int
	cache     *lru.Cache[string, string]
}

func NewRenderer(cfg *config.Config) (*Renderer, error) {
	size := cfg.UI.Preview.CacheSize
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating preview cache: %w", err)
	}
	return &Renderer{
		client:    &http.Client{Timeout: cfg.API.HTTPTimeout},
		userAgent: cfg.API.UserAgent,
		width:     cfg.UI.Preview.Width,
		height:    cfg.UI.Preview.Height,
		cache:     cache,
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func (r *Renderer) WithHTTPClient(hc *http.Client) *Renderer {
	r.client = hc
	return r
}

// Render returns the half-block art for the image at url.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	return r.RenderSize(ctx, url, r.width, r.height)
}

// RenderSize is Render with an explicit size, used when the terminal is
// smaller than the configured preview.
func (r *Renderer) RenderSize(ctx context.Context, url string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid preview size %dx%d", width, height)
	}
	key := fmt.Sprintf("%s@%dx%d", url, width, height)
	if art, ok := r.cache.Get(key); ok {
		return art, nil
	}

	img, err := r.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	art := HalfBlocks(img, width, height)
	r.cache.Add(key, art)
	return art, nil
}

func (r *Renderer) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("downloading %s: HTTP %d", url, resp.StatusCode)
	}

	img, format, err := image.Decode(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	debuglog.Debugf("preview: decoded %s %s %v", format, url, img.Bounds().Size())
	return img, nil
}

// Result is the outcome of one preview in RenderAll.
type Result struct {
	URL string
	Art string
	Err error
}

// RenderAll renders urls with at most limit downloads at a time. Results are
// in input order; a failed image is reported in its Result and does not stop
// the others. Only context cancellation fails the call.
func (r *Renderer) RenderAll(ctx context.Context, urls []string, limit int) ([]Result, error) {
	results := make([]Result, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, url := range urls {
		g.Go(func() error {
			art, err := r.Render(ctx, url)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			results[i] = Result{URL: url, Art: art, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// HalfBlocks scales img to fit width x height cells, preserving aspect ratio,
// and draws each cell as an upper half block coloured with the top pixel over
// a background of the bottom pixel.
func HalfBlocks(img image.Image, width, height int) string {
	b := img.Bounds()
	if b.Empty() || width <= 0 || height <= 0 {
		return ""
	}

	// Each cell covers two pixel rows.
	cols, rows := fit(b.Dx(), b.Dy(), width, height*2)
	if rows%2 == 1 {
		rows++
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := sample(img, x, y, cols, rows)
			bottom := sample(img, x, y+1, cols, rows)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(halfBlock))
		}
	}
	return sb.String()
}

// fit scales w x h into maxW x maxH keeping the ratio; neither side is zero.
func fit(w, h, maxW, maxH int) (int, int) {
	cols, rows := maxW, h*maxW/w
	if rows > maxH {
		cols, rows = w*maxH/h, maxH
	}
	return max(cols, 1), max(rows, 1)
}

func sample(img image.Image, x, y, cols, rows int) string {
	b := img.Bounds()
	px := b.Min.X + x*b.Dx()/cols
	py := b.Min.Y + y*b.Dy()/rows
	if py >= b.Max.Y {
		py = b.Max.Y - 1
	}
	cr, cg, cb, _ := img.At(px, py).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", cr>>8, cg>>8, cb>>8)
}
