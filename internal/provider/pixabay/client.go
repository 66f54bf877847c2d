package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/gallery"
)

const (
	Name = "pixabay"

	apiPath      = "/api/"
	maxErrorBody = 256
)

type hit struct {
	ID            int64  `json:"id"`
	PageURL       string `json:"pageURL"`
	Tags          string `json:"tags"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	User          string `json:"user"`
}

type response struct {
	Total     int   `json:"total"`
	TotalHits int   `json:"totalHits"`
	Hits      []hit `json:"hits"`
}

// Client queries the Pixabay image search API.
type Client struct {
	client      *http.Client
	baseURL     string
	key         string
	imageType   string
	orientation string
	safeSearch  bool
	userAgent   string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.API.HTTPTimeout,
		},
		baseURL:     strings.TrimRight(cfg.API.BaseURL, "/"),
		key:         cfg.API.Key,
		imageType:   cfg.API.ImageType,
		orientation: cfg.API.Orientation,
		safeSearch:  cfg.API.SafeSearch,
		userAgent:   cfg.API.UserAgent,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

func (c *Client) requestURL(query string, page int) string {
	params := url.Values{}
	params.Set("key", c.key)
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(gallery.PageSize))
	if c.imageType != "" {
		params.Set("image_type", c.imageType)
	}
	if c.orientation != "" {
		params.Set("orientation", c.orientation)
	}
	params.Set("safesearch", strconv.FormatBool(c.safeSearch))
	return c.baseURL + apiPath + "?" + params.Encode()
}

// Search fetches one page of hits. Every failure is reported as a
// *gallery.FetchError.
func (c *Client) Search(ctx context.Context, query string, page int) ([]gallery.RawImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(query, page), nil)
	if err != nil {
		return nil, &gallery.FetchError{Provider: Name, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	debuglog.Debugf("pixabay: GET q=%q page=%d", query, page)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &gallery.FetchError{Provider: Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &gallery.FetchError{
			Provider: Name,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &gallery.FetchError{Provider: Name, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	images := make([]gallery.RawImage, 0, len(decoded.Hits))
	for _, h := range decoded.Hits {
		images = append(images, gallery.RawImage{
			ID:            strconv.FormatInt(h.ID, 10),
			WebformatURL:  h.WebformatURL,
			LargeImageURL: h.LargeImageURL,
			Tags:          h.Tags,
			PageURL:       h.PageURL,
			User:          h.User,
		})
	}
	return images, nil
}
