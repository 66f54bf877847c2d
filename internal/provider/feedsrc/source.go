// Package feedsrc turns an RSS or Atom photo feed into an image search
// provider. Feeds carry no paging, so only page 1 ever has results.
package feedsrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/gallery"
)

const (
	Name = "feed"

	queryPlaceholder = "{query}"
	maxErrorBody     = 256
)

var imgRegex = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)

type Source struct {
	client    *http.Client
	parser    *gofeed.Parser
	template  string
	userAgent string
}

func NewSource(cfg *config.Config) *Source {
	return &Source{
		client: &http.Client{
			Timeout: cfg.API.HTTPTimeout,
		},
		parser:    gofeed.NewParser(),
		template:  cfg.API.FeedURL,
		userAgent: cfg.API.UserAgent,
	}
}

func (s *Source) feedURL(query string) string {
	return strings.ReplaceAll(s.template, queryPlaceholder, url.QueryEscape(query))
}

func (s *Source) Search(ctx context.Context, query string, page int) ([]gallery.RawImage, error) {
	if page > 1 {
		return []gallery.RawImage{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL(query), nil)
	if err != nil {
		return nil, &gallery.FetchError{Provider: Name, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &gallery.FetchError{Provider: Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &gallery.FetchError{Provider: Name, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	images, err := s.Parse(resp.Body)
	if err != nil {
		return nil, &gallery.FetchError{Provider: Name, Status: resp.StatusCode, Err: err}
	}
	debuglog.Debugf("feed: %d images for %q", len(images), query)
	return images, nil
}

// Parse converts feed items that reference at least one image. At most
// gallery.PageSize images are returned.
func (s *Source) Parse(r io.Reader) ([]gallery.RawImage, error) {
	feed, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	images := make([]gallery.RawImage, 0, gallery.PageSize)
	for _, item := range feed.Items {
		if len(images) == gallery.PageSize {
			break
		}
		urls := extractImageURLs(item)
		if len(urls) == 0 {
			continue
		}

		thumb, full := urls[0], urls[0]
		for _, enc := range item.Enclosures {
			if enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
				full = enc.URL
				break
			}
		}

		id := item.GUID
		if id == "" {
			id = item.Link
		}
		if id == "" {
			id = full
		}

		images = append(images, gallery.RawImage{
			ID:            id,
			WebformatURL:  thumb,
			LargeImageURL: full,
			Tags:          strings.Join(item.Categories, ", "),
			PageURL:       item.Link,
			User:          authorName(item),
			Caption:       caption(item),
		})
	}
	return images, nil
}

func authorName(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	return ""
}

func caption(item *gofeed.Item) string {
	html := item.Description
	if html == "" {
		html = item.Content
	}
	if html == "" {
		return item.Title
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return item.Title
	}
	return strings.TrimSpace(md)
}

func extractImageURLs(item *gofeed.Item) []string {
	var urls []string

	// Inline images come first: feeds usually embed the small rendition.
	for _, match := range imgRegex.FindAllStringSubmatch(item.Content+" "+item.Description, -1) {
		if len(match) > 1 {
			urls = append(urls, match[1])
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		urls = append(urls, item.Image.URL)
	}

	for _, enc := range item.Enclosures {
		if enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			urls = append(urls, enc.URL)
		}
	}

	return uniqueStrings(urls)
}

func uniqueStrings(strs []string) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, s := range strs {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
