package feedsrc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/gallr/internal/config"
	"github.com/pders01/gallr/internal/gallery"
)

const photoRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Photos tagged cats</title>
    <link>https://example.com</link>
    <item>
      <title>Sleepy cat</title>
      <link>https://example.com/photos/1</link>
      <guid>photo-1</guid>
      <category>cat</category>
      <category>sleep</category>
      <description><![CDATA[<p>A <b>sleepy</b> cat</p><img src="https://cdn.example.com/1_m.jpg">]]></description>
      <enclosure url="https://cdn.example.com/1_b.jpg" type="image/jpeg" length="1000"/>
    </item>
    <item>
      <title>Text only</title>
      <link>https://example.com/posts/2</link>
      <guid>post-2</guid>
      <description>No pictures here</description>
    </item>
    <item>
      <title>Inline only</title>
      <link>https://example.com/photos/3</link>
      <description><![CDATA[<img src='https://cdn.example.com/3.png'>]]></description>
    </item>
  </channel>
</rss>`

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig()
	cfg.API.FeedURL = server.URL + "/feed?tags={query}"
	return NewSource(cfg)
}

func TestSource_SearchParsesImages(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "black cats", r.URL.Query().Get("tags"))
		assert.Equal(t, "gallr-test/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, photoRSS)
	})

	images, err := source.Search(context.Background(), "black cats", 1)
	require.NoError(t, err)
	require.Len(t, images, 2)

	first := images[0]
	assert.Equal(t, "photo-1", first.ID)
	assert.Equal(t, "https://cdn.example.com/1_m.jpg", first.WebformatURL)
	assert.Equal(t, "https://cdn.example.com/1_b.jpg", first.LargeImageURL)
	assert.Equal(t, "cat, sleep", first.Tags)
	assert.Equal(t, "https://example.com/photos/1", first.PageURL)
	assert.Contains(t, first.Caption, "**sleepy**")

	second := images[1]
	assert.Equal(t, "https://example.com/photos/3", second.ID, "link is used when guid is missing")
	assert.Equal(t, "https://cdn.example.com/3.png", second.WebformatURL)
	assert.Equal(t, second.WebformatURL, second.LargeImageURL)
}

func TestSource_LaterPagesAreEmpty(t *testing.T) {
	called := false
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	images, err := source.Search(context.Background(), "cats", 2)
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.False(t, called, "no request for pages past the first")
}

func TestSource_CapsAtPageSize(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<rss version="2.0"><channel><title>t</title>`)
	for i := 0; i < gallery.PageSize+5; i++ {
		fmt.Fprintf(&b, `<item><guid>%d</guid><description><![CDATA[<img src="https://cdn/%d.jpg">]]></description></item>`, i, i)
	}
	b.WriteString(`</channel></rss>`)

	source := NewSource(config.TestConfig())
	images, err := source.Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, images, gallery.PageSize)
}

func TestSource_Errors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "no such feed")
		})
		_, err := source.Search(context.Background(), "cats", 1)

		var fetchErr *gallery.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusNotFound, fetchErr.Status)
		assert.Equal(t, "no such feed", fetchErr.Body)
	})

	t.Run("not a feed", func(t *testing.T) {
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>nope</body></html>")
		})
		_, err := source.Search(context.Background(), "cats", 1)

		var fetchErr *gallery.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Error(t, fetchErr.Err)
	})
}
