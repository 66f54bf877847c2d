package pixabay

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

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL
	return NewClient(cfg)
}

func hitsJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":%d,"webformatURL":"https://cdn/t%d.jpg","largeImageURL":"https://cdn/l%d.jpg","tags":"cat, pet","user":"u","pageURL":"https://pixabay.com/p/%d"}`, i+1, i+1, i+1, i+1)
	}
	return fmt.Sprintf(`{"total":100,"totalHits":100,"hits":[%s]}`, strings.Join(parts, ","))
}

func TestClient_SearchSendsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "cats", q.Get("q"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "12", q.Get("per_page"))
		assert.Equal(t, "photo", q.Get("image_type"))
		assert.Equal(t, "horizontal", q.Get("orientation"))
		assert.Equal(t, "true", q.Get("safesearch"))
		assert.Equal(t, "gallr-test/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, hitsJSON(12))
	})

	images, err := client.Search(context.Background(), "cats", 2)
	require.NoError(t, err)
	require.Len(t, images, 12)

	first := images[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "https://cdn/t1.jpg", first.WebformatURL)
	assert.Equal(t, "https://cdn/l1.jpg", first.LargeImageURL)
	assert.Equal(t, "cat, pet", first.Tags)
	assert.Equal(t, "https://pixabay.com/p/1", first.PageURL)
}

func TestClient_SearchEmptyQueryIsSent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "q=&")
		fmt.Fprint(w, hitsJSON(3))
	})

	images, err := client.Search(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Len(t, images, 3)
}

func TestClient_SearchErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name: "page out of range",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `[ERROR 400] "page" is out of valid range.`)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"page" is out of valid range.`,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"hits": [`)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			images, err := client.Search(context.Background(), "cats", 1)
			require.Error(t, err)
			assert.Nil(t, images)

			var fetchErr *gallery.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, Name, fetchErr.Provider)
			assert.Equal(t, tt.wantStatus, fetchErr.Status)
			if tt.wantBody != "" {
				assert.Contains(t, fetchErr.Body, tt.wantBody)
			}
		})
	}
}

func TestClient_SearchTransportError(t *testing.T) {
	cfg := config.TestConfig()
	cfg.API.BaseURL = "http://127.0.0.1:1"
	client := NewClient(cfg)

	_, err := client.Search(context.Background(), "cats", 1)
	require.Error(t, err)

	var fetchErr *gallery.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.Status)
}

func TestClient_SearchHonoursContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, hitsJSON(1))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "cats", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
