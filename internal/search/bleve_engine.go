package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/gallr/internal/debuglog"
	"github.com/pders01/gallr/internal/storage"
)

type bleveEngine struct {
	source FavoriteSource
	idx    bleve.Index
}

// New returns the favorites searcher. It prefers a bleve index at
// indexPath (in memory when indexPath is empty) and falls back to the
// in-memory scorer when the index cannot be opened.
func New(source FavoriteSource, indexPath string) Searcher {
	eng, err := NewBleveEngine(source, indexPath)
	if err != nil {
		debuglog.Warnf("search: bleve index unavailable, using scorer: %v", err)
		return NewEngine(source)
	}
	return eng
}

// NewBleveEngine creates or opens a bleve index at indexPath and indexes the
// current favorites. An empty indexPath keeps the index in memory.
func NewBleveEngine(source FavoriteSource, indexPath string) (Searcher, error) {
	idx, err := openIndex(indexPath)
	if err != nil {
		return nil, err
	}

	be := &bleveEngine{source: source, idx: idx}
	if err := be.reindexAll(); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

func openIndex(indexPath string) (bleve.Index, error) {
	if indexPath == "" {
		return bleve.NewMemOnly(buildIndexMapping())
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err == nil {
		return idx, nil
	}
	if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	return bleve.New(indexPath, buildIndexMapping())
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = standard.Name
	tags.Store = true
	tags.IncludeTermVectors = true

	query := bleve.NewTextFieldMapping()
	query.Analyzer = standard.Name
	query.Store = true

	caption := bleve.NewTextFieldMapping()
	caption.Analyzer = standard.Name
	caption.Store = false

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = true

	dm.AddFieldMappingsAt("tags", tags)
	dm.AddFieldMappingsAt("query", query)
	dm.AddFieldMappingsAt("caption", caption)
	dm.AddFieldMappingsAt("url", url)

	im.DefaultMapping = dm
	return im
}

func favoriteDoc(fav *storage.Favorite) map[string]any {
	return map[string]any{
		"tags":    fav.Image.Tags,
		"query":   fav.Query,
		"caption": fav.Caption,
		"url":     fav.Image.FullSizeURL,
	}
}

func (b *bleveEngine) reindexAll() error {
	favs, err := b.source.Favorites()
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, fav := range favs {
		if err := batch.Index(fav.Key(), favoriteDoc(fav)); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range []struct {
			field string
			boost float64
		}{
			{"tags", 4.0},
			{"query", 2.0},
			{"caption", 1.0},
			{"url", 0.5},
		} {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(f.field)
			mq.SetBoost(f.boost)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f.field)
			pq.SetBoost(f.boost * 0.8)
			qs = append(qs, pq)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"tags", "query"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		fav, err := b.source.GetFavorite(h.ID)
		if err != nil {
			// Index and store disagree; the store wins.
			debuglog.Debugf("search: dropping hit %s: %v", h.ID, err)
			continue
		}
		r := &Result{Favorite: fav, Score: h.Score}
		for field, v := range h.Fields {
			if s, ok := v.(string); ok && s != "" {
				r.Matches = append(r.Matches, Match{Field: field, Text: s})
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *bleveEngine) OnFavoriteSaved(fav *storage.Favorite) {
	if err := b.idx.Index(fav.Key(), favoriteDoc(fav)); err != nil {
		debuglog.Warnf("search: indexing %s: %v", fav.Key(), err)
	}
}

func (b *bleveEngine) OnFavoriteDeleted(url string) {
	if err := b.idx.Delete(url); err != nil {
		debuglog.Warnf("search: deleting %s: %v", url, err)
	}
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *bleveEngine) Close() error {
	return b.idx.Close()
}
