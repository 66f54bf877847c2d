package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	historyBucket   = []byte("history")
	favoritesBucket = []byte("favorites")
)

// ErrNotFound is returned when a key is absent from its bucket.
var ErrNotFound = errors.New("not found")

const defaultTimeout = 1 * time.Second

type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the database at dbPath. A zero timeout uses
// one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{historyBucket, favoritesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordQuery bumps the history entry for query and prunes the oldest
// entries beyond limit. A limit of zero keeps everything. The empty query is
// not recorded.
func (s *Store) RecordQuery(query string, limit int) error {
	if query == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)
		entry := HistoryEntry{Query: query}
		if data := b.Get([]byte(query)); data != nil {
			if err := json.Unmarshal(data, &entry); err != nil {
				return err
			}
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry.Count++
		entry.LastUsed = time.Now()
		entry.Seq = seq

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(query), data); err != nil {
			return err
		}

		if limit <= 0 {
			return nil
		}
		entries, err := readHistory(b)
		if err != nil || len(entries) <= limit {
			return err
		}
		for _, old := range entries[limit:] {
			if err := b.Delete([]byte(old.Query)); err != nil {
				return err
			}
		}
		return nil
	})
}

// History returns queries, most recently used first.
func (s *Store) History(limit int) ([]*HistoryEntry, error) {
	var entries []*HistoryEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		entries, err = readHistory(tx.Bucket(historyBucket))
		return err
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, err
}

func readHistory(b *bolt.Bucket) ([]*HistoryEntry, error) {
	var entries []*HistoryEntry
	err := b.ForEach(func(_ []byte, v []byte) error {
		var entry HistoryEntry
		if err := json.Unmarshal(v, &entry); err != nil {
			return err
		}
		entries = append(entries, &entry)
		return nil
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Seq > entries[j].Seq
	})
	return entries, err
}

func (s *Store) ClearHistory() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(historyBucket)
		return err
	})
}

func (s *Store) SaveFavorite(fav *Favorite) error {
	if fav.Key() == "" {
		return fmt.Errorf("favorite has no image url")
	}
	if fav.SavedAt.IsZero() {
		fav.SavedAt = time.Now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(fav)
		if err != nil {
			return err
		}
		return tx.Bucket(favoritesBucket).Put([]byte(fav.Key()), data)
	})
}

func (s *Store) GetFavorite(url string) (*Favorite, error) {
	var fav Favorite
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(favoritesBucket).Get([]byte(url))
		if data == nil {
			return fmt.Errorf("favorite %q: %w", url, ErrNotFound)
		}
		return json.Unmarshal(data, &fav)
	})
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

func (s *Store) IsFavorite(url string) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(favoritesBucket).Get([]byte(url)) != nil
		return nil
	})
	return found
}

func (s *Store) DeleteFavorite(url string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(favoritesBucket)
		if b.Get([]byte(url)) == nil {
			return fmt.Errorf("favorite %q: %w", url, ErrNotFound)
		}
		return b.Delete([]byte(url))
	})
}

// Favorites returns every favorite, newest first.
func (s *Store) Favorites() ([]*Favorite, error) {
	var favs []*Favorite
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(favoritesBucket).ForEach(func(_ []byte, v []byte) error {
			var fav Favorite
			if err := json.Unmarshal(v, &fav); err != nil {
				return nil
			}
			favs = append(favs, &fav)
			return nil
		})
	})
	sort.Slice(favs, func(i, j int) bool {
		return favs[i].SavedAt.After(favs[j].SavedAt)
	})
	return favs, err
}

// Retry runs a database operation up to 3 times with exponential backoff.
// Only local writes go through it.
func Retry(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := operation(); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			lastErr = err
			if i < maxRetries-1 {
				time.Sleep(baseDelay * time.Duration(1<<i))
			}
			continue
		}
		return nil
	}
	return lastErr
}
