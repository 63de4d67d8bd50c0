// Package diskcache keeps fetched lap data on disk to avoid repeated
// requests to a telemetry provider.
package diskcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
)

const (
	dbFile     = "laps.db"
	lapsBucket = "laps"
)

var ErrNotFound = errors.New("cache entry not found")

type (
	Entry struct {
		FetchedAt time.Time           `json:"fetchedAt"`
		Document  *telemetry.Document `json:"document"`
	}
	EntryInfo struct {
		Key       string
		FetchedAt time.Time
		Laps      int
	}
	Store struct {
		db *bolt.DB
	}
)

// Open opens (or creates) the cache database within dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, dbFile), 0o600,
		&bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(lapsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (*Entry, error) {
	var ret *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(lapsBucket)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		ret = &Entry{}
		return json.Unmarshal(data, ret)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Store) Put(key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(lapsBucket)).Put([]byte(key), data)
	})
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(lapsBucket)).Delete([]byte(key))
	})
}

// Clear removes all entries and returns the number of removed entries.
func (s *Store) Clear() (int, error) {
	count := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(lapsBucket)).Stats().KeyN
		if err := tx.DeleteBucket([]byte(lapsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(lapsBucket))
		return err
	})
	return count, err
}

// List returns the cached entries ordered by key.
func (s *Store) List() ([]EntryInfo, error) {
	ret := []EntryInfo{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(lapsBucket)).ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("entry %s: %w", k, err)
			}
			info := EntryInfo{Key: string(k), FetchedAt: e.FetchedAt}
			if e.Document != nil {
				info.Laps = len(e.Document.Laps)
			}
			ret = append(ret, info)
			return nil
		})
	})
	slices.SortFunc(ret, func(a, b EntryInfo) int { return strings.Compare(a.Key, b.Key) })
	return ret, err
}
