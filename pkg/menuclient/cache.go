package menuclient

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yashrajoria/menu-backend/pkg/menu"
	bolt "go.etcd.io/bbolt"
)

// CacheKey names the stored menu. Bump the suffix when Entry changes shape.
const CacheKey = "menu_cache_v1"

var cacheBucket = []byte("menu")

// Entry is a cached copy of the category list.
type Entry struct {
	Categories []menu.Category `json:"categories"`
	FetchedAt  time.Time       `json:"fetchedAt"`
}

// Age is how long ago the entry was fetched.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

type Cache interface {
	// Get returns false when nothing is cached.
	Get() (Entry, bool, error)
	Put(entry Entry) error
}

// BoltCache persists the entry in a local bbolt file.
type BoltCache struct {
	db *bolt.DB
}

func OpenBoltCache(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open menu cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init menu cache: %w", err)
	}
	return &BoltCache{db: db}, nil
}

func (c *BoltCache) Get() (Entry, bool, error) {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cacheBucket).Get([]byte(CacheKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return Entry{}, false, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// an unreadable entry counts as a miss
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (c *BoltCache) Put(entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(CacheKey), raw)
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
