package session

import (
	"context"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"
)

// BoltStorage persists entries in an embedded bbolt file, one bucket per
// namespace inside a root bucket.
type BoltStorage struct {
	db   *bolt.DB
	root []byte
}

// NewBoltStorage constructs a bbolt backed storage using root as the top bucket.
func NewBoltStorage(db *bolt.DB, root string) *BoltStorage {
	if root == "" {
		root = "console_sessions"
	}
	return &BoltStorage{db: db, root: []byte(root)}
}

// Read returns the present entries among keys.
func (b *BoltStorage) Read(_ context.Context, namespace string, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	err := b.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(b.root)
		if root == nil {
			return nil
		}
		ns := root.Bucket([]byte(namespace))
		if ns == nil {
			return nil
		}
		for _, key := range keys {
			if value := ns.Get([]byte(key)); value != nil {
				out[key] = string(value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt read %s: %w", namespace, err)
	}
	return out, nil
}

// Write stores every entry in one update transaction.
func (b *BoltStorage) Write(_ context.Context, namespace string, entries map[string]string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(b.root)
		if err != nil {
			return err
		}
		ns, err := root.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(entries) {
			if err := ns.Put([]byte(key), []byte(entries[key])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt write %s: %w", namespace, err)
	}
	return nil
}

// Remove deletes keys and drops the namespace bucket once it is empty.
func (b *BoltStorage) Remove(_ context.Context, namespace string, keys ...string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(b.root)
		if root == nil {
			return nil
		}
		ns := root.Bucket([]byte(namespace))
		if ns == nil {
			return nil
		}
		for _, key := range keys {
			if err := ns.Delete([]byte(key)); err != nil {
				return err
			}
		}
		if k, _ := ns.Cursor().First(); k == nil {
			return root.DeleteBucket([]byte(namespace))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt remove %s: %w", namespace, err)
	}
	return nil
}

func sortedKeys(entries map[string]string) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
