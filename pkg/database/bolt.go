package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/noah-isme/academic-console/pkg/config"
)

// NewBolt opens (creating if needed) the embedded session database.
func NewBolt(cfg config.BoltConfig) (*bolt.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("bolt path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}

	// A second console on the same file would block forever without a timeout.
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", cfg.Path, err)
	}
	return db, nil
}
