// internal/history/boltstore.go
package history

import (
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// BoltStore keeps the recent run reports in a local BoltDB file so the
// admin API can serve history without touching the warehouse. Old runs
// are pruned on write down to the configured retention.
type BoltStore struct {
    db        *bbolt.DB
    retention int
}

func Open(path string, retention int) (*BoltStore, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
        return nil, fmt.Errorf("failed to create data directory: %w", err)
    }

    db, err := bbolt.Open(path, 0600, &bbolt.Options{
        Timeout: 1 * time.Second,
    })
    if err != nil {
        return nil, fmt.Errorf("failed to open BoltDB: %w", err)
    }

    if err := db.Update(func(tx *bbolt.Tx) error {
        _, err := tx.CreateBucketIfNotExists(runsBucket)
        return err
    }); err != nil {
        db.Close()
        return nil, fmt.Errorf("failed to initialize buckets: %w", err)
    }

    return &BoltStore{db: db, retention: retention}, nil
}

// SaveRun appends one report. Keys are zero-padded sequence numbers so
// bucket order is insertion order.
func (s *BoltStore) SaveRun(report interface{}) error {
    data, err := json.Marshal(report)
    if err != nil {
        return fmt.Errorf("failed to marshal run report: %w", err)
    }

    return s.db.Update(func(tx *bbolt.Tx) error {
        b := tx.Bucket(runsBucket)
        seq, err := b.NextSequence()
        if err != nil {
            return err
        }
        key := []byte(fmt.Sprintf("%016d", seq))
        if err := b.Put(key, data); err != nil {
            return err
        }
        return s.prune(b)
    })
}

func (s *BoltStore) prune(b *bbolt.Bucket) error {
    if s.retention <= 0 {
        return nil
    }
    count := 0
    c := b.Cursor()
    for k, _ := c.First(); k != nil; k, _ = c.Next() {
        count++
    }
    for k, _ := c.First(); k != nil && count > s.retention; k, _ = c.First() {
        if err := b.Delete(k); err != nil {
            return err
        }
        count--
    }
    return nil
}

// RecentRuns returns up to limit reports, most recent first.
func (s *BoltStore) RecentRuns(limit int) ([]json.RawMessage, error) {
    var runs []json.RawMessage

    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(runsBucket).Cursor()
        for k, v := c.Last(); k != nil; k, v = c.Prev() {
            if limit > 0 && len(runs) >= limit {
                break
            }
            report := make(json.RawMessage, len(v))
            copy(report, v)
            runs = append(runs, report)
        }
        return nil
    })
    if err != nil {
        return nil, err
    }
    return runs, nil
}

func (s *BoltStore) Close() error {
    return s.db.Close()
}
