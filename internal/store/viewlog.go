package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var viewsBucket = []byte("views")

// ViewLog records every page view of an invitation in a bbolt file, keyed by
// invitation id.
type ViewLog struct {
	db *bolt.DB
}

var _ ViewStore = (*ViewLog)(nil)

func NewViewLog(path string) (*ViewLog, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db at %s: %w", path, err)
	}

	// Reason: bucket must exist before any read/write operations
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(viewsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating views bucket: %w", err)
	}

	return &ViewLog{db: db}, nil
}

func viewKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

func (l *ViewLog) RecordView(_ context.Context, id int64, at time.Time) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(viewsBucket)
		key := viewKey(id)

		var views []time.Time
		if data := b.Get(key); data != nil {
			if err := json.Unmarshal(data, &views); err != nil {
				return fmt.Errorf("unmarshaling views of invitation %d: %w", id, err)
			}
		}
		views = append(views, at.UTC())

		updated, err := json.Marshal(views)
		if err != nil {
			return fmt.Errorf("marshaling views of invitation %d: %w", id, err)
		}
		if err := b.Put(key, updated); err != nil {
			return fmt.Errorf("writing views of invitation %d: %w", id, err)
		}
		return nil
	})
}

// Views returns the recorded views oldest first. An invitation that was never
// viewed has an empty, non-nil history.
func (l *ViewLog) Views(_ context.Context, id int64) ([]time.Time, error) {
	views := make([]time.Time, 0)

	err := l.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(viewsBucket).Get(viewKey(id))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &views); err != nil {
			return fmt.Errorf("unmarshaling views of invitation %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return views, nil
}

func (l *ViewLog) Forget(_ context.Context, id int64) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(viewsBucket).Delete(viewKey(id)); err != nil {
			return fmt.Errorf("deleting views of invitation %d: %w", id, err)
		}
		return nil
	})
}

func (l *ViewLog) Close() error {
	return l.db.Close()
}
