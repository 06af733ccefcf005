// Package results persists completed benchmark runs so bandwidth can be
// compared across invocations.
package results

import (
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// Run is one completed benchmark, as stored in the history database.
type Run struct {
	At          time.Time `json:"at"`
	Device      string    `json:"device"`
	Path        string    `json:"path"`
	BufferSize  int64     `json:"bufferSize"`
	PatternByte byte      `json:"patternByte"`
	Iterations  int       `json:"iterations"`
	WriteGBps   float64   `json:"writeGBps"`
	ReadGBps    float64   `json:"readGBps"`
	Verified    bool      `json:"verified"`
}

// Store is a bbolt-backed append-only run history.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Append records a run under the next sequence number.
func (s *Store) Append(run Run) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(runsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		value, err := json.Marshal(run)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

// List returns all recorded runs, oldest first.
func (s *Store) List() ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
