// Package store keeps analysis results in a badger key-value database. Records
// are JSON documents compressed with a per-record codec.
package store

import (
	"encoding/json"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/notargets/gomorse/logging"
)

var ErrNotFound = errors.New("store: key not found")

type Options struct {
	Dir      string // empty keeps the database in memory
	Codec    Codec
	ReadOnly bool
	Logger   *logging.Logger
}

type Store struct {
	db    *badger.DB
	codec Codec
}

func Open(opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NoopLogger()
	}
	dbOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(log.Badger()).
		WithReadOnly(opts.ReadOnly)
	dbOpts.MetricsEnabled = false
	if opts.Dir == "" {
		if opts.ReadOnly {
			return nil, errors.New("store: a read-only store needs a directory")
		}
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening %q", opts.Dir)
	}
	return &Store{db: db, codec: opts.Codec}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Codec() Codec { return s.codec }

// Put stores v as JSON under key, replacing any previous record.
func (s *Store) Put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "store: encoding %s", key)
	}
	rec, err := encode(data, s.codec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), rec)
	})
}

// Get decodes the record under key into v.
func (s *Store) Get(key string, v interface{}) error {
	var rec []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		rec, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return errors.Wrap(ErrNotFound, key)
	}
	if err != nil {
		return errors.Wrapf(err, "store: reading %s", key)
	}
	data, err := decode(rec)
	if err != nil {
		return errors.Wrap(err, key)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "store: decoding %s", key)
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Keys lists the keys starting with prefix in ascending order.
func (s *Store) Keys(prefix string) (keys []string, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         []byte(prefix),
		})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "store: listing %q", prefix)
	}
	sort.Strings(keys)
	return
}
