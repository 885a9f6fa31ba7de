// Package kv implements the saved object repository on an embedded BadgerDB
// key-value store.
//
// All records of one application share a partition prefix and are
// disambiguated by their raw id:
//
//	so:<application_id>\x00<raw_id>  ->  JSON record
//
// Find scans the whole partition and filters in memory, so its cost is linear
// in the partition size regardless of selectivity.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/serializer"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const (
	keyPrefix          = "so:"
	partitionSeparator = "\x00"
	primaryTerm        = int64(1)
)

// Config selects where the store lives.
type Config struct {
	Path          string
	InMemory      bool
	ApplicationID string
}

// record is the persisted value. Source holds the encoded raw document; the
// remaining fields mirror it for inspection and partition-level filtering.
type record struct {
	ID               string                  `json:"id"`
	Type             string                  `json:"type"`
	SeqNo            int64                   `json:"seq_no"`
	PrimaryTerm      int64                   `json:"primary_term"`
	Source           json.RawMessage         `json:"attributes"`
	References       []savedobject.Reference `json:"reference"`
	MigrationVersion map[string]string       `json:"migration_version,omitempty"`
	Namespaces       []string                `json:"namespaces"`
	OriginID         string                  `json:"origin_id,omitempty"`
	UpdatedAt        string                  `json:"updated_at,omitempty"`
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf("[KV] "+msg, items...))
}

func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf("[KV] "+msg, items...))
}

func (l *badgerLogger) Infof(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf("[KV] "+msg, items...))
}

func (l *badgerLogger) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf("[KV] "+msg, items...))
}

// openDB opens a badger database, creating the directory when needed.
func openDB(cfg Config) (*badger.DB, error) {
	var opts badger.Options

	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("kv path is required unless in_memory is set")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create kv directory: %w", err)
		}
		info, err := os.Stat(cfg.Path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts.Logger = &badgerLogger{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return db, nil
}

func partitionKey(appID string) []byte {
	return []byte(keyPrefix + appID + partitionSeparator)
}

func (r *Repository) key(rawID string) []byte {
	k := make([]byte, 0, len(r.partition)+len(rawID))
	k = append(k, r.partition...)
	return append(k, rawID...)
}

func (r *Repository) encode(raw serializer.RawDoc) ([]byte, error) {
	src, err := serializer.MarshalSource(raw.Source)
	if err != nil {
		return nil, err
	}
	rec := record{
		ID:               raw.ID,
		Type:             raw.Source.Type,
		SeqNo:            raw.SeqNo,
		PrimaryTerm:      raw.PrimaryTerm,
		Source:           src,
		References:       raw.Source.References,
		MigrationVersion: raw.Source.MigrationVersion,
		Namespaces:       r.base.PersistedNamespaces(raw.Source),
		OriginID:         raw.Source.OriginID,
		UpdatedAt:        raw.Source.UpdatedAt,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return b, nil
}

func decode(val []byte) (record, serializer.RawDoc, error) {
	var rec record
	if err := json.Unmarshal(val, &rec); err != nil {
		return record{}, serializer.RawDoc{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	src, err := serializer.UnmarshalSource(rec.Source)
	if err != nil {
		return record{}, serializer.RawDoc{}, err
	}
	return rec, serializer.RawDoc{
		ID:          rec.ID,
		SeqNo:       rec.SeqNo,
		PrimaryTerm: rec.PrimaryTerm,
		Source:      src,
	}, nil
}

// lookup reads a raw document inside txn. A missing key is reported through
// found, never through err.
func (r *Repository) lookup(txn *badger.Txn, rawID string) (raw serializer.RawDoc, found bool, err error) {
	item, err := txn.Get(r.key(rawID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return serializer.RawDoc{}, false, nil
	}
	if err != nil {
		return serializer.RawDoc{}, false, fmt.Errorf("failed to read %s: %w", rawID, err)
	}
	err = item.Value(func(val []byte) error {
		var decodeErr error
		_, raw, decodeErr = decode(val)
		return decodeErr
	})
	if err != nil {
		return serializer.RawDoc{}, false, err
	}
	return raw, true, nil
}

// put writes raw with the seq_no following prev (or 1 for new records) and
// returns the written document.
func (r *Repository) put(txn *badger.Txn, raw serializer.RawDoc, prevSeqNo int64) (serializer.RawDoc, error) {
	raw.SeqNo = prevSeqNo + 1
	raw.PrimaryTerm = primaryTerm
	val, err := r.encode(raw)
	if err != nil {
		return serializer.RawDoc{}, err
	}
	if err := txn.Set(r.key(raw.ID), val); err != nil {
		return serializer.RawDoc{}, fmt.Errorf("failed to write %s: %w", raw.ID, err)
	}
	return raw, nil
}

// scan calls fn for every record of the partition.
func (r *Repository) scan(fn func(rec record, raw serializer.RawDoc) error) error {
	return r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = r.partition
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var (
				rec record
				raw serializer.RawDoc
			)
			err := iter.Item().Value(func(val []byte) error {
				var decodeErr error
				rec, raw, decodeErr = decode(val)
				return decodeErr
			})
			if err != nil {
				return err
			}
			if err := fn(rec, raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// storageError converts badger failures into typed repository errors. Typed
// errors raised inside a transaction pass through unchanged.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *savedobject.Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, badger.ErrConflict) {
		return &savedobject.Error{Kind: savedobject.KindConflict, Message: "concurrent write to the same saved object", Err: err}
	}
	return savedobject.NewStorageFailure(op, err)
}
