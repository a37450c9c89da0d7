package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/geoknoesis/rdf-tabular/dataset"
)

// DefaultBucket is the KV bucket runs are stored in.
const DefaultBucket = "RDFTAB_RUNS"

// NATS stores each run as one JSON value in a JetStream KV bucket, keyed by
// Key(graphIRI).
type NATS struct {
	kv   jetstream.KeyValue
	conn *nats.Conn
}

// DialNATS connects to url and opens (or creates) bucket.
func DialNATS(ctx context.Context, url, bucket string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("rdftab"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	store, err := NewNATS(ctx, js, bucket)
	if err != nil {
		nc.Close()
		return nil, err
	}
	store.conn = nc
	return store, nil
}

// NewNATS opens bucket on js, creating it when missing.
func NewNATS(ctx context.Context, js jetstream.JetStream, bucket string) (*NATS, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "rdf-tabular stored runs",
			History:     1,
		})
		if err != nil {
			return nil, fmt.Errorf("create runs bucket: %w", err)
		}
	}
	return NewNATSFromKV(kv), nil
}

// NewNATSFromKV wraps an existing bucket handle.
func NewNATSFromKV(kv jetstream.KeyValue) *NATS {
	return &NATS{kv: kv}
}

func (s *NATS) Put(ctx context.Context, run *dataset.StoredRun) error {
	if err := checkRun(run); err != nil {
		return err
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if _, err := s.kv.Put(ctx, Key(run.GraphIRI), data); err != nil {
		return fmt.Errorf("put run: %w", err)
	}
	return nil
}

func (s *NATS) List(ctx context.Context) ([]dataset.RunSummary, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []dataset.RunSummary{}, nil
		}
		return nil, fmt.Errorf("list run keys: %w", err)
	}

	list := make([]dataset.RunSummary, 0, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue // deleted since Keys
			}
			return nil, fmt.Errorf("get run %s: %w", key, err)
		}
		var summary dataset.RunSummary
		if err := json.Unmarshal(entry.Value(), &summary); err != nil {
			return nil, fmt.Errorf("unmarshal run %s: %w", key, err)
		}
		list = append(list, summary)
	}
	sortSummaries(list)
	return list, nil
}

func (s *NATS) Get(ctx context.Context, graphIRI string) (*dataset.StoredRun, error) {
	entry, err := s.kv.Get(ctx, Key(graphIRI))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	var run dataset.StoredRun
	if err := json.Unmarshal(entry.Value(), &run); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &run, nil
}

func (s *NATS) Delete(ctx context.Context, graphIRI string) error {
	key := Key(graphIRI)
	if _, err := s.kv.Get(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get run: %w", err)
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// Close drains the connection when the store dialed it itself.
func (s *NATS) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}
