// Package journal persists every projected event to pebble so a test run can
// be inspected after the fact. The journal is append-only and optional; live
// conversation state is always the in-memory cache, never read back from
// here.
package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"ets/pkg/client"
	"ets/pkg/logger"
)

// Entry is one journaled event.
type Entry struct {
	Seq        uint64           `json:"seq"`
	RecordedAt int64            `json:"recordedAt"`
	Type       client.EventType `json:"type"`
	Event      client.Event     `json:"event"`
}

// Journal wraps an opened pebble database. A nil *Journal is a valid
// disabled journal: Append and List become no-ops.
type Journal struct {
	db  *pebble.DB
	seq uint64
}

// Open opens (or creates) the pebble database at path.
func Open(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("journal_open_failed", "path", path, "error", err)
		return nil, fmt.Errorf("open journal at %s: %w", path, err)
	}
	logger.Info("journal_opened", "path", path)
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Ready reports whether the journal is open.
func (j *Journal) Ready() bool {
	return j != nil && j.db != nil
}

// Append records one event for an instance.
// Key format: instance:<instanceID>:event:<seq_padded>
func (j *Journal) Append(instanceID string, ev client.Event) error {
	if !j.Ready() {
		return nil
	}
	s := atomic.AddUint64(&j.seq, 1)
	entry := Entry{
		Seq:        s,
		RecordedAt: time.Now().UTC().UnixMilli(),
		Type:       ev.Type,
		Event:      ev,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	key := fmt.Sprintf("instance:%s:event:%020d", instanceID, s)
	if err := j.db.Set([]byte(key), data, pebble.NoSync); err != nil {
		logger.Error("journal_append_failed", "instance", instanceID, "key", key, "error", err)
		return err
	}
	return nil
}

// List returns all journaled entries for an instance in append order.
func (j *Journal) List(instanceID string) ([]Entry, error) {
	if !j.Ready() {
		return nil, nil
	}
	prefix := []byte(fmt.Sprintf("instance:%s:event:", instanceID))
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: append(append([]byte{}, prefix...), 0xff),
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = iter.Close() }()

	var out []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			// tolerate a corrupt record rather than failing the listing
			logger.Warn("journal_entry_unreadable", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
