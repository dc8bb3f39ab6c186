package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/russross/meddler"
)

// Enqueue appends a pending refresh to the sync queue.
func (s *Store) Enqueue(ctx context.Context, item *SyncQueueItem) error {
	if err := meddler.Insert(s.db, "sync_queue", item); err != nil {
		return fmt.Errorf("failed to enqueue %s %d: %w", item.EntityType, item.EntityIndex, err)
	}

	s.log.Debugf("enqueued %s #%d, min_last_sync=%d", item.EntityType, item.EntityIndex, item.MinLastSync.Unix())

	return nil
}

// EarliestQueueItem returns the queue item with the earliest SyncAt,
// or ErrNotFound when the queue is empty. Ties break on insertion order.
func (s *Store) EarliestQueueItem(ctx context.Context) (*SyncQueueItem, error) {
	var item SyncQueueItem
	err := meddler.QueryRow(s.db, &item, `
		SELECT * FROM sync_queue ORDER BY sync_at ASC, id ASC LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get earliest queue item: %w", err)
	}

	return &item, nil
}

// DeleteQueueItems removes every queue row for the key whose freshness
// threshold is at or below the achieved freshness.
func (s *Store) DeleteQueueItems(ctx context.Context, entityType EntityType, index uint64, achieved time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sync_queue
		WHERE entity_type = ? AND entity_index = ? AND min_last_sync <= ?
	`, entityType, index, achieved.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete queue items for %s %d: %w", entityType, index, err)
	}

	deleted, _ := res.RowsAffected()

	return deleted, nil
}

// PurgeQueueItems removes every queue row for the key regardless of
// threshold. Used when the entity no longer exists.
func (s *Store) PurgeQueueItems(ctx context.Context, entityType EntityType, index uint64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sync_queue WHERE entity_type = ? AND entity_index = ?
	`, entityType, index)
	if err != nil {
		return 0, fmt.Errorf("failed to purge queue items for %s %d: %w", entityType, index, err)
	}

	purged, _ := res.RowsAffected()

	return purged, nil
}

// UpdateQueueItem persists a rescheduled queue item.
func (s *Store) UpdateQueueItem(ctx context.Context, item *SyncQueueItem) error {
	if err := meddler.Update(s.db, "sync_queue", item); err != nil {
		return fmt.Errorf("failed to update queue item %d: %w", item.ID, err)
	}

	return nil
}

// QueueItems returns all queue rows for one key, ordered by id.
func (s *Store) QueueItems(ctx context.Context, entityType EntityType, index uint64) ([]*SyncQueueItem, error) {
	var items []*SyncQueueItem
	err := meddler.QueryAll(s.db, &items, `
		SELECT * FROM sync_queue WHERE entity_type = ? AND entity_index = ? ORDER BY id ASC
	`, entityType, index)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue items for %s %d: %w", entityType, index, err)
	}

	return items, nil
}

// QueueDepth returns the number of pending queue rows.
func (s *Store) QueueDepth(ctx context.Context) (int, error) {
	var depth int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&depth); err != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}

	return depth, nil
}
