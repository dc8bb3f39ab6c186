package store

import (
	"context"
	"fmt"

	"github.com/russross/meddler"
)

// Translations returns every translation row. The translation collaborator
// owns the table; the cache rebuild engine loads it in one pass.
func (s *Store) Translations(ctx context.Context) ([]*Translation, error) {
	var translations []*Translation
	if err := meddler.QueryAll(s.db, &translations, `SELECT * FROM translations`); err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}

	return translations, nil
}

// SaveTranslation inserts or replaces one translation row. Called by the
// translation collaborator, not by the core.
func (s *Store) SaveTranslation(ctx context.Context, t *Translation) error {
	const query = `
		INSERT INTO translations (hash, lang, text)
		VALUES (?, ?, ?)
		ON CONFLICT(hash, lang) DO UPDATE SET text = excluded.text
	`
	if _, err := s.db.ExecContext(ctx, query, t.Hash, t.Lang, t.Text); err != nil {
		return fmt.Errorf("failed to save translation (%s, %s): %w", t.Hash, t.Lang, err)
	}

	return nil
}

// OrderResponses returns every order response row.
func (s *Store) OrderResponses(ctx context.Context) ([]*OrderResponse, error) {
	var responses []*OrderResponse
	if err := meddler.QueryAll(s.db, &responses, `SELECT * FROM order_responses ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("failed to list order responses: %w", err)
	}

	return responses, nil
}

// ResponsesByOrder returns the responses submitted for one order.
// This is one of the two unbounded detail lookups the query surface
// reads from the store directly instead of the snapshot.
func (s *Store) ResponsesByOrder(ctx context.Context, orderIndex uint64) ([]*OrderResponse, error) {
	var responses []*OrderResponse
	err := meddler.QueryAll(s.db, &responses, `
		SELECT * FROM order_responses WHERE order_index = ? ORDER BY created_at ASC, id ASC
	`, orderIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses for order %d: %w", orderIndex, err)
	}

	return responses, nil
}

// SaveOrderResponse appends one response row.
func (s *Store) SaveOrderResponse(ctx context.Context, r *OrderResponse) error {
	if err := meddler.Insert(s.db, "order_responses", r); err != nil {
		return fmt.Errorf("failed to save response for order %d: %w", r.OrderIndex, err)
	}

	return nil
}

// ActivityByOrder returns the activity log for one order.
func (s *Store) ActivityByOrder(ctx context.Context, orderIndex uint64) ([]*OrderActivity, error) {
	var activity []*OrderActivity
	err := meddler.QueryAll(s.db, &activity, `
		SELECT * FROM order_activity WHERE order_index = ? ORDER BY created_at ASC, id ASC
	`, orderIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity for order %d: %w", orderIndex, err)
	}

	return activity, nil
}

// SaveOrderActivity appends one activity row.
func (s *Store) SaveOrderActivity(ctx context.Context, a *OrderActivity) error {
	if err := meddler.Insert(s.db, "order_activity", a); err != nil {
		return fmt.Errorf("failed to save activity for order %d: %w", a.OrderIndex, err)
	}

	return nil
}
