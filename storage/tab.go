package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loganlanou/colink-venture/internal/clientstore"
	"github.com/loganlanou/colink-venture/storage/db"
)

// Tab returns the persistent client storage for one browser tab and marks
// the tab as seen.
func (s *Storage) Tab(id string) clientstore.Store {
	if err := s.TouchTab(context.Background(), id, time.Now()); err != nil {
		slog.Warn("failed to touch tab", "tab_id", id, "error", err)
	}
	return &TabStore{queries: s.Queries, tabID: id}
}

// TouchTab records activity for a tab, creating it on first sight.
func (s *Storage) TouchTab(ctx context.Context, id string, at time.Time) error {
	return s.Queries.TouchTab(ctx, db.TouchTabParams{ID: id, SeenAt: at.Unix()})
}

// PruneTabs deletes every tab idle since before, with its stored values.
// It returns the number of tabs removed.
func (s *Storage) PruneTabs(ctx context.Context, before time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.Queries.WithTx(tx)
	if _, err := q.DeleteStaleTabValues(ctx, before.Unix()); err != nil {
		return 0, fmt.Errorf("failed to delete stale tab values: %w", err)
	}
	removed, err := q.DeleteStaleTabs(ctx, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale tabs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return removed, nil
}

// TabStore is a clientstore.Store backed by the tab_storage table.
// Database errors are logged and read as a missing key so callers keep the
// synchronous storage contract.
type TabStore struct {
	queries *db.Queries
	tabID   string
}

func (t *TabStore) Get(key string) (string, bool) {
	value, err := t.queries.GetTabValue(context.Background(), db.GetTabValueParams{TabID: t.tabID, Key: key})
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("failed to read tab storage", "tab_id", t.tabID, "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (t *TabStore) Set(key, value string) {
	err := t.queries.SetTabValue(context.Background(), db.SetTabValueParams{
		TabID:     t.tabID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		slog.Warn("failed to write tab storage", "tab_id", t.tabID, "key", key, "error", err)
	}
}

func (t *TabStore) Remove(key string) {
	err := t.queries.DeleteTabValue(context.Background(), db.DeleteTabValueParams{TabID: t.tabID, Key: key})
	if err != nil {
		slog.Warn("failed to delete tab storage key", "tab_id", t.tabID, "key", key, "error", err)
	}
}
