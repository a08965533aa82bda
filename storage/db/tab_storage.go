package db

import (
	"context"
)

const touchTab = `
INSERT INTO tabs (id, created_at, last_seen_at)
VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET last_seen_at = excluded.last_seen_at
`

type TouchTabParams struct {
	ID     string
	SeenAt int64
}

func (q *Queries) TouchTab(ctx context.Context, arg TouchTabParams) error {
	_, err := q.db.ExecContext(ctx, touchTab, arg.ID, arg.SeenAt, arg.SeenAt)
	return err
}

const getTab = `
SELECT id, created_at, last_seen_at FROM tabs WHERE id = ?
`

func (q *Queries) GetTab(ctx context.Context, id string) (Tab, error) {
	row := q.db.QueryRowContext(ctx, getTab, id)
	var i Tab
	err := row.Scan(&i.ID, &i.CreatedAt, &i.LastSeenAt)
	return i, err
}

const getTabValue = `
SELECT value FROM tab_storage WHERE tab_id = ? AND key = ?
`

type GetTabValueParams struct {
	TabID string
	Key   string
}

func (q *Queries) GetTabValue(ctx context.Context, arg GetTabValueParams) (string, error) {
	row := q.db.QueryRowContext(ctx, getTabValue, arg.TabID, arg.Key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const setTabValue = `
INSERT INTO tab_storage (tab_id, key, value, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (tab_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

type SetTabValueParams struct {
	TabID     string
	Key       string
	Value     string
	UpdatedAt int64
}

func (q *Queries) SetTabValue(ctx context.Context, arg SetTabValueParams) error {
	_, err := q.db.ExecContext(ctx, setTabValue, arg.TabID, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

const deleteTabValue = `
DELETE FROM tab_storage WHERE tab_id = ? AND key = ?
`

type DeleteTabValueParams struct {
	TabID string
	Key   string
}

func (q *Queries) DeleteTabValue(ctx context.Context, arg DeleteTabValueParams) error {
	_, err := q.db.ExecContext(ctx, deleteTabValue, arg.TabID, arg.Key)
	return err
}

const listTabValues = `
SELECT tab_id, key, value, updated_at FROM tab_storage WHERE tab_id = ? ORDER BY key
`

func (q *Queries) ListTabValues(ctx context.Context, tabID string) ([]TabValue, error) {
	rows, err := q.db.QueryContext(ctx, listTabValues, tabID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TabValue
	for rows.Next() {
		var i TabValue
		if err := rows.Scan(&i.TabID, &i.Key, &i.Value, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteStaleTabValues = `
DELETE FROM tab_storage
WHERE tab_id IN (SELECT id FROM tabs WHERE last_seen_at < ?)
`

func (q *Queries) DeleteStaleTabValues(ctx context.Context, before int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteStaleTabValues, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteStaleTabs = `
DELETE FROM tabs WHERE last_seen_at < ?
`

func (q *Queries) DeleteStaleTabs(ctx context.Context, before int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteStaleTabs, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
