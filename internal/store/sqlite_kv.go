// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package store

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/avelichko/revise/internal/logger"
)

type sqliteKV struct {
	db  *DB
	log *logger.Logger
}

// NewKVStore returns a [KVStore] persisted in the given SQLite database.
// The kv table schema is managed by the embedded goose migrations; call
// [DB.Migrate] before first use.
//
// Backend failures never escape: the engine treats the store as always
// available, so read errors report the key as absent and write errors are
// logged and dropped. Losing a cache entry this way only costs a refetch.
func NewKVStore(db *DB, log *logger.Logger) KVStore {
	return &sqliteKV{db: db, log: log}
}

func (s *sqliteKV) GetItem(key string) (string, bool) {
	query, args, err := sq.Select("value").
		From("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		s.log.Err(err).Str("key", key).Msg("kv get: build query")
		return "", false
	}

	var value string
	err = s.db.QueryRow(query, args...).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Err(err).Str("key", key).Msg("kv get: query")
		}
		return "", false
	}

	return value, true
}

func (s *sqliteKV) SetItem(key, value string) {
	query, args, err := sq.Insert("kv").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		s.log.Err(err).Str("key", key).Msg("kv set: build query")
		return
	}

	if _, err = s.db.Exec(query, args...); err != nil {
		s.log.Err(err).Str("key", key).Msg("kv set: exec")
	}
}

func (s *sqliteKV) RemoveItem(key string) {
	query, args, err := sq.Delete("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		s.log.Err(err).Str("key", key).Msg("kv remove: build query")
		return
	}

	if _, err = s.db.Exec(query, args...); err != nil {
		s.log.Err(err).Str("key", key).Msg("kv remove: exec")
	}
}

func (s *sqliteKV) Keys() []string {
	query, _, err := sq.Select("key").
		From("kv").
		OrderBy("key").
		ToSql()
	if err != nil {
		s.log.Err(err).Msg("kv keys: build query")
		return nil
	}

	rows, err := s.db.Query(query)
	if err != nil {
		s.log.Err(err).Msg("kv keys: query")
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			s.log.Err(err).Msg("kv keys: scan")
			return nil
		}
		keys = append(keys, key)
	}
	if err = rows.Err(); err != nil {
		s.log.Err(err).Msg("kv keys: rows")
	}

	return keys
}

func (s *sqliteKV) Clear() {
	query, _, err := sq.Delete("kv").ToSql()
	if err != nil {
		s.log.Err(err).Msg("kv clear: build query")
		return
	}

	if _, err = s.db.Exec(query); err != nil {
		s.log.Err(err).Msg("kv clear: exec")
	}
}
