/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	applog "pwinlayout/internal/log"
	"pwinlayout/internal/pwin"
)

// SQLStore is a Store over database/sql. The SQLite and PostgreSQL
// constructors differ only in driver setup and placeholder style.
type SQLStore struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func logger(op string) *slog.Logger {
	return applog.WithOperation(applog.WithComponent("store"), op)
}

// DB exposes the underlying handle for diagnostics.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect is "sqlite" or "postgres".
func (s *SQLStore) Dialect() string { return s.dialect }

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *SQLStore) rebind(q string) string {
	if s.dialect != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Save(ctx context.Context, slot string, g pwin.Geometry) error {
	if strings.TrimSpace(slot) == "" {
		return errors.New("store: slot is required")
	}
	data, err := Encode(g)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	q := s.rebind(`INSERT INTO geometries (slot, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`)
	if _, err := s.db.ExecContext(ctx, q, slot, string(data), s.timeArg(s.now())); err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	logger("save").Debug("geometry saved", slog.String("slot", slot), slog.String("geo", g.String()))
	return nil
}

func (s *SQLStore) Load(ctx context.Context, slot string) (pwin.Geometry, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT data FROM geometries WHERE slot = ?`), slot).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return pwin.Geometry{}, false, nil
	case err != nil:
		return pwin.Geometry{}, false, fmt.Errorf("load %s: %w", slot, err)
	}
	g, err := Decode([]byte(data))
	if err != nil {
		return pwin.Geometry{}, false, fmt.Errorf("load %s: %w", slot, err)
	}
	return g, true, nil
}

func (s *SQLStore) Delete(ctx context.Context, slot string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM geometries WHERE slot = ?`), slot)
	if err != nil {
		return fmt.Errorf("delete %s: %w", slot, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete %s: %w", slot, ErrNotFound)
	}
	return nil
}

// List returns every record ordered by slot. Rows that no longer decode are
// skipped and logged.
func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, data, saved_at FROM geometries ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			slot, data string
			savedAt    any
		)
		if err := rows.Scan(&slot, &data, &savedAt); err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		g, err := Decode([]byte(data))
		if err != nil {
			logger("list").Warn("skipping unreadable record", slog.String("slot", slot), slog.Any("err", err))
			continue
		}
		out = append(out, Record{Slot: slot, Geometry: g, SavedAt: toTime(savedAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// timeArg stores timestamps as RFC 3339 text in SQLite and natively in PostgreSQL.
func (s *SQLStore) timeArg(t time.Time) any {
	if s.dialect == "postgres" {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		p, _ := time.Parse(time.RFC3339Nano, t)
		return p
	case []byte:
		p, _ := time.Parse(time.RFC3339Nano, string(t))
		return p
	}
	return time.Time{}
}
