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
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"pwinlayout/internal/config"
)

// Open returns the store selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig, password string) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(ctx, cfg.Path)
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN, password)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

type fileRecord struct {
	Slot     string          `json:"slot"`
	SavedAt  time.Time       `json:"savedAt"`
	Geometry json.RawMessage `json:"geometry"`
}

type fileDoc struct {
	Version int          `json:"version"`
	Records []fileRecord `json:"records"`
}

// ExportFile writes records as one JSON document. The file is written to a
// temp file in the same directory and renamed over path.
func ExportFile(path string, records []Record) error {
	doc := fileDoc{Version: FormatVersion, Records: make([]fileRecord, 0, len(records))}
	for _, r := range records {
		data, err := Encode(r.Geometry)
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.Slot, err)
		}
		doc.Records = append(doc.Records, fileRecord{Slot: r.Slot, SavedAt: r.SavedAt.UTC(), Geometry: data})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure export dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp export: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace export: %w", err)
	}
	return nil
}

// ImportFile reads a document written by ExportFile. Every geometry is
// validated; the first invalid one fails the import.
func ImportFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported export version %d", ErrInvalidRecord, doc.Version)
	}
	out := make([]Record, 0, len(doc.Records))
	for _, fr := range doc.Records {
		g, err := Decode(fr.Geometry)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", fr.Slot, err)
		}
		out = append(out, Record{Slot: fr.Slot, Geometry: g, SavedAt: fr.SavedAt})
	}
	return out, nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
