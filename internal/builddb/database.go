// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package builddb records the images built by imgtool.
package builddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/imgtrailer/api"
)

// ErrNotFound is returned when no image matches the query.
var ErrNotFound = errors.New("image not found")

// Database provides read/write access to the image records.
type Database struct {
	db *sql.DB
}

// NewDatabase opens a Database using the named driver and connection string.
// This has been tested with sqlite3 and MariaDB; the caller must import the driver.
func NewDatabase(driver, connString string) (*Database, error) {
	dbConn, err := sql.Open(driver, connString)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return NewDatabaseDirect(dbConn)
}

// NewDatabaseDirect creates a Database using the given database connection.
func NewDatabaseDirect(db *sql.DB) (*Database, error) {
	ret := &Database{
		db: db,
	}
	return ret, ret.init()
}

func (d *Database) init() error {
	_, err := d.db.Exec("CREATE TABLE IF NOT EXISTS images (hash VARBINARY(32) PRIMARY KEY, header BLOB, manifest BLOB, created BIGINT)")
	return err
}

// Close releases the underlying connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// WriteImage stores the record. Writing a hash which is already present is a no-op.
func (d *Database) WriteImage(ctx context.Context, r api.ImageRecord) error {
	hdr, err := r.Header.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("BeginTx(): %v", err)
	}
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM images WHERE hash = ?", r.Hash).Scan(&n); err != nil {
		tx.Rollback()
		return fmt.Errorf("Scan(): %v", err)
	}
	if n > 0 {
		tx.Rollback()
		return nil
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO images (hash, header, manifest, created) VALUES (?, ?, ?, ?)", r.Hash, hdr, r.Manifest, r.CreatedNanos); err != nil {
		tx.Rollback()
		return fmt.Errorf("ExecContext(): %v", err)
	}
	return tx.Commit()
}

// GetImage returns the record for the image with the given trailer hash.
func (d *Database) GetImage(ctx context.Context, hash []byte) (api.ImageRecord, error) {
	row := d.db.QueryRowContext(ctx, "SELECT hash, header, manifest, created FROM images WHERE hash = ?", hash)
	return scanRecord(row)
}

// LatestImage returns the most recently written record.
func (d *Database) LatestImage(ctx context.Context) (api.ImageRecord, error) {
	row := d.db.QueryRowContext(ctx, "SELECT hash, header, manifest, created FROM images ORDER BY created DESC LIMIT 1")
	return scanRecord(row)
}

// ListImages returns up to limit records, newest first.
func (d *Database) ListImages(ctx context.Context, limit int) ([]api.ImageRecord, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT hash, header, manifest, created FROM images ORDER BY created DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("QueryContext(): %v", err)
	}
	defer rows.Close()
	var ret []api.ImageRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, r)
	}
	return ret, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (api.ImageRecord, error) {
	var r api.ImageRecord
	var hdr []byte
	if err := s.Scan(&r.Hash, &hdr, &r.Manifest, &r.CreatedNanos); err != nil {
		if err == sql.ErrNoRows {
			return api.ImageRecord{}, ErrNotFound
		}
		return api.ImageRecord{}, fmt.Errorf("Scan(): %v", err)
	}
	h, err := api.UnmarshalImageHeader(hdr)
	if err != nil {
		return api.ImageRecord{}, fmt.Errorf("corrupt header for image %x: %v", r.Hash, err)
	}
	r.Header = h
	return r, nil
}
