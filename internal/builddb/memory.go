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


package builddb

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Load drivers for sqlite3
)

// NewInMemoryDatabase returns a Database backed by a private in-memory sqlite3 DB.
func NewInMemoryDatabase() (*Database, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// Each sqlite3 connection to :memory: sees its own database.
	db.SetMaxOpenConns(1)
	return NewDatabaseDirect(db)
}
