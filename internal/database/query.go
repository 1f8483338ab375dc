// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// QueryResult is the tabular output of Query.
type QueryResult struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated"`
}

// Query runs a single read-only SELECT or WITH statement and returns at most
// maxRows rows. The statement runs in a transaction that is always rolled
// back, so nothing it does is persisted.
func (db *DB) Query(ctx context.Context, query string, maxRows int) (res *QueryResult, err error) {
	start := time.Now()
	defer func() { observe("query", "adhoc", start, err) }()

	query, err = readOnlyStatement(query)
	if err != nil {
		return nil, err
	}
	if maxRows <= 0 {
		maxRows = 1000
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		if isPermissionError(err) {
			return nil, fmt.Errorf("%w: %w", ErrReadOnlyQuery, err)
		}
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer closeWithLog(rows, "rows")

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	res = &QueryResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		if len(res.Rows) == maxRows {
			res.Truncated = true
			break
		}
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return res, nil
}

// isPermissionError reports whether DuckDB refused the statement because it
// touches files, URLs or settings while external access is disabled.
func isPermissionError(err error) bool {
	return strings.Contains(err.Error(), "Permission Error")
}

// readOnlyStatement trims query and rejects anything other than one SELECT
// or WITH statement. A single trailing semicolon is allowed.
func readOnlyStatement(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" || strings.Contains(q, ";") {
		return "", ErrReadOnlyQuery
	}
	fields := strings.Fields(q)
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		return q, nil
	default:
		return "", ErrReadOnlyQuery
	}
}
