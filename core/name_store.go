// Copyright 2025 The go-kromer Authors
// This file is part of go-kromer.
//
// go-kromer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-kromer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-kromer. If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/core/types"
	"github.com/reconnectedcc/go-kromer/db"
)

const nameColumns = `id, name, owner, original_owner, time_registered, last_updated, last_transferred, unpaid, metadata`

func scanName(row pgx.Row) (*types.Name, error) {
	var n types.Name
	err := row.Scan(&n.ID, &n.Name, &n.Owner, &n.OriginalOwner, &n.TimeRegistered,
		&n.LastUpdated, &n.LastTransferred, &n.Unpaid, &n.Metadata)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func collectNames(rows pgx.Rows) ([]types.Name, error) {
	defer rows.Close()
	var out []types.Name
	for rows.Next() {
		n, err := scanName(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func fetchNameByName(ctx context.Context, ex db.Executor, name string) (*types.Name, error) {
	row := ex.QueryRow(ctx, `SELECT `+nameColumns+` FROM names WHERE name = $1`, name)
	n, err := scanName(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func fetchNames(ctx context.Context, ex db.Executor, limit, offset int) ([]types.Name, error) {
	rows, err := ex.Query(ctx,
		`SELECT `+nameColumns+` FROM names ORDER BY name ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectNames(rows)
}

func countNames(ctx context.Context, ex db.Executor) (int64, error) {
	var n int64
	err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM names`).Scan(&n)
	return n, err
}

func fetchNamesByOwner(ctx context.Context, ex db.Executor, owner string, limit, offset int) ([]types.Name, error) {
	rows, err := ex.Query(ctx,
		`SELECT `+nameColumns+` FROM names WHERE owner = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		owner, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectNames(rows)
}

func countNamesByOwner(ctx context.Context, ex db.Executor, owner string) (int64, error) {
	var n int64
	err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM names WHERE owner = $1`, owner).Scan(&n)
	return n, err
}

func fetchUnpaidNames(ctx context.Context, ex db.Executor, limit, offset int) ([]types.Name, error) {
	rows, err := ex.Query(ctx,
		`SELECT `+nameColumns+` FROM names WHERE unpaid > 0 ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectNames(rows)
}

func countUnpaidNames(ctx context.Context, ex db.Executor) (int64, error) {
	var n int64
	err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM names WHERE unpaid > 0`).Scan(&n)
	return n, err
}

// insertName creates the row with original_owner fixed to the registrant.
// A unique-index trip surfaces as name_taken so the surrounding transaction
// rolls back the purchase.
func insertName(ctx context.Context, ex db.Executor, name, owner string) (*types.Name, error) {
	row := ex.QueryRow(ctx,
		`INSERT INTO names (name, owner, original_owner) VALUES ($1, $2, $2) RETURNING `+nameColumns,
		name, owner)
	n, err := scanName(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, api.ErrNameTaken(name)
		}
		return nil, err
	}
	return n, nil
}

func updateNameMetadata(ctx context.Context, ex db.Executor, name string, a *string) (*types.Name, error) {
	row := ex.QueryRow(ctx,
		`UPDATE names SET metadata = $2, last_updated = now() WHERE name = $1 RETURNING `+nameColumns,
		name, a)
	n, err := scanName(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func transferNameOwnership(ctx context.Context, ex db.Executor, name, newOwner string) (*types.Name, error) {
	row := ex.QueryRow(ctx,
		`UPDATE names SET owner = $2, last_updated = now(), last_transferred = now()
		 WHERE name = $1 RETURNING `+nameColumns,
		name, newOwner)
	n, err := scanName(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return n, err
}
