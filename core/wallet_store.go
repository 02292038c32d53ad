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

// Package core implements the Kromer ledger: every read and every
// state-mutating operation behind the api.Backend interface, with all
// multi-row mutations running inside a database transaction.
package core

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/reconnectedcc/go-kromer/core/types"
	"github.com/reconnectedcc/go-kromer/db"
	"github.com/reconnectedcc/go-kromer/params"
)

// psql builds queries with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const walletColumns = `id, address, balance, created_at, locked, total_in, total_out, private_key_hash`

func scanWallet(row pgx.Row) (*types.Wallet, error) {
	var w types.Wallet
	err := row.Scan(&w.ID, &w.Address, &w.Balance, &w.CreatedAt, &w.Locked,
		&w.TotalIn, &w.TotalOut, &w.PrivateKeyHash)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func collectWallets(rows pgx.Rows) ([]types.Wallet, error) {
	defer rows.Close()
	var out []types.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// fetchWalletByAddress returns (nil, nil) on a miss so callers can decide
// between auto-registration and a not-found error.
func fetchWalletByAddress(ctx context.Context, ex db.Executor, address string) (*types.Wallet, error) {
	row := ex.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = $1`, address)
	w, err := scanWallet(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return w, err
}

// fetchWalletForUpdate locks the row for the duration of the surrounding
// transaction.
func fetchWalletForUpdate(ctx context.Context, ex db.Executor, address string) (*types.Wallet, error) {
	row := ex.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = $1 FOR UPDATE`, address)
	w, err := scanWallet(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return w, err
}

func fetchWallets(ctx context.Context, ex db.Executor, limit, offset int) ([]types.Wallet, error) {
	rows, err := ex.Query(ctx,
		`SELECT `+walletColumns+` FROM wallets ORDER BY id ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectWallets(rows)
}

func fetchRichestWallets(ctx context.Context, ex db.Executor, limit, offset int) ([]types.Wallet, error) {
	rows, err := ex.Query(ctx,
		`SELECT `+walletColumns+` FROM wallets ORDER BY balance DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectWallets(rows)
}

func countWallets(ctx context.Context, ex db.Executor) (int64, error) {
	var n int64
	err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&n)
	return n, err
}

// lookupWallets resolves a batch of addresses, left-joining the owned-name
// count when asked for.
func lookupWallets(ctx context.Context, ex db.Executor, addresses []string, fetchNames bool) ([]types.Wallet, error) {
	if !fetchNames {
		query, args, err := psql.
			Select("id", "address", "balance", "created_at", "locked", "total_in", "total_out", "private_key_hash").
			From("wallets").
			Where(sq.Eq{"address": addresses}).
			ToSql()
		if err != nil {
			return nil, err
		}
		rows, err := ex.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return collectWallets(rows)
	}

	query, args, err := psql.
		Select("w.id", "w.address", "w.balance", "w.created_at", "w.locked",
			"w.total_in", "w.total_out", "w.private_key_hash", "COUNT(n.id)").
		From("wallets w").
		LeftJoin("names n ON n.owner = w.address").
		Where(sq.Eq{"w.address": addresses}).
		GroupBy("w.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Wallet
	for rows.Next() {
		var w types.Wallet
		var names int64
		err := rows.Scan(&w.ID, &w.Address, &w.Balance, &w.CreatedAt, &w.Locked,
			&w.TotalIn, &w.TotalOut, &w.PrivateKeyHash, &names)
		if err != nil {
			return nil, err
		}
		w.Names = &names
		out = append(out, w)
	}
	return out, rows.Err()
}

func createWallet(ctx context.Context, ex db.Executor, address, privateKeyHash string) (*types.Wallet, error) {
	row := ex.QueryRow(ctx,
		`INSERT INTO wallets (address, private_key_hash) VALUES ($1, $2) RETURNING `+walletColumns,
		address, privateKeyHash)
	return scanWallet(row)
}

// updateBalance is the single balance-mutation primitive. total_in and
// total_out accumulate the positive and negative parts of every delta.
func updateBalance(ctx context.Context, ex db.Executor, address string, delta decimal.Decimal) (*types.Wallet, error) {
	row := ex.QueryRow(ctx,
		`UPDATE wallets
		 SET balance = balance + $1,
		     total_in = total_in + GREATEST($1, 0),
		     total_out = total_out + GREATEST(-$1, 0)
		 WHERE address = $2
		 RETURNING `+walletColumns,
		delta, address)
	w, err := scanWallet(row)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("update balance: wallet %s missing", address)
	}
	return w, err
}

// moneySupply sums every balance except the welfare mint/sink.
func moneySupply(ctx context.Context, ex db.Executor) (decimal.Decimal, error) {
	var supply decimal.Decimal
	err := ex.QueryRow(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM wallets WHERE address != $1`,
		params.WelfareAddress).Scan(&supply)
	return supply, err
}
