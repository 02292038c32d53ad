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

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/core/types"
	"github.com/reconnectedcc/go-kromer/db"
)

const txColumns = `id, amount, "from", "to", metadata, name, sent_metaname, sent_name, type, date`

func scanTransaction(row pgx.Row) (*types.Transaction, error) {
	var t types.Transaction
	var kind string
	err := row.Scan(&t.ID, &t.Amount, &t.From, &t.To, &t.Metadata, &t.Name,
		&t.SentMetaname, &t.SentName, &kind, &t.Date)
	if err != nil {
		return nil, err
	}
	t.Type = types.ParseTransactionType(kind)
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]types.Transaction, error) {
	defer rows.Close()
	var out []types.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// insertTransaction writes a ledger row without touching any balance. Balance
// movement, when required, happens separately through updateBalance inside
// the same database transaction.
func insertTransaction(ctx context.Context, ex db.Executor, data types.TransactionCreateData) (*types.Transaction, error) {
	row := ex.QueryRow(ctx,
		`INSERT INTO transactions (amount, "from", "to", metadata, name, sent_metaname, sent_name, type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::transaction_type)
		 RETURNING `+txColumns,
		data.Amount, data.From, data.To, data.Metadata, data.Name,
		data.SentMetaname, data.SentName, string(data.Type))
	return scanTransaction(row)
}

func fetchTransactionByID(ctx context.Context, ex db.Executor, id int64) (*types.Transaction, error) {
	row := ex.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func fetchTransactions(ctx context.Context, ex db.Executor, q api.TransactionQuery, orderBy string) ([]types.Transaction, error) {
	b := psql.
		Select("id", "amount", `"from"`, `"to"`, "metadata", "name",
			"sent_metaname", "sent_name", "type", "date").
		From("transactions")
	if q.ExcludeMined {
		b = b.Where(sq.NotEq{"type": "mined"})
	}
	query, args, err := b.
		OrderBy(orderBy).
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func countTransactions(ctx context.Context, ex db.Executor, excludeMined bool) (int64, error) {
	b := psql.Select("COUNT(*)").From("transactions")
	if excludeMined {
		b = b.Where(sq.NotEq{"type": "mined"})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	err = ex.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func fetchAddressTransactions(ctx context.Context, ex db.Executor, address string, q api.TransactionQuery) ([]types.Transaction, error) {
	b := psql.
		Select("id", "amount", `"from"`, `"to"`, "metadata", "name",
			"sent_metaname", "sent_name", "type", "date").
		From("transactions").
		Where(sq.Or{sq.Eq{`"from"`: address}, sq.Eq{`"to"`: address}})
	if q.ExcludeMined {
		b = b.Where(sq.NotEq{"type": "mined"})
	}
	query, args, err := b.
		OrderBy("date DESC").
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func countAddressTransactions(ctx context.Context, ex db.Executor, address string, excludeMined bool) (int64, error) {
	b := psql.Select("COUNT(*)").From("transactions").
		Where(sq.Or{sq.Eq{`"from"`: address}, sq.Eq{`"to"`: address}})
	if excludeMined {
		b = b.Where(sq.NotEq{"type": "mined"})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	err = ex.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}
