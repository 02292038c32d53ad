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

	"github.com/google/uuid"

	"github.com/reconnectedcc/go-kromer/core/types"
	"github.com/reconnectedcc/go-kromer/db"
)

// upsertPlayer keeps the stored player name current across renames.
func upsertPlayer(ctx context.Context, ex db.Executor, id uuid.UUID, name string) error {
	_, err := ex.Exec(ctx,
		`INSERT INTO players (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		id, name)
	return err
}

func linkPlayerWallet(ctx context.Context, ex db.Executor, playerID uuid.UUID, walletID int64) error {
	_, err := ex.Exec(ctx,
		`INSERT INTO players_wallets (player_id, wallet_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		playerID, walletID)
	return err
}

func fetchPlayer(ctx context.Context, ex db.Executor, id uuid.UUID) (*types.Player, error) {
	var p types.Player
	err := ex.QueryRow(ctx, `SELECT id, name FROM players WHERE id = $1`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx,
		`SELECT wallet_id FROM players_wallets WHERE player_id = $1 ORDER BY wallet_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var wid int64
		if err := rows.Scan(&wid); err != nil {
			return nil, err
		}
		p.OwnedWallets = append(p.OwnedWallets, wid)
	}
	return &p, rows.Err()
}

func fetchPlayerWallets(ctx context.Context, ex db.Executor, playerID uuid.UUID) ([]types.Wallet, error) {
	rows, err := ex.Query(ctx,
		`SELECT w.id, w.address, w.balance, w.created_at, w.locked, w.total_in, w.total_out, w.private_key_hash
		 FROM wallets w
		 JOIN players_wallets pw ON pw.wallet_id = w.id
		 WHERE pw.player_id = $1
		 ORDER BY w.id`,
		playerID)
	if err != nil {
		return nil, err
	}
	return collectWallets(rows)
}
