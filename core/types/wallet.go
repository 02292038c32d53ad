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

// Package types contains the ledger entities and the validation helpers for
// the identifiers that appear on the wire.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Krist clients expect balances and amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Wallet is the authoritative row holding an address's balance. The private
// key is never stored; only sha256(address || privateKey) is kept for
// authentication.
type Wallet struct {
	ID             int64           `json:"id"`
	Address        string          `json:"address"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	Locked         bool            `json:"locked"`
	TotalIn        decimal.Decimal `json:"total_in"`
	TotalOut       decimal.Decimal `json:"total_out"`
	PrivateKeyHash *string         `json:"-"`

	// Names is the owned-name count, populated only by lookups that were
	// asked to fetch it.
	Names *int64 `json:"names,omitempty"`
}

// IsWelfare reports whether the wallet is the reserved mint/sink. Debits from
// it are exempt from the non-negative balance invariant.
func (w *Wallet) IsWelfare() bool {
	return w.Address == welfareAddress
}

// AuthResult is returned by private-key verification. Wallet is always set;
// Authed tells the caller whether the key matched the stored hash.
type AuthResult struct {
	Authed bool
	Wallet *Wallet
}

// Player maps an external identity (a Minecraft UUID) to its owned wallets.
type Player struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	OwnedWallets []int64 `json:"owned_wallets"`
}
