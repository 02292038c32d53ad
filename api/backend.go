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

package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reconnectedcc/go-kromer/core/types"
)

// Backend is everything the HTTP and WebSocket surfaces need from the
// ledger. The concrete implementation lives in core; handler tests substitute
// a fake.
type Backend interface {
	// Wallets.
	WalletByAddress(ctx context.Context, address string, fetchNames bool) (*types.Wallet, error)
	Wallets(ctx context.Context, p Pagination) ([]types.Wallet, int64, error)
	RichestWallets(ctx context.Context, p Pagination) ([]types.Wallet, int64, error)
	LookupWallets(ctx context.Context, addresses []string, fetchNames bool) ([]types.Wallet, error)
	Login(ctx context.Context, privateKey string) (*types.AuthResult, error)
	MoneySupply(ctx context.Context) (decimal.Decimal, error)

	// Transactions.
	TransactionByID(ctx context.Context, id int64) (*types.Transaction, error)
	Transactions(ctx context.Context, q TransactionQuery) ([]types.Transaction, int64, error)
	LatestTransactions(ctx context.Context, q TransactionQuery) ([]types.Transaction, int64, error)
	AddressTransactions(ctx context.Context, address string, q TransactionQuery) ([]types.Transaction, int64, error)
	MakeTransfer(ctx context.Context, privateKey, to string, amount decimal.Decimal, metadata *string) (*types.Transaction, error)

	// Names.
	NameByName(ctx context.Context, name string) (*types.Name, error)
	Names(ctx context.Context, p Pagination) ([]types.Name, int64, error)
	NamesByOwner(ctx context.Context, owner string, p Pagination) ([]types.Name, int64, error)
	UnpaidNames(ctx context.Context, p Pagination) ([]types.Name, int64, error)
	UnpaidNameCount(ctx context.Context) (int64, error)
	NameAvailable(ctx context.Context, name string) (bool, error)
	RegisterName(ctx context.Context, privateKey, name string) (*types.Name, error)
	TransferName(ctx context.Context, privateKey, name, newOwner string) (*types.Name, error)
	UpdateNameData(ctx context.Context, privateKey, name string, a *string) (*types.Name, error)

	// Internal surface (Kromer-Key).
	CreatePlayerWallet(ctx context.Context, playerID uuid.UUID, playerName string) (*types.Wallet, string, error)
	GiveMoney(ctx context.Context, address string, amount decimal.Decimal) (*types.Wallet, error)
	WalletsByPlayer(ctx context.Context, playerID uuid.UUID) ([]types.Wallet, error)
}
