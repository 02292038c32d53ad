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
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/core/types"
	"github.com/reconnectedcc/go-kromer/crypto"
	"github.com/reconnectedcc/go-kromer/event"
	"github.com/reconnectedcc/go-kromer/params"
)

// Ledger is the concrete api.Backend. All state lives in Postgres; the
// process holds no shadow copy of any balance.
type Ledger struct {
	pool *pgxpool.Pool
	feed *event.Feed[api.WebSocketEvent]
	log  *zap.Logger
}

var _ api.Backend = (*Ledger)(nil)

// NewLedger wires the ledger to its pool and broadcast feed.
func NewLedger(pool *pgxpool.Pool, feed *event.Feed[api.WebSocketEvent], log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{pool: pool, feed: feed, log: log.Named("ledger")}
}

// Feed exposes the broadcast feed for the WebSocket layer to subscribe on.
func (l *Ledger) Feed() *event.Feed[api.WebSocketEvent] { return l.feed }

func (l *Ledger) publish(ev api.WebSocketEvent) {
	if l.feed != nil {
		l.feed.Send(ev)
	}
}

// Login verifies a private key, creating the wallet on first sight
// (auto-registration). Authed reports whether the key matches the stored
// hash; the caller decides whether to trust the result.
func (l *Ledger) Login(ctx context.Context, privateKey string) (*types.AuthResult, error) {
	address := crypto.MakeV2Address(privateKey, params.AddressPrefix)
	hash := crypto.Sha256Hex(address + privateKey)

	wallet, err := fetchWalletByAddress(ctx, l.pool, address)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		wallet, err = createWallet(ctx, l.pool, address, hash)
		if err != nil {
			return nil, err
		}
		l.log.Info("auto-registered wallet", zap.String("address", address))
	}

	authed := wallet.PrivateKeyHash != nil && *wallet.PrivateKeyHash == hash
	return &types.AuthResult{Authed: authed, Wallet: wallet}, nil
}

func (l *Ledger) WalletByAddress(ctx context.Context, address string, fetchNames bool) (*types.Wallet, error) {
	w, err := fetchWalletByAddress(ctx, l.pool, address)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, api.ErrAddressNotFound(address)
	}
	if fetchNames {
		n, err := countNamesByOwner(ctx, l.pool, address)
		if err != nil {
			return nil, err
		}
		w.Names = &n
	}
	return w, nil
}

func (l *Ledger) Wallets(ctx context.Context, p api.Pagination) ([]types.Wallet, int64, error) {
	wallets, err := fetchWallets(ctx, l.pool, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := countWallets(ctx, l.pool)
	if err != nil {
		return nil, 0, err
	}
	return wallets, total, nil
}

func (l *Ledger) RichestWallets(ctx context.Context, p api.Pagination) ([]types.Wallet, int64, error) {
	wallets, err := fetchRichestWallets(ctx, l.pool, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := countWallets(ctx, l.pool)
	if err != nil {
		return nil, 0, err
	}
	return wallets, total, nil
}

func (l *Ledger) LookupWallets(ctx context.Context, addresses []string, fetchNames bool) ([]types.Wallet, error) {
	return lookupWallets(ctx, l.pool, addresses, fetchNames)
}

func (l *Ledger) MoneySupply(ctx context.Context) (decimal.Decimal, error) {
	return moneySupply(ctx, l.pool)
}

func (l *Ledger) TransactionByID(ctx context.Context, id int64) (*types.Transaction, error) {
	t, err := fetchTransactionByID(ctx, l.pool, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, api.ErrTransactionNotFound()
	}
	return t, nil
}

func (l *Ledger) Transactions(ctx context.Context, q api.TransactionQuery) ([]types.Transaction, int64, error) {
	txs, err := fetchTransactions(ctx, l.pool, q, "id ASC")
	if err != nil {
		return nil, 0, err
	}
	total, err := countTransactions(ctx, l.pool, q.ExcludeMined)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (l *Ledger) LatestTransactions(ctx context.Context, q api.TransactionQuery) ([]types.Transaction, int64, error) {
	txs, err := fetchTransactions(ctx, l.pool, q, "date DESC")
	if err != nil {
		return nil, 0, err
	}
	total, err := countTransactions(ctx, l.pool, q.ExcludeMined)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (l *Ledger) AddressTransactions(ctx context.Context, address string, q api.TransactionQuery) ([]types.Transaction, int64, error) {
	if _, err := l.WalletByAddress(ctx, address, false); err != nil {
		return nil, 0, err
	}
	txs, err := fetchAddressTransactions(ctx, l.pool, address, q)
	if err != nil {
		return nil, 0, err
	}
	total, err := countAddressTransactions(ctx, l.pool, address, q.ExcludeMined)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// MakeTransfer moves funds between two wallets. Recipient resolution accepts
// a plain address or a name-routed target (meta@name.kro); the stored row
// always carries the owner address in "to".
func (l *Ledger) MakeTransfer(ctx context.Context, privateKey, to string, amount decimal.Decimal, metadata *string) (*types.Transaction, error) {
	amount = amount.RoundBank(2)
	if amount.Sign() <= 0 {
		return nil, api.ErrInvalidParameter("amount")
	}
	to = strings.TrimSpace(to)
	if to == "" || len(to) > 64 {
		return nil, api.ErrInvalidParameter("to")
	}

	auth, err := l.Login(ctx, privateKey)
	if err != nil {
		return nil, err
	}
	if !auth.Authed {
		return nil, api.ErrAuthFailed()
	}
	sender := auth.Wallet

	data := types.TransactionCreateData{
		From:     sender.Address,
		Amount:   amount,
		Metadata: metadata,
		Type:     types.TxTransfer,
	}

	if types.IsNameRecipient(to) {
		parsed := types.ParseTransactionName(to)
		name, err := fetchNameByName(ctx, l.pool, *parsed.Name)
		if err != nil {
			return nil, err
		}
		if name == nil {
			return nil, api.ErrNameNotFound(*parsed.Name)
		}
		data.To = name.Owner
		data.SentMetaname = parsed.Metaname
		data.SentName = parsed.Name
	} else {
		if !types.IsValidAddress(to) {
			return nil, api.ErrInvalidParameter("to")
		}
		recipient, err := fetchWalletByAddress(ctx, l.pool, to)
		if err != nil {
			return nil, err
		}
		if recipient == nil {
			return nil, api.ErrAddressNotFound(to)
		}
		data.To = recipient.Address
	}

	if data.To == sender.Address {
		return nil, api.ErrSameWalletTransfer()
	}
	if !sender.IsWelfare() && sender.Balance.LessThan(amount) {
		return nil, api.ErrInsufficientFunds()
	}

	tx, err := l.createTransaction(ctx, data)
	if err != nil {
		return nil, err
	}
	l.publish(api.NewTransactionEvent(api.NewTransactionJSON(tx)))
	return tx, nil
}

// createTransaction is the atomic transfer unit: lock both wallets, assert
// funds, apply the two balance deltas, insert the row. Any failure rolls the
// whole unit back.
func (l *Ledger) createTransaction(ctx context.Context, data types.TransactionCreateData) (*types.Transaction, error) {
	var out *types.Transaction
	err := pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		// Rows are locked in address order so two opposite concurrent
		// transfers cannot deadlock on each other.
		locked := make(map[string]*types.Wallet, 2)
		first, second := lockOrder(data.From, data.To)
		for _, addr := range []string{first, second} {
			w, err := fetchWalletForUpdate(ctx, tx, addr)
			if err != nil {
				return err
			}
			if w != nil {
				locked[addr] = w
			}
		}
		sender := locked[data.From]
		if sender == nil {
			return api.ErrAddressNotFound(data.From)
		}
		// The recipient can be the literal "name" counterparty of a
		// purchase, which has no wallet row; only what exists was locked.
		recipient := locked[data.To]
		if !sender.IsWelfare() && sender.Balance.LessThan(data.Amount) {
			return api.ErrInsufficientFunds()
		}
		if _, err := updateBalance(ctx, tx, sender.Address, data.Amount.Neg()); err != nil {
			return err
		}
		if recipient != nil {
			if _, err := updateBalance(ctx, tx, recipient.Address, data.Amount); err != nil {
				return err
			}
		}
		var err error
		out, err = insertTransaction(ctx, tx, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) NameByName(ctx context.Context, name string) (*types.Name, error) {
	name = strings.ToLower(name)
	if !types.IsValidName(name, true) {
		return nil, api.ErrInvalidParameter("name")
	}
	n, err := fetchNameByName(ctx, l.pool, name)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, api.ErrNameNotFound(name)
	}
	return n, nil
}

func (l *Ledger) Names(ctx context.Context, p api.Pagination) ([]types.Name, int64, error) {
	names, err := fetchNames(ctx, l.pool, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := countNames(ctx, l.pool)
	if err != nil {
		return nil, 0, err
	}
	return names, total, nil
}

func (l *Ledger) NamesByOwner(ctx context.Context, owner string, p api.Pagination) ([]types.Name, int64, error) {
	names, err := fetchNamesByOwner(ctx, l.pool, owner, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := countNamesByOwner(ctx, l.pool, owner)
	if err != nil {
		return nil, 0, err
	}
	return names, total, nil
}

func (l *Ledger) UnpaidNames(ctx context.Context, p api.Pagination) ([]types.Name, int64, error) {
	names, err := fetchUnpaidNames(ctx, l.pool, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := countUnpaidNames(ctx, l.pool)
	if err != nil {
		return nil, 0, err
	}
	return names, total, nil
}

func (l *Ledger) UnpaidNameCount(ctx context.Context) (int64, error) {
	return countUnpaidNames(ctx, l.pool)
}

// NameAvailable checks a name without requiring it to be registrable:
// punycode names are accepted here so existing registrations stay queryable.
func (l *Ledger) NameAvailable(ctx context.Context, name string) (bool, error) {
	name = strings.ToLower(name)
	if !types.IsValidName(name, true) {
		return false, api.ErrInvalidParameter("name")
	}
	n, err := fetchNameByName(ctx, l.pool, name)
	if err != nil {
		return false, err
	}
	return n == nil, nil
}

// RegisterName purchases a name for the key holder. The purchase row, the
// balance debit and the name insert commit together; a taken name rolls back
// the charge.
func (l *Ledger) RegisterName(ctx context.Context, privateKey, name string) (*types.Name, error) {
	name = strings.ToLower(name)
	if !types.IsValidName(name, false) {
		return nil, api.ErrInvalidParameter("name")
	}
	auth, err := l.Login(ctx, privateKey)
	if err != nil {
		return nil, err
	}
	if !auth.Authed {
		return nil, api.ErrAuthFailed()
	}
	sender := auth.Wallet

	cost := decimal.NewFromInt(params.NameCost)
	if !sender.IsWelfare() && sender.Balance.LessThan(cost) {
		return nil, api.ErrInsufficientFunds()
	}

	var registered *types.Name
	var purchase *types.Transaction
	err = pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		locked, err := fetchWalletForUpdate(ctx, tx, sender.Address)
		if err != nil {
			return err
		}
		if !locked.IsWelfare() && locked.Balance.LessThan(cost) {
			return api.ErrInsufficientFunds()
		}
		if _, err := updateBalance(ctx, tx, locked.Address, cost.Neg()); err != nil {
			return err
		}
		purchase, err = insertTransaction(ctx, tx, types.TransactionCreateData{
			From:   locked.Address,
			To:     "name",
			Amount: cost,
			Name:   &name,
			Type:   types.TxNamePurchase,
		})
		if err != nil {
			return err
		}
		registered, err = insertName(ctx, tx, name, locked.Address)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.publish(api.NewTransactionEvent(api.NewTransactionJSON(purchase)))
	l.publish(api.NewNameEvent(api.NewNameJSON(registered)))
	return registered, nil
}

// TransferName hands a name to another wallet and records an amount-zero
// name_transfer row.
func (l *Ledger) TransferName(ctx context.Context, privateKey, name, newOwner string) (*types.Name, error) {
	name = strings.ToLower(name)
	if !types.IsValidName(name, false) {
		return nil, api.ErrInvalidParameter("name")
	}
	if !types.IsValidAddress(newOwner) {
		return nil, api.ErrInvalidParameter("address")
	}

	auth, err := l.Login(ctx, privateKey)
	if err != nil {
		return nil, err
	}
	if !auth.Authed {
		return nil, api.ErrAuthFailed()
	}

	current, err := fetchNameByName(ctx, l.pool, name)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, api.ErrNameNotFound(name)
	}
	if current.Owner != auth.Wallet.Address {
		return nil, api.ErrNotNameOwner(name)
	}

	recipient, err := fetchWalletByAddress(ctx, l.pool, newOwner)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, api.ErrAddressNotFound(newOwner)
	}

	var transferred *types.Name
	var record *types.Transaction
	err = pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		transferred, err = transferNameOwnership(ctx, tx, name, recipient.Address)
		if err != nil {
			return err
		}
		if transferred == nil {
			return api.ErrNameNotFound(name)
		}
		record, err = insertTransaction(ctx, tx, types.TransactionCreateData{
			From:   current.Owner,
			To:     recipient.Address,
			Amount: decimal.Zero,
			Name:   &name,
			Type:   types.TxNameTransfer,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	l.publish(api.NewTransactionEvent(api.NewTransactionJSON(record)))
	l.publish(api.NewNameEvent(api.NewNameJSON(transferred)))
	return transferred, nil
}

// UpdateNameData sets or clears the name's data record. An unchanged value
// short-circuits without touching the row.
func (l *Ledger) UpdateNameData(ctx context.Context, privateKey, name string, a *string) (*types.Name, error) {
	name = strings.ToLower(name)
	if !types.IsValidName(name, false) {
		return nil, api.ErrInvalidParameter("name")
	}
	if a != nil {
		trimmed := strings.TrimSpace(*a)
		if trimmed == "" {
			a = nil
		} else {
			if !types.IsValidARecord(trimmed) {
				return nil, api.ErrInvalidParameter("a")
			}
			a = &trimmed
		}
	}

	auth, err := l.Login(ctx, privateKey)
	if err != nil {
		return nil, err
	}
	if !auth.Authed {
		return nil, api.ErrAuthFailed()
	}

	current, err := fetchNameByName(ctx, l.pool, name)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, api.ErrNameNotFound(name)
	}
	if current.Owner != auth.Wallet.Address {
		return nil, api.ErrNotNameOwner(name)
	}

	if equalStringPtr(current.Metadata, a) {
		return current, nil
	}

	updated, err := updateNameMetadata(ctx, l.pool, name, a)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, api.ErrNameNotFound(name)
	}
	l.publish(api.NewNameEvent(api.NewNameJSON(updated)))
	return updated, nil
}

// lockOrder returns the two addresses in the global row-locking order.
func lockOrder(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CreatePlayerWallet provisions a wallet for an external player identity:
// fresh private key, wallet row, initial grant of 100 with a mined
// bookkeeping row, and the player link. Returns the private key exactly once.
func (l *Ledger) CreatePlayerWallet(ctx context.Context, playerID uuid.UUID, playerName string) (*types.Wallet, string, error) {
	privateKey := crypto.RandomPassword()
	address := crypto.MakeV2Address(privateKey, params.AddressPrefix)
	hash := crypto.Sha256Hex(address + privateKey)

	initial := decimal.NewFromInt(100)
	welfare := params.WelfareAddress

	var wallet *types.Wallet
	err := pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		if err := upsertPlayer(ctx, tx, playerID, playerName); err != nil {
			return err
		}
		created, err := createWallet(ctx, tx, address, hash)
		if err != nil {
			return err
		}
		wallet, err = updateBalance(ctx, tx, address, initial)
		if err != nil {
			return err
		}
		if _, err := insertTransaction(ctx, tx, types.TransactionCreateData{
			From:   welfare,
			To:     address,
			Amount: initial,
			Type:   types.TxMined,
		}); err != nil {
			return err
		}
		return linkPlayerWallet(ctx, tx, playerID, created.ID)
	})
	if err != nil {
		return nil, "", err
	}
	l.log.Info("created player wallet",
		zap.String("player", playerID.String()),
		zap.String("address", address))
	return wallet, privateKey, nil
}

// GiveMoney grants funds from the welfare pool: explicit balance update plus
// a bookkeeping row that moves no balance itself.
func (l *Ledger) GiveMoney(ctx context.Context, address string, amount decimal.Decimal) (*types.Wallet, error) {
	amount = amount.RoundBank(2)
	if amount.Sign() <= 0 {
		return nil, api.ErrInvalidParameter("amount")
	}
	target, err := fetchWalletByAddress(ctx, l.pool, address)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, api.ErrAddressNotFound(address)
	}

	var wallet *types.Wallet
	var record *types.Transaction
	err = pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		wallet, err = updateBalance(ctx, tx, address, amount)
		if err != nil {
			return err
		}
		record, err = insertTransaction(ctx, tx, types.TransactionCreateData{
			From:   params.WelfareAddress,
			To:     address,
			Amount: amount,
			Type:   types.TxMined,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	l.publish(api.NewTransactionEvent(api.NewTransactionJSON(record)))
	return wallet, nil
}

func (l *Ledger) WalletsByPlayer(ctx context.Context, playerID uuid.UUID) ([]types.Wallet, error) {
	return fetchPlayerWallets(ctx, l.pool, playerID)
}
