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
	"time"

	"github.com/shopspring/decimal"

	"github.com/reconnectedcc/go-kromer/core/types"
)

// OK is embedded in every success envelope.
type OK struct {
	OK bool `json:"ok"`
}

// Success returns the embedded ok:true marker.
func Success() OK { return OK{OK: true} }

// ErrorResponse is the wire error envelope.
type ErrorResponse struct {
	OK      bool    `json:"ok"`
	Error   string  `json:"error"`
	Message string  `json:"message"`
	Info    *string `json:"info,omitempty"`
}

// AddressJSON is the wire view of a wallet. The private key hash never
// leaves the server.
type AddressJSON struct {
	Address   string          `json:"address"`
	Balance   decimal.Decimal `json:"balance"`
	TotalIn   decimal.Decimal `json:"totalin"`
	TotalOut  decimal.Decimal `json:"totalout"`
	FirstSeen time.Time       `json:"firstseen"`
	Names     *int64          `json:"names,omitempty"`
}

func NewAddressJSON(w *types.Wallet) AddressJSON {
	return AddressJSON{
		Address:   w.Address,
		Balance:   w.Balance,
		TotalIn:   w.TotalIn,
		TotalOut:  w.TotalOut,
		FirstSeen: w.CreatedAt,
		Names:     w.Names,
	}
}

// TransactionJSON is the wire view of a ledger entry. Amount travels as
// "value" and the timestamp as "time", per the Krist contract.
type TransactionJSON struct {
	ID           int64           `json:"id"`
	From         *string         `json:"from"`
	To           string          `json:"to"`
	Value        decimal.Decimal `json:"value"`
	Time         time.Time       `json:"time"`
	Name         *string         `json:"name,omitempty"`
	Metadata     *string         `json:"metadata,omitempty"`
	SentMetaname *string         `json:"sent_metaname,omitempty"`
	SentName     *string         `json:"sent_name,omitempty"`
	Type         string          `json:"type"`
}

func NewTransactionJSON(t *types.Transaction) TransactionJSON {
	return TransactionJSON{
		ID:           t.ID,
		From:         t.From,
		To:           t.To,
		Value:        t.Amount,
		Time:         t.Date,
		Name:         t.Name,
		Metadata:     t.Metadata,
		SentMetaname: t.SentMetaname,
		SentName:     t.SentName,
		Type:         string(t.Type),
	}
}

// NameJSON is the wire view of a registered name. "transfered" keeps the
// historical Krist spelling.
type NameJSON struct {
	Name          string          `json:"name"`
	Owner         string          `json:"owner"`
	OriginalOwner string          `json:"original_owner"`
	Registered    time.Time       `json:"registered"`
	Updated       *time.Time      `json:"updated"`
	Transfered    *time.Time      `json:"transfered"`
	A             *string         `json:"a"`
	Unpaid        decimal.Decimal `json:"unpaid"`
}

func NewNameJSON(n *types.Name) NameJSON {
	return NameJSON{
		Name:          n.Name,
		Owner:         n.Owner,
		OriginalOwner: n.OriginalOwner,
		Registered:    n.TimeRegistered,
		Updated:       n.LastUpdated,
		Transfered:    n.LastTransferred,
		A:             n.Metadata,
		Unpaid:        n.Unpaid,
	}
}

type LoginResponse struct {
	OK
	Authed  bool    `json:"authed"`
	Address *string `json:"address,omitempty"`
}

type V2Response struct {
	OK
	Address string `json:"address"`
}

type WalletVersionResponse struct {
	OK
	WalletVersion int `json:"walletVersion"`
}

type SupplyResponse struct {
	OK
	MoneySupply decimal.Decimal `json:"money_supply"`
}

type AddressResponse struct {
	OK
	Address AddressJSON `json:"address"`
}

type AddressListResponse struct {
	OK
	Count     int           `json:"count"`
	Total     int64         `json:"total"`
	Addresses []AddressJSON `json:"addresses"`
}

// LookupResponse maps each requested address to its record, or null for a
// miss.
type LookupResponse struct {
	OK
	Found     int                     `json:"found"`
	NotFound  int                     `json:"notFound"`
	Addresses map[string]*AddressJSON `json:"addresses"`
}

type TransactionResponse struct {
	OK
	Transaction TransactionJSON `json:"transaction"`
}

type TransactionListResponse struct {
	OK
	Count        int               `json:"count"`
	Total        int64             `json:"total"`
	Transactions []TransactionJSON `json:"transactions"`
}

type NameResponse struct {
	OK
	Name NameJSON `json:"name"`
}

type NameListResponse struct {
	OK
	Count int        `json:"count"`
	Total int64      `json:"total"`
	Names []NameJSON `json:"names"`
}

type NameCostResponse struct {
	OK
	NameCost int `json:"name_cost"`
}

type NameCheckResponse struct {
	OK
	Available bool `json:"available"`
}

type NameBonusResponse struct {
	OK
	NameBonus int64 `json:"name_bonus"`
}

type WsStartResponse struct {
	OK
	URL     string `json:"url"`
	Expires int    `json:"expires"`
}

// WalletCreatedResponse is returned by the internal wallet-create endpoint.
// It is the only response that ever carries a private key.
type WalletCreatedResponse struct {
	OK
	Address    AddressJSON `json:"address"`
	PrivateKey string      `json:"private_key"`
}

type PlayerWalletsResponse struct {
	OK
	Wallets []AddressJSON `json:"wallets"`
}
