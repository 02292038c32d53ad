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

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the persisted transaction kind. The string values are
// the snake_case wire and database enum representation.
type TransactionType string

const (
	TxMined        TransactionType = "mined"
	TxUnknown      TransactionType = "unknown"
	TxNamePurchase TransactionType = "name_purchase"
	TxNameARecord  TransactionType = "name_a_record"
	TxNameTransfer TransactionType = "name_transfer"
	TxTransfer     TransactionType = "transfer"
)

// ParseTransactionType maps a stored string onto a known kind, defaulting to
// TxUnknown for anything unrecognized.
func ParseTransactionType(s string) TransactionType {
	switch TransactionType(s) {
	case TxMined, TxNamePurchase, TxNameARecord, TxNameTransfer, TxTransfer:
		return TransactionType(s)
	default:
		return TxUnknown
	}
}

// Transaction is an append-only ledger entry. From is nullable to admit
// historical rows imported without a sender.
type Transaction struct {
	ID           int64           `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	From         *string         `json:"from"`
	To           string          `json:"to"`
	Metadata     *string         `json:"metadata,omitempty"`
	Name         *string         `json:"name,omitempty"`
	SentMetaname *string         `json:"sent_metaname,omitempty"`
	SentName     *string         `json:"sent_name,omitempty"`
	Type         TransactionType `json:"type"`
	Date         time.Time       `json:"date"`
}

// TransactionCreateData carries the fields for a new ledger entry into the
// store layer.
type TransactionCreateData struct {
	From         string
	To           string
	Amount       decimal.Decimal
	Metadata     *string
	Name         *string
	SentMetaname *string
	SentName     *string
	Type         TransactionType
}

// TransactionNameData is the parsed form of a name-routed recipient such as
// "meta@name.kro". Both fields are nil when the input does not match.
type TransactionNameData struct {
	Metaname *string
	Name     *string
}

// ParseTransactionName extracts the metaname and name from a CommonMeta
// recipient. An empty or non-matching input yields the zero value.
func ParseTransactionName(input string) TransactionNameData {
	if input == "" {
		return TransactionNameData{}
	}
	m := nameMetaRe.FindStringSubmatch(input)
	if m == nil {
		return TransactionNameData{}
	}
	var data TransactionNameData
	if m[1] != "" {
		meta := m[1]
		data.Metaname = &meta
	}
	name := m[2]
	data.Name = &name
	return data
}
