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

// Block exists for wire compatibility. No blocks are ever mined; the MOTD
// may still carry a last_block field for clients that expect one.
type Block struct {
	Height    int64  `json:"height"`
	Address   string `json:"address"`
	Hash      string `json:"hash"`
	ShortHash string `json:"short_hash"`
	Value     int64  `json:"value"`
	Time      string `json:"time"`
}

// Event names on the wire.
const (
	EventTransaction = "transaction"
	EventName        = "name"
	EventBlock       = "block"
)

// WebSocketEvent is the broadcast payload. Exactly one of the pointer fields
// is set, matching Event.
type WebSocketEvent struct {
	Type  string `json:"type"`
	Event string `json:"event"`

	Transaction *TransactionJSON `json:"transaction,omitempty"`
	Name        *NameJSON        `json:"name,omitempty"`
	Block       *Block           `json:"block,omitempty"`
	NewWork     *int             `json:"new_work,omitempty"`
}

// NewTransactionEvent wraps a committed transaction for fan-out.
func NewTransactionEvent(t TransactionJSON) WebSocketEvent {
	return WebSocketEvent{Type: "event", Event: EventTransaction, Transaction: &t}
}

// NewNameEvent wraps a name mutation for fan-out.
func NewNameEvent(n NameJSON) WebSocketEvent {
	return WebSocketEvent{Type: "event", Event: EventName, Name: &n}
}
