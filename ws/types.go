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

// Package ws implements the WebSocket subsystem: the token handshake, the
// session registry, the gateway upgrade with its heartbeat, inbound frame
// dispatch and broadcast fan-out of ledger events.
package ws

import (
	"github.com/shopspring/decimal"

	"github.com/reconnectedcc/go-kromer/api"
)

// GuestIdentity is the address of an unauthenticated session.
const GuestIdentity = "guest"

// SubscriptionType is one broadcast channel a session can listen on. The
// string values are the exact wire names.
type SubscriptionType string

const (
	SubBlocks          SubscriptionType = "blocks"
	SubOwnBlocks       SubscriptionType = "ownBlocks"
	SubTransactions    SubscriptionType = "transactions"
	SubOwnTransactions SubscriptionType = "ownTransactions"
	SubNames           SubscriptionType = "names"
	SubOwnNames        SubscriptionType = "ownNames"
	SubMOTD            SubscriptionType = "motd"
)

var validSubscriptions = []SubscriptionType{
	SubBlocks, SubOwnBlocks, SubTransactions, SubOwnTransactions,
	SubNames, SubOwnNames, SubMOTD,
}

// ParseSubscriptionType maps a wire name onto the closed set.
func ParseSubscriptionType(s string) (SubscriptionType, bool) {
	for _, sub := range validSubscriptions {
		if string(sub) == s {
			return sub, true
		}
	}
	return "", false
}

// ValidSubscriptionLevels lists every wire name, for the
// get_valid_subscription_levels response.
func ValidSubscriptionLevels() []string {
	out := make([]string, len(validSubscriptions))
	for i, sub := range validSubscriptions {
		out[i] = string(sub)
	}
	return out
}

// inboundMessage is the union of every client frame. Unknown types fall
// through dispatch to an invalid_message_type error.
type inboundMessage struct {
	Type string `json:"type"`
	ID   *int64 `json:"id"`

	Address    string `json:"address"`
	FetchNames bool   `json:"fetchNames"`
	PrivateKey string `json:"privatekey"`
	Event      string `json:"event"`

	To       string          `json:"to"`
	Amount   decimal.Decimal `json:"amount"`
	Metadata *string         `json:"metadata"`
}

// responseHeader is embedded in every per-request reply.
type responseHeader struct {
	OK           bool   `json:"ok"`
	ID           *int64 `json:"id,omitempty"`
	Type         string `json:"type"`
	RespondingTo string `json:"responding_to"`
}

func respondTo(msg *inboundMessage) responseHeader {
	return responseHeader{OK: true, ID: msg.ID, Type: "response", RespondingTo: msg.Type}
}

type errorFrame struct {
	OK      bool   `json:"ok"`
	ID      *int64 `json:"id,omitempty"`
	Type    string `json:"type"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newErrorFrame(id *int64, err *api.Error) errorFrame {
	return errorFrame{
		ID:      id,
		Type:    "error",
		Error:   string(err.Kind),
		Message: err.Message,
	}
}

type helloFrame struct {
	OK   bool   `json:"ok"`
	Type string `json:"type"`
	*api.DetailedMOTD
}

type keepaliveFrame struct {
	Type       string `json:"type"`
	ServerTime string `json:"server_time"`
}

type meResponse struct {
	responseHeader
	IsGuest bool             `json:"is_guest"`
	Address *api.AddressJSON `json:"address,omitempty"`
}

type addressResponse struct {
	responseHeader
	Address api.AddressJSON `json:"address"`
}

type loginResponse struct {
	responseHeader
	IsGuest bool             `json:"is_guest"`
	Address *api.AddressJSON `json:"address,omitempty"`
}

type subscriptionResponse struct {
	responseHeader
	SubscriptionLevel []string `json:"subscription_level"`
}

type validLevelsResponse struct {
	responseHeader
	ValidSubscriptionLevels []string `json:"valid_subscription_levels"`
}

type transactionResponse struct {
	responseHeader
	Transaction api.TransactionJSON `json:"transaction"`
}
