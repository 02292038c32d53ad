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

// Package api defines the Krist-compatible wire contract: response envelopes,
// the error taxonomy, pagination, the MOTD descriptor and the Backend
// interface the HTTP and WebSocket surfaces are served from.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the wire error code. The ledger returns *Error values carrying
// a kind; the transport layers translate kind to HTTP status here and nowhere
// else.
type ErrorKind string

const (
	KindInvalidParameter      ErrorKind = "invalid_parameter"
	KindMissingParameter      ErrorKind = "missing_parameter"
	KindAuthFailed            ErrorKind = "auth_failed"
	KindAddressNotFound       ErrorKind = "address_not_found"
	KindNameNotFound          ErrorKind = "name_not_found"
	KindNameTaken             ErrorKind = "name_taken"
	KindNotNameOwner          ErrorKind = "not_name_owner"
	KindInsufficientFunds     ErrorKind = "insufficient_funds"
	KindSameWalletTransfer    ErrorKind = "same_wallet_transfer"
	KindTransactionNotFound   ErrorKind = "transaction_not_found"
	KindTransactionsDisabled  ErrorKind = "transactions_disabled"
	KindTransactionConflict   ErrorKind = "transaction_conflict"
	KindInvalidWebsocketToken ErrorKind = "invalid_websocket_token"
	KindRouteNotFound         ErrorKind = "route_not_found"
	KindUnauthorized          ErrorKind = "unauthorized"
	KindInternal              ErrorKind = "internal_server_error"

	// WebSocket-only kinds. These never reach an HTTP response.
	KindMessageTooLong     ErrorKind = "message_too_long"
	KindMiningDisabled     ErrorKind = "mining_disabled"
	KindInvalidMessageType ErrorKind = "invalid_message_type"
	KindSyntaxError        ErrorKind = "syntax_error"
)

// Error is a typed domain error. Message is the human-readable wire text.
type Error struct {
	Kind    ErrorKind
	Message string
	Info    string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// HTTPStatus maps the kind onto its HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidParameter, KindMissingParameter, KindSameWalletTransfer,
		KindInvalidWebsocketToken, KindMessageTooLong, KindMiningDisabled,
		KindInvalidMessageType, KindSyntaxError:
		return http.StatusBadRequest
	case KindAuthFailed, KindNotNameOwner, KindUnauthorized:
		return http.StatusUnauthorized
	case KindInsufficientFunds:
		return http.StatusForbidden
	case KindAddressNotFound, KindNameNotFound, KindTransactionNotFound,
		KindRouteNotFound:
		return http.StatusNotFound
	case KindNameTaken, KindTransactionConflict:
		return http.StatusConflict
	case KindTransactionsDisabled:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// Envelope renders the error as the wire body.
func (e *Error) Envelope() ErrorResponse {
	resp := ErrorResponse{Error: string(e.Kind), Message: e.Message}
	if e.Info != "" {
		info := e.Info
		resp.Info = &info
	}
	return resp
}

// AsError classifies err. Unexpected errors (database, IO) collapse to
// internal_server_error; the original error is for the caller to log, never
// for the wire.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal()
}

func ErrInvalidParameter(field string) *Error {
	return &Error{Kind: KindInvalidParameter, Message: fmt.Sprintf("Invalid parameter %s", field), Info: field}
}

func ErrMissingParameter(field string) *Error {
	return &Error{Kind: KindMissingParameter, Message: fmt.Sprintf("Missing parameter %s", field), Info: field}
}

func ErrAuthFailed() *Error {
	return &Error{Kind: KindAuthFailed, Message: "Authentication failed"}
}

func ErrAddressNotFound(address string) *Error {
	return &Error{Kind: KindAddressNotFound, Message: fmt.Sprintf("Address %s not found", address)}
}

func ErrNameNotFound(name string) *Error {
	return &Error{Kind: KindNameNotFound, Message: fmt.Sprintf("Name %s not found", name)}
}

func ErrNameTaken(name string) *Error {
	return &Error{Kind: KindNameTaken, Message: fmt.Sprintf("Name %s is already taken", name)}
}

func ErrNotNameOwner(name string) *Error {
	return &Error{Kind: KindNotNameOwner, Message: fmt.Sprintf("You are not the owner of %s", name)}
}

func ErrInsufficientFunds() *Error {
	return &Error{Kind: KindInsufficientFunds, Message: "Insufficient funds"}
}

func ErrSameWalletTransfer() *Error {
	return &Error{Kind: KindSameWalletTransfer, Message: "Cannot send funds to the sending wallet"}
}

func ErrTransactionNotFound() *Error {
	return &Error{Kind: KindTransactionNotFound, Message: "Transaction not found"}
}

func ErrTransactionsDisabled() *Error {
	return &Error{Kind: KindTransactionsDisabled, Message: "Transactions are disabled"}
}

func ErrTransactionConflict(parameter string) *Error {
	return &Error{Kind: KindTransactionConflict, Message: fmt.Sprintf("Transaction conflict on %s", parameter), Info: parameter}
}

func ErrInvalidWebsocketToken() *Error {
	return &Error{Kind: KindInvalidWebsocketToken, Message: "Invalid websocket token"}
}

func ErrRouteNotFound() *Error {
	return &Error{Kind: KindRouteNotFound, Message: "Route not found"}
}

func ErrUnauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func ErrInternal() *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error"}
}

func ErrMessageTooLong() *Error {
	return &Error{Kind: KindMessageTooLong, Message: "Message too long"}
}

func ErrMiningDisabled() *Error {
	return &Error{Kind: KindMiningDisabled, Message: "Mining is disabled"}
}

func ErrInvalidMessageType() *Error {
	return &Error{Kind: KindInvalidMessageType, Message: "Invalid message type"}
}

func ErrSyntaxError() *Error {
	return &Error{Kind: KindSyntaxError, Message: "Syntax error"}
}
