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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconnectedcc/go-kromer/core/types"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{ErrInvalidParameter("to"), http.StatusBadRequest, "invalid_parameter"},
		{ErrMissingParameter("privatekey"), http.StatusBadRequest, "missing_parameter"},
		{ErrAuthFailed(), http.StatusUnauthorized, "auth_failed"},
		{ErrAddressNotFound("k000000000"), http.StatusNotFound, "address_not_found"},
		{ErrNameNotFound("foo"), http.StatusNotFound, "name_not_found"},
		{ErrNameTaken("foo"), http.StatusConflict, "name_taken"},
		{ErrNotNameOwner("foo"), http.StatusUnauthorized, "not_name_owner"},
		{ErrInsufficientFunds(), http.StatusForbidden, "insufficient_funds"},
		{ErrSameWalletTransfer(), http.StatusBadRequest, "same_wallet_transfer"},
		{ErrTransactionNotFound(), http.StatusNotFound, "transaction_not_found"},
		{ErrTransactionsDisabled(), http.StatusLocked, "transactions_disabled"},
		{ErrTransactionConflict("amount"), http.StatusConflict, "transaction_conflict"},
		{ErrInvalidWebsocketToken(), http.StatusBadRequest, "invalid_websocket_token"},
		{ErrRouteNotFound(), http.StatusNotFound, "route_not_found"},
		{ErrUnauthorized(), http.StatusUnauthorized, "unauthorized"},
		{ErrInternal(), http.StatusInternalServerError, "internal_server_error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), tc.code)
		assert.Equal(t, tc.code, string(tc.err.Kind))
	}
}

func TestAsError(t *testing.T) {
	assert.Equal(t, KindNameTaken, AsError(ErrNameTaken("foo")).Kind)

	wrapped := fmt.Errorf("register: %w", ErrInsufficientFunds())
	assert.Equal(t, KindInsufficientFunds, AsError(wrapped).Kind)

	// Opaque errors never leak detail to the wire.
	opaque := AsError(errors.New("pq: connection refused"))
	assert.Equal(t, KindInternal, opaque.Kind)
	assert.Equal(t, "Internal server error", opaque.Message)
}

func TestErrorEnvelope(t *testing.T) {
	body, err := json.Marshal(ErrInvalidParameter("amount").Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"invalid_parameter","message":"Invalid parameter amount","info":"amount"}`, string(body))

	body, err = json.Marshal(ErrAuthFailed().Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"auth_failed","message":"Authentication failed"}`, string(body))
}

func TestParsePaginationClamping(t *testing.T) {
	cases := []struct {
		limit string
		want  int
	}{
		{"0", 1},
		{"1", 1},
		{"999", 999},
		{"1000", 1000},
		{"1001", 1000},
		{"-5", 1},
		{"", DefaultLimit},
		{"bogus", DefaultLimit},
	}
	for _, tc := range cases {
		q := url.Values{}
		if tc.limit != "" {
			q.Set("limit", tc.limit)
		}
		assert.Equal(t, tc.want, ParsePagination(q).Limit, "limit=%q", tc.limit)
	}

	q := url.Values{"offset": {"-3"}}
	assert.Equal(t, 0, ParsePagination(q).Offset)
	q = url.Values{"offset": {"120"}}
	assert.Equal(t, 120, ParsePagination(q).Offset)
}

func TestParseTransactionQuery(t *testing.T) {
	q := url.Values{"excludeMined": {"true"}, "limit": {"10"}}
	tq := ParseTransactionQuery(q)
	assert.True(t, tq.ExcludeMined)
	assert.Equal(t, 10, tq.Limit)

	assert.False(t, ParseTransactionQuery(url.Values{"excludeMined": {"1"}}).ExcludeMined)
}

func TestMOTDDescriptor(t *testing.T) {
	m := NewDetailedMOTD("https://kromer.example", "wss://kromer.example/api/krist/ws/gateway", false)
	assert.False(t, m.MiningEnabled)
	assert.True(t, m.TransactionsEnabled)
	assert.Equal(t, 16, m.Constants.WalletVersion)
	assert.Equal(t, 500, m.Constants.NameCost)
	assert.Equal(t, 24, m.Constants.NonceMaxSize)
	assert.Equal(t, 0.025, m.Constants.WorkFactor)
	assert.Equal(t, "k", m.Currency.AddressPrefix)
	assert.Equal(t, "kro", m.Currency.NameSuffix)
	assert.Equal(t, "KRO", m.Currency.CurrencySymbol)

	body, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"licence"`)
	assert.Contains(t, string(body), `"wallet_version":16`)
}

func TestWireShapes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := &types.Wallet{
		Address:   "krcgbmalxg",
		Balance:   decimal.RequireFromString("12.50"),
		TotalIn:   decimal.RequireFromString("20"),
		TotalOut:  decimal.RequireFromString("7.5"),
		CreatedAt: now,
	}
	body, err := json.Marshal(AddressResponse{OK: Success(), Address: NewAddressJSON(w)})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"ok":true`)
	assert.Contains(t, string(body), `"balance":12.5`)
	assert.Contains(t, string(body), `"totalin":20`)
	assert.Contains(t, string(body), `"totalout":7.5`)
	assert.Contains(t, string(body), `"firstseen":"2025-06-01T12:00:00Z"`)
	assert.NotContains(t, string(body), "names")

	from := "krcgbmalxg"
	tx := &types.Transaction{
		ID:     1,
		Amount: decimal.RequireFromString("40.00"),
		From:   &from,
		To:     "k000000000",
		Type:   types.TxTransfer,
		Date:   now,
	}
	body, err = json.Marshal(TransactionResponse{OK: Success(), Transaction: NewTransactionJSON(tx)})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"value":40`)
	assert.Contains(t, string(body), `"time":"2025-06-01T12:00:00Z"`)
	assert.Contains(t, string(body), `"type":"transfer"`)
	assert.NotContains(t, string(body), "sent_metaname")

	n := &types.Name{
		Name:           "foo",
		Owner:          "krcgbmalxg",
		OriginalOwner:  "krcgbmalxg",
		TimeRegistered: now,
		Unpaid:         decimal.Zero,
	}
	body, err = json.Marshal(NameResponse{OK: Success(), Name: NewNameJSON(n)})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"transfered":null`)
	assert.Contains(t, string(body), `"original_owner":"krcgbmalxg"`)
	assert.Contains(t, string(body), `"a":null`)
}

func TestEventConstructors(t *testing.T) {
	ev := NewTransactionEvent(TransactionJSON{ID: 7, To: "k000000000", Type: "transfer"})
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"event"`)
	assert.Contains(t, string(body), `"event":"transaction"`)
	assert.NotContains(t, string(body), `"name"`)

	ev = NewNameEvent(NameJSON{Name: "foo", Owner: "k000000000"})
	assert.Equal(t, EventName, ev.Event)
	assert.Nil(t, ev.Transaction)
}
