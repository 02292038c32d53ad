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

package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/core/types"
)

// fakeBackend implements only what the frame handlers reach for. Unused
// Backend methods panic via the embedded nil interface.
type fakeBackend struct {
	api.Backend

	wallets   map[string]*types.Wallet
	keys      map[string]string // private key -> address
	transfers []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		wallets: make(map[string]*types.Wallet),
		keys:    make(map[string]string),
	}
}

func (f *fakeBackend) addWallet(address, privateKey string, balance int64) {
	f.wallets[address] = &types.Wallet{
		Address: address,
		Balance: decimal.NewFromInt(balance),
	}
	if privateKey != "" {
		f.keys[privateKey] = address
	}
}

func (f *fakeBackend) WalletByAddress(_ context.Context, address string, _ bool) (*types.Wallet, error) {
	w, ok := f.wallets[address]
	if !ok {
		return nil, api.ErrAddressNotFound(address)
	}
	return w, nil
}

func (f *fakeBackend) Login(_ context.Context, privateKey string) (*types.AuthResult, error) {
	address, ok := f.keys[privateKey]
	if !ok {
		return &types.AuthResult{Authed: false, Wallet: &types.Wallet{Address: "kxxxxxxxxx"}}, nil
	}
	return &types.AuthResult{Authed: true, Wallet: f.wallets[address]}, nil
}

func (f *fakeBackend) MakeTransfer(_ context.Context, privateKey, to string, amount decimal.Decimal, _ *string) (*types.Transaction, error) {
	address, ok := f.keys[privateKey]
	if !ok {
		return nil, api.ErrAuthFailed()
	}
	f.transfers = append(f.transfers, address+"->"+to)
	from := address
	return &types.Transaction{
		ID:     int64(len(f.transfers)),
		From:   &from,
		To:     to,
		Amount: amount,
		Type:   types.TxTransfer,
		Date:   time.Now(),
	}, nil
}

func testSession(address string) *Session {
	token := TokenData{Address: address}
	return newSession(uuid.New(), token)
}

func recvJSON(t *testing.T, sess *Session) map[string]any {
	t.Helper()
	select {
	case v := <-sess.out:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func TestTokenConsumedOnce(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	id := s.IssueToken(TokenData{Address: "krcgbmalxg"})

	data, ok := s.UseToken(id)
	require.True(t, ok)
	assert.Equal(t, "krcgbmalxg", data.Address)

	_, ok = s.UseToken(id)
	assert.False(t, ok, "token must be single-use")

	_, ok = s.UseToken(uuid.New())
	assert.False(t, ok, "unknown token")
}

func TestDefaultSubscriptions(t *testing.T) {
	sess := testSession(GuestIdentity)
	assert.True(t, sess.Subscriptions.Contains(SubOwnTransactions))
	assert.True(t, sess.Subscriptions.Contains(SubBlocks))
	assert.Equal(t, 2, sess.Subscriptions.Cardinality())
}

func TestBroadcastFilterMatrix(t *testing.T) {
	from := "kaaaaaaaaa"
	ev := api.NewTransactionEvent(api.TransactionJSON{
		From: &from,
		To:   "kbbbbbbbbb",
		Type: "transfer",
	})

	// Global transactions subscriber sees everything.
	x := testSession(GuestIdentity)
	x.Subscriptions.Clear()
	x.Subscriptions.Add(SubTransactions)
	assert.True(t, shouldDeliver(x, ev))

	// Recipient with default subscriptions sees its own transaction.
	y := testSession("kbbbbbbbbb")
	assert.True(t, shouldDeliver(y, ev))

	// Sender too.
	z := testSession("kaaaaaaaaa")
	assert.True(t, shouldDeliver(z, ev))

	// A guest subscribed only to ownTransactions receives nothing.
	g := testSession(GuestIdentity)
	g.Subscriptions.Clear()
	g.Subscriptions.Add(SubOwnTransactions)
	assert.False(t, shouldDeliver(g, ev))

	// Unrelated wallet with default subscriptions receives nothing.
	u := testSession("kccccccccc")
	assert.False(t, shouldDeliver(u, ev))

	// Name events.
	nameEv := api.NewNameEvent(api.NameJSON{Name: "foo", Owner: "kbbbbbbbbb"})
	owner := testSession("kbbbbbbbbb")
	owner.Subscriptions.Add(SubOwnNames)
	assert.True(t, shouldDeliver(owner, nameEv))
	assert.False(t, shouldDeliver(u, nameEv))
	all := testSession(GuestIdentity)
	all.Subscriptions.Add(SubNames)
	assert.True(t, shouldDeliver(all, nameEv))
}

func TestBroadcastQueuesOnSessions(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	sess := testSession(GuestIdentity)
	sess.Subscriptions.Add(SubTransactions)
	s.addSession(sess)
	defer s.removeSession(sess.ID)

	s.Broadcast(api.NewTransactionEvent(api.TransactionJSON{To: "kbbbbbbbbb", Type: "transfer"}))

	frame := recvJSON(t, sess)
	assert.Equal(t, "event", frame["type"])
	assert.Equal(t, "transaction", frame["event"])
}

func TestDispatchTooLong(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	sess := testSession(GuestIdentity)

	s.dispatch(sess, []byte("{\"type\":\"me\",\"pad\":\""+strings.Repeat("x", 600)+"\"}"))

	frame := recvJSON(t, sess)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "message_too_long", frame["error"])
}

func TestDispatchIDEcho(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	sess := testSession(GuestIdentity)

	s.dispatch(sess, []byte(`{"type":"me","id":7}`))

	frame := recvJSON(t, sess)
	assert.Equal(t, float64(7), frame["id"])
	assert.Equal(t, "response", frame["type"])
	assert.Equal(t, "me", frame["responding_to"])
	assert.Equal(t, true, frame["is_guest"])
}

func TestDispatchWorkAndUnknown(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	sess := testSession(GuestIdentity)

	s.dispatch(sess, []byte(`{"type":"work","id":1}`))
	frame := recvJSON(t, sess)
	assert.Equal(t, "mining_disabled", frame["error"])

	s.dispatch(sess, []byte(`{"type":"mine_block","id":2}`))
	frame = recvJSON(t, sess)
	assert.Equal(t, "invalid_message_type", frame["error"])

	s.dispatch(sess, []byte(`not json`))
	frame = recvJSON(t, sess)
	assert.Equal(t, "syntax_error", frame["error"])
}

func TestSubscribeRoundTrip(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	sess := testSession(GuestIdentity)

	s.dispatch(sess, []byte(`{"type":"subscribe","event":"transactions","id":1}`))
	frame := recvJSON(t, sess)
	assert.Equal(t, true, frame["ok"])
	levels := frame["subscription_level"].([]any)
	assert.Contains(t, levels, "transactions")
	assert.Contains(t, levels, "ownTransactions")
	assert.Contains(t, levels, "blocks")

	s.dispatch(sess, []byte(`{"type":"unsubscribe","event":"blocks","id":2}`))
	frame = recvJSON(t, sess)
	levels = frame["subscription_level"].([]any)
	assert.NotContains(t, levels, "blocks")

	s.dispatch(sess, []byte(`{"type":"subscribe","event":"bogus","id":3}`))
	frame = recvJSON(t, sess)
	assert.Equal(t, "invalid_parameter", frame["error"])

	s.dispatch(sess, []byte(`{"type":"get_valid_subscription_levels","id":4}`))
	frame = recvJSON(t, sess)
	assert.Len(t, frame["valid_subscription_levels"].([]any), 7)
}

func TestLoginLogoutMutatesSessionOnly(t *testing.T) {
	backend := newFakeBackend()
	backend.addWallet("krcgbmalxg", "test123", 100)
	s := NewServer(backend, nil)
	sess := testSession(GuestIdentity)

	s.dispatch(sess, []byte(`{"type":"login","privatekey":"test123","id":1}`))
	frame := recvJSON(t, sess)
	require.Equal(t, true, frame["ok"])
	assert.Equal(t, false, frame["is_guest"])
	assert.Equal(t, "krcgbmalxg", sess.Address())

	// A bad key is not an error on this path: the response keeps ok:true
	// and the session drops back to guest.
	s.dispatch(sess, []byte(`{"type":"login","privatekey":"wrong","id":2}`))
	frame = recvJSON(t, sess)
	require.Equal(t, true, frame["ok"])
	assert.Equal(t, true, frame["is_guest"])
	assert.Nil(t, frame["address"])
	assert.True(t, sess.IsGuest())

	s.dispatch(sess, []byte(`{"type":"login","privatekey":"test123","id":3}`))
	recvJSON(t, sess)
	require.Equal(t, "krcgbmalxg", sess.Address())

	s.dispatch(sess, []byte(`{"type":"logout","id":4}`))
	frame = recvJSON(t, sess)
	assert.Equal(t, true, frame["is_guest"])
	assert.Equal(t, GuestIdentity, sess.Address())
	assert.True(t, sess.IsGuest())
}

func TestMakeTransactionKeyFallback(t *testing.T) {
	backend := newFakeBackend()
	backend.addWallet("krcgbmalxg", "test123", 100)
	s := NewServer(backend, nil)
	sess := testSession(GuestIdentity)

	// No key anywhere: unauthorized.
	s.dispatch(sess, []byte(`{"type":"make_transaction","to":"kbbbbbbbbb","amount":10,"id":1}`))
	frame := recvJSON(t, sess)
	assert.Equal(t, "unauthorized", frame["error"])

	// Session key from login is used as fallback.
	s.dispatch(sess, []byte(`{"type":"login","privatekey":"test123","id":2}`))
	recvJSON(t, sess)
	s.dispatch(sess, []byte(`{"type":"make_transaction","to":"kbbbbbbbbb","amount":10,"id":3}`))
	frame = recvJSON(t, sess)
	require.Equal(t, true, frame["ok"])
	tx := frame["transaction"].(map[string]any)
	assert.Equal(t, "krcgbmalxg", tx["from"])
	assert.Equal(t, "kbbbbbbbbb", tx["to"])
}

func TestGatewayReadLimit(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	token := s.IssueToken(TokenData{Address: GuestIdentity})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.HandleGateway(w, r, token.String(), api.NewDetailedMOTD("test", "ws://test/api/krist/ws/gateway", false))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "hello", hello["type"])

	// A message above the connection read limit closes the socket instead
	// of being buffered and dispatched.
	big := `{"type":"me","pad":"` + strings.Repeat("x", 2*wsMessageSizeLimit) + `"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(big)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "unexpected error: %v", err)
}

func TestSessionInspection(t *testing.T) {
	s := NewServer(newFakeBackend(), nil)
	sess := testSession("krcgbmalxg")
	s.addSession(sess)
	defer s.removeSession(sess.ID)

	info, ok := s.SessionByID(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "krcgbmalxg", info.Address)
	assert.False(t, info.Guest)
	assert.ElementsMatch(t, []string{"blocks", "ownTransactions"}, info.Subscriptions)

	all := s.Sessions()
	require.Len(t, all, 1)
	assert.Equal(t, sess.ID, all[0].ID)

	_, ok = s.SessionByID(uuid.New())
	assert.False(t, ok)
}
