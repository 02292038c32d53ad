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

package node

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/core/types"
	"github.com/reconnectedcc/go-kromer/crypto"
	"github.com/reconnectedcc/go-kromer/params"
	"github.com/reconnectedcc/go-kromer/ws"
)

// fakeBackend implements the handler-facing subset. Anything a test does not
// exercise panics through the embedded nil interface.
type fakeBackend struct {
	api.Backend

	wallets map[string]*types.Wallet
	hashes  map[string]string // address -> private key hash
	names   map[string]*types.Name
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		wallets: make(map[string]*types.Wallet),
		hashes:  make(map[string]string),
		names:   make(map[string]*types.Name),
	}
}

func (f *fakeBackend) addWallet(privateKey string, balance int64) string {
	address := crypto.MakeV2Address(privateKey, params.AddressPrefix)
	f.wallets[address] = &types.Wallet{
		Address:   address,
		Balance:   decimal.NewFromInt(balance),
		CreatedAt: time.Now(),
	}
	f.hashes[address] = crypto.Sha256Hex(address + privateKey)
	return address
}

func (f *fakeBackend) Login(_ context.Context, privateKey string) (*types.AuthResult, error) {
	address := crypto.MakeV2Address(privateKey, params.AddressPrefix)
	hash := crypto.Sha256Hex(address + privateKey)
	w, ok := f.wallets[address]
	if !ok {
		// Auto-registration.
		w = &types.Wallet{Address: address, CreatedAt: time.Now()}
		f.wallets[address] = w
		f.hashes[address] = hash
	}
	return &types.AuthResult{Authed: f.hashes[address] == hash, Wallet: w}, nil
}

func (f *fakeBackend) WalletByAddress(_ context.Context, address string, _ bool) (*types.Wallet, error) {
	w, ok := f.wallets[address]
	if !ok {
		return nil, api.ErrAddressNotFound(address)
	}
	return w, nil
}

func (f *fakeBackend) RichestWallets(_ context.Context, _ api.Pagination) ([]types.Wallet, int64, error) {
	var out []types.Wallet
	for _, w := range f.wallets {
		out = append(out, *w)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBackend) LookupWallets(_ context.Context, addresses []string, _ bool) ([]types.Wallet, error) {
	var out []types.Wallet
	for _, addr := range addresses {
		if w, ok := f.wallets[addr]; ok {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeBackend) MakeTransfer(_ context.Context, privateKey, to string, amount decimal.Decimal, _ *string) (*types.Transaction, error) {
	auth, _ := f.Login(context.Background(), privateKey)
	if !auth.Authed {
		return nil, api.ErrAuthFailed()
	}
	amount = amount.RoundBank(2)
	if amount.Sign() <= 0 {
		return nil, api.ErrInvalidParameter("amount")
	}
	recipient, ok := f.wallets[to]
	if !ok {
		return nil, api.ErrAddressNotFound(to)
	}
	if auth.Wallet.Balance.LessThan(amount) {
		return nil, api.ErrInsufficientFunds()
	}
	auth.Wallet.Balance = auth.Wallet.Balance.Sub(amount)
	recipient.Balance = recipient.Balance.Add(amount)
	from := auth.Wallet.Address
	return &types.Transaction{
		ID: 1, From: &from, To: to, Amount: amount,
		Type: types.TxTransfer, Date: time.Now(),
	}, nil
}

func (f *fakeBackend) NameAvailable(_ context.Context, name string) (bool, error) {
	if !types.IsValidName(name, true) {
		return false, api.ErrInvalidParameter("name")
	}
	_, taken := f.names[strings.ToLower(name)]
	return !taken, nil
}

func (f *fakeBackend) MoneySupply(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, w := range f.wallets {
		if w.Address != params.WelfareAddress {
			total = total.Add(w.Balance)
		}
	}
	return total, nil
}

func newTestNode(backend api.Backend) *Node {
	cfg := Config{
		ListenAddr:  "127.0.0.1:0",
		PublicURL:   "kromer.test",
		InternalKey: "secret",
	}
	return New(cfg, backend, ws.NewServer(backend, zap.NewNop()), zap.NewNop())
}

func do(t *testing.T, n *Node, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	n.router().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestIndexRoute(t *testing.T) {
	n := newTestNode(newFakeBackend())
	rec, _ := do(t, n, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, world!", rec.Body.String())
}

func TestNotFoundEnvelope(t *testing.T) {
	n := newTestNode(newFakeBackend())
	rec, body := do(t, n, http.MethodGet, "/api/krist/bogus/route", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "route_not_found", body["error"])
}

func TestLoginAutoRegister(t *testing.T) {
	backend := newFakeBackend()
	n := newTestNode(backend)

	rec, body := do(t, n, http.MethodPost, "/api/krist/login", `{"privatekey":"test123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["authed"])
	assert.Equal(t, "krcgbmalxg", body["address"])
	assert.Contains(t, backend.wallets, "krcgbmalxg")

	rec, body = do(t, n, http.MethodPost, "/api/krist/login", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_parameter", body["error"])
}

func TestV2DeriveOnly(t *testing.T) {
	n := newTestNode(newFakeBackend())
	rec, body := do(t, n, http.MethodPost, "/api/krist/v2", `{"privatekey":"test123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "krcgbmalxg", body["address"])
}

func TestWalletVersion(t *testing.T) {
	n := newTestNode(newFakeBackend())
	rec, body := do(t, n, http.MethodGet, "/api/krist/walletversion", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(16), body["walletVersion"])
}

func TestTransferRoute(t *testing.T) {
	backend := newFakeBackend()
	backend.addWallet("alice-key", 100)
	bob := backend.addWallet("bob-key", 0)
	n := newTestNode(backend)

	rec, body := do(t, n, http.MethodPost, "/api/krist/transactions",
		`{"privatekey":"alice-key","to":"`+bob+`","amount":"40.00"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tx := body["transaction"].(map[string]any)
	assert.Equal(t, bob, tx["to"])
	assert.Equal(t, "transfer", tx["type"])
	assert.Equal(t, float64(40), tx["value"])

	// Over-spend maps to 403 insufficient_funds.
	rec, body = do(t, n, http.MethodPost, "/api/krist/transactions",
		`{"privatekey":"alice-key","to":"`+bob+`","amount":200}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient_funds", body["error"])

	rec, body = do(t, n, http.MethodPost, "/api/krist/transactions",
		`{"to":"`+bob+`","amount":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_parameter", body["error"])
}

func TestNameCheckAndCost(t *testing.T) {
	backend := newFakeBackend()
	backend.names["taken"] = &types.Name{Name: "taken"}
	n := newTestNode(backend)

	rec, body := do(t, n, http.MethodGet, "/api/krist/names/check/foo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["available"])

	_, body = do(t, n, http.MethodGet, "/api/krist/names/check/taken", "", nil)
	assert.Equal(t, false, body["available"])

	// Punycode names are checkable even though they are not registrable.
	rec, body = do(t, n, http.MethodGet, "/api/krist/names/check/xn--foo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["available"])

	_, body = do(t, n, http.MethodGet, "/api/krist/names/cost", "", nil)
	assert.Equal(t, float64(500), body["name_cost"])
}

func TestRichDispatch(t *testing.T) {
	backend := newFakeBackend()
	backend.addWallet("alice-key", 100)
	n := newTestNode(backend)

	rec, body := do(t, n, http.MethodGet, "/api/krist/addresses/rich", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	// A malformed address still 400s instead of falling into the rich path.
	rec, body = do(t, n, http.MethodGet, "/api/krist/addresses/notanaddress", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_parameter", body["error"])
}

func TestLookupAddresses(t *testing.T) {
	backend := newFakeBackend()
	alice := backend.addWallet("alice-key", 100)
	n := newTestNode(backend)

	rec, body := do(t, n, http.MethodGet, "/api/krist/lookup/addresses/"+alice+",k000000000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["found"])
	assert.Equal(t, float64(1), body["notFound"])
	addresses := body["addresses"].(map[string]any)
	assert.NotNil(t, addresses[alice])
	assert.Nil(t, addresses["k000000000"])

	rec, body = do(t, n, http.MethodGet, "/api/krist/lookup/addresses/not-valid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_parameter", body["error"])
}

func TestWsStartIssuesToken(t *testing.T) {
	backend := newFakeBackend()
	backend.addWallet("alice-key", 100)
	n := newTestNode(backend)

	rec, body := do(t, n, http.MethodPost, "/api/krist/ws/start", `{"privatekey":"alice-key"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(30), body["expires"])
	url := body["url"].(string)
	assert.True(t, strings.HasPrefix(url, "wss://kromer.test/api/krist/ws/gateway/"), url)

	// Guest token without a key.
	rec, body = do(t, n, http.MethodPost, "/api/krist/ws/start", `{}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["url"])
}

func TestInternalKeyGuard(t *testing.T) {
	n := newTestNode(newFakeBackend())

	rec, body := do(t, n, http.MethodGet, "/api/_internal/ws/sessions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", body["error"])

	rec, body = do(t, n, http.MethodGet, "/api/_internal/ws/sessions", "",
		map[string]string{"Kromer-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = do(t, n, http.MethodGet, "/api/_internal/ws/sessions", "",
		map[string]string{"Kromer-Key": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])
}

func TestMOTDRoute(t *testing.T) {
	n := newTestNode(newFakeBackend())
	rec, body := do(t, n, http.MethodGet, "/api/krist/motd", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["mining_enabled"])
	assert.Equal(t, true, body["transactions_enabled"])
	assert.Equal(t, "kromer.test", body["public_url"])
	currency := body["currency"].(map[string]any)
	assert.Equal(t, "KRO", currency["currency_symbol"])
}
