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
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/core/types"
	"github.com/reconnectedcc/go-kromer/crypto"
	"github.com/reconnectedcc/go-kromer/params"
	"github.com/reconnectedcc/go-kromer/ws"
)

func (n *Node) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello, world!"))
}

func (n *Node) handleMOTD(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n.writeJSON(w, http.StatusOK, api.MOTDResponse{OK: api.Success(), DetailedMOTD: n.motd()})
}

type authBody struct {
	PrivateKey string `json:"privatekey"`
}

func (n *Node) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body authBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	if body.PrivateKey == "" {
		n.writeError(w, api.ErrMissingParameter("privatekey"))
		return
	}
	auth, err := n.backend.Login(r.Context(), body.PrivateKey)
	if err != nil {
		n.writeError(w, err)
		return
	}
	resp := api.LoginResponse{OK: api.Success(), Authed: auth.Authed}
	if auth.Authed {
		addr := auth.Wallet.Address
		resp.Address = &addr
	}
	n.writeJSON(w, http.StatusOK, resp)
}

// handleV2 derives an address without touching the database.
func (n *Node) handleV2(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body authBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	if body.PrivateKey == "" {
		n.writeError(w, api.ErrMissingParameter("privatekey"))
		return
	}
	n.writeJSON(w, http.StatusOK, api.V2Response{
		OK:      api.Success(),
		Address: crypto.MakeV2Address(body.PrivateKey, params.AddressPrefix),
	})
}

func (n *Node) handleWalletVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n.writeJSON(w, http.StatusOK, api.WalletVersionResponse{
		OK:            api.Success(),
		WalletVersion: params.WalletVersion,
	})
}

func (n *Node) handleSupply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	supply, err := n.backend.MoneySupply(r.Context())
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.SupplyResponse{OK: api.Success(), MoneySupply: supply})
}

func (n *Node) handleAddresses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := api.ParsePagination(r.URL.Query())
	wallets, total, err := n.backend.Wallets(r.Context(), p)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeAddressList(w, wallets, total)
}

func (n *Node) writeAddressList(w http.ResponseWriter, wallets []types.Wallet, total int64) {
	out := make([]api.AddressJSON, len(wallets))
	for i := range wallets {
		out[i] = api.NewAddressJSON(&wallets[i])
	}
	n.writeJSON(w, http.StatusOK, api.AddressListResponse{
		OK:        api.Success(),
		Count:     len(out),
		Total:     total,
		Addresses: out,
	})
}

// handleAddress also serves /addresses/rich, which httprouter cannot
// register as a static sibling of the :address wildcard.
func (n *Node) handleAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	address := ps.ByName("address")
	if address == "rich" {
		p := api.ParsePagination(r.URL.Query())
		wallets, total, err := n.backend.RichestWallets(r.Context(), p)
		if err != nil {
			n.writeError(w, err)
			return
		}
		n.writeAddressList(w, wallets, total)
		return
	}
	if !types.IsValidAddress(address) {
		n.writeError(w, api.ErrInvalidParameter("address"))
		return
	}
	wallet, err := n.backend.WalletByAddress(r.Context(), address, r.URL.Query().Get("fetchNames") == "true")
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.AddressResponse{OK: api.Success(), Address: api.NewAddressJSON(wallet)})
}

func (n *Node) handleAddressTransactions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	address := ps.ByName("address")
	if !types.IsValidAddress(address) {
		n.writeError(w, api.ErrInvalidParameter("address"))
		return
	}
	q := api.ParseTransactionQuery(r.URL.Query())
	txs, total, err := n.backend.AddressTransactions(r.Context(), address, q)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeTransactionList(w, txs, total)
}

func (n *Node) handleAddressNames(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	address := ps.ByName("address")
	if !types.IsValidAddress(address) {
		n.writeError(w, api.ErrInvalidParameter("address"))
		return
	}
	if _, err := n.backend.WalletByAddress(r.Context(), address, false); err != nil {
		n.writeError(w, err)
		return
	}
	p := api.ParsePagination(r.URL.Query())
	names, total, err := n.backend.NamesByOwner(r.Context(), address, p)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeNameList(w, names, total)
}

func (n *Node) writeTransactionList(w http.ResponseWriter, txs []types.Transaction, total int64) {
	out := make([]api.TransactionJSON, len(txs))
	for i := range txs {
		out[i] = api.NewTransactionJSON(&txs[i])
	}
	n.writeJSON(w, http.StatusOK, api.TransactionListResponse{
		OK:           api.Success(),
		Count:        len(out),
		Total:        total,
		Transactions: out,
	})
}

func (n *Node) handleTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := api.ParseTransactionQuery(r.URL.Query())
	txs, total, err := n.backend.Transactions(r.Context(), q)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeTransactionList(w, txs, total)
}

// handleTransaction also serves /transactions/latest through the :id
// wildcard.
func (n *Node) handleTransaction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw := ps.ByName("id")
	if raw == "latest" {
		q := api.ParseTransactionQuery(r.URL.Query())
		txs, total, err := n.backend.LatestTransactions(r.Context(), q)
		if err != nil {
			n.writeError(w, err)
			return
		}
		n.writeTransactionList(w, txs, total)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		n.writeError(w, api.ErrInvalidParameter("id"))
		return
	}
	tx, err := n.backend.TransactionByID(r.Context(), id)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.TransactionResponse{OK: api.Success(), Transaction: api.NewTransactionJSON(tx)})
}

type makeTransactionBody struct {
	PrivateKey string          `json:"privatekey"`
	To         string          `json:"to"`
	Amount     decimal.Decimal `json:"amount"`
	Metadata   *string         `json:"metadata"`
}

func (n *Node) handleMakeTransaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body makeTransactionBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	if body.PrivateKey == "" {
		n.writeError(w, api.ErrMissingParameter("privatekey"))
		return
	}
	if body.To == "" {
		n.writeError(w, api.ErrMissingParameter("to"))
		return
	}
	tx, err := n.backend.MakeTransfer(r.Context(), body.PrivateKey, body.To, body.Amount, body.Metadata)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.TransactionResponse{OK: api.Success(), Transaction: api.NewTransactionJSON(tx)})
}

func (n *Node) writeNameList(w http.ResponseWriter, names []types.Name, total int64) {
	out := make([]api.NameJSON, len(names))
	for i := range names {
		out[i] = api.NewNameJSON(&names[i])
	}
	n.writeJSON(w, http.StatusOK, api.NameListResponse{
		OK:    api.Success(),
		Count: len(out),
		Total: total,
		Names: out,
	})
}

func (n *Node) handleNames(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := api.ParsePagination(r.URL.Query())
	names, total, err := n.backend.Names(r.Context(), p)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeNameList(w, names, total)
}

// handleName also serves the static /names/cost, /names/bonus and
// /names/new siblings of the :name wildcard.
func (n *Node) handleName(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch name := ps.ByName("name"); name {
	case "cost":
		n.writeJSON(w, http.StatusOK, api.NameCostResponse{OK: api.Success(), NameCost: params.NameCost})
	case "bonus":
		bonus, err := n.backend.UnpaidNameCount(r.Context())
		if err != nil {
			n.writeError(w, err)
			return
		}
		n.writeJSON(w, http.StatusOK, api.NameBonusResponse{OK: api.Success(), NameBonus: bonus})
	case "new":
		p := api.ParsePagination(r.URL.Query())
		names, total, err := n.backend.UnpaidNames(r.Context(), p)
		if err != nil {
			n.writeError(w, err)
			return
		}
		n.writeNameList(w, names, total)
	default:
		record, err := n.backend.NameByName(r.Context(), name)
		if err != nil {
			n.writeError(w, err)
			return
		}
		n.writeJSON(w, http.StatusOK, api.NameResponse{OK: api.Success(), Name: api.NewNameJSON(record)})
	}
}

// handleNameSub serves /names/check/{name}.
func (n *Node) handleNameSub(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("name") != "check" {
		n.writeError(w, api.ErrRouteNotFound())
		return
	}
	available, err := n.backend.NameAvailable(r.Context(), ps.ByName("sub"))
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.NameCheckResponse{OK: api.Success(), Available: available})
}

func (n *Node) handleRegisterName(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body authBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	if body.PrivateKey == "" {
		n.writeError(w, api.ErrMissingParameter("privatekey"))
		return
	}
	record, err := n.backend.RegisterName(r.Context(), body.PrivateKey, ps.ByName("name"))
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.NameResponse{OK: api.Success(), Name: api.NewNameJSON(record)})
}

type nameUpdateBody struct {
	PrivateKey string  `json:"privatekey"`
	A          *string `json:"a"`
}

type nameTransferBody struct {
	PrivateKey string `json:"privatekey"`
	Address    string `json:"address"`
}

// handleNameAction serves POST /names/{name}/update and /transfer.
func (n *Node) handleNameAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("action") {
	case "update":
		n.nameUpdate(w, r, ps.ByName("name"))
	case "transfer":
		n.nameTransfer(w, r, ps.ByName("name"))
	default:
		n.writeError(w, api.ErrRouteNotFound())
	}
}

func (n *Node) handleNameUpdatePut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n.nameUpdate(w, r, ps.ByName("name"))
}

func (n *Node) nameUpdate(w http.ResponseWriter, r *http.Request, name string) {
	var body nameUpdateBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	if body.PrivateKey == "" {
		n.writeError(w, api.ErrMissingParameter("privatekey"))
		return
	}
	record, err := n.backend.UpdateNameData(r.Context(), body.PrivateKey, name, body.A)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.NameResponse{OK: api.Success(), Name: api.NewNameJSON(record)})
}

func (n *Node) nameTransfer(w http.ResponseWriter, r *http.Request, name string) {
	var body nameTransferBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	if body.PrivateKey == "" {
		n.writeError(w, api.ErrMissingParameter("privatekey"))
		return
	}
	if body.Address == "" {
		n.writeError(w, api.ErrMissingParameter("address"))
		return
	}
	record, err := n.backend.TransferName(r.Context(), body.PrivateKey, name, body.Address)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.NameResponse{OK: api.Success(), Name: api.NewNameJSON(record)})
}

func (n *Node) handleLookupAddresses(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw := ps.ByName("addresses")
	if !types.IsValidAddressList(raw) {
		n.writeError(w, api.ErrInvalidParameter("addresses"))
		return
	}
	requested := strings.Split(raw, ",")
	wallets, err := n.backend.LookupWallets(r.Context(), requested, r.URL.Query().Get("fetchNames") == "true")
	if err != nil {
		n.writeError(w, err)
		return
	}

	found := make(map[string]*api.AddressJSON, len(wallets))
	for i := range wallets {
		a := api.NewAddressJSON(&wallets[i])
		found[wallets[i].Address] = &a
	}
	resp := api.LookupResponse{
		OK:        api.Success(),
		Addresses: make(map[string]*api.AddressJSON, len(requested)),
	}
	for _, addr := range requested {
		if a, ok := found[addr]; ok {
			resp.Addresses[addr] = a
			resp.Found++
		} else {
			resp.Addresses[addr] = nil
			resp.NotFound++
		}
	}
	n.writeJSON(w, http.StatusOK, resp)
}

// handleWsStart issues a single-use gateway token. With a private key the
// token carries the authenticated identity; without one it is a guest token.
func (n *Node) handleWsStart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body authBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}

	token := ws.TokenData{Address: ws.GuestIdentity}
	if body.PrivateKey != "" {
		auth, err := n.backend.Login(r.Context(), body.PrivateKey)
		if err != nil {
			n.writeError(w, err)
			return
		}
		if !auth.Authed {
			n.writeError(w, api.ErrAuthFailed())
			return
		}
		token = ws.TokenData{Address: auth.Wallet.Address, PrivateKey: body.PrivateKey}
	}

	id := n.ws.IssueToken(token)
	n.writeJSON(w, http.StatusOK, api.WsStartResponse{
		OK:      api.Success(),
		URL:     n.gatewayURL(id.String()),
		Expires: int(ws.TokenTTL.Seconds()),
	})
}

func (n *Node) handleWsGateway(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n.ws.HandleGateway(w, r, ps.ByName("token"), n.motd())
}
