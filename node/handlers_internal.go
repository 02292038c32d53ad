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

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/ws"
)

type walletCreateBody struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// handleInternalWalletCreate provisions a wallet for a game player. The
// response carries the private key; it is never retrievable again.
func (n *Node) handleInternalWalletCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body walletCreateBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	playerID, err := uuid.Parse(body.PlayerID)
	if err != nil {
		n.writeError(w, api.ErrInvalidParameter("player_id"))
		return
	}
	if body.PlayerName == "" {
		n.writeError(w, api.ErrMissingParameter("player_name"))
		return
	}
	wallet, privateKey, err := n.backend.CreatePlayerWallet(r.Context(), playerID, body.PlayerName)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.WalletCreatedResponse{
		OK:         api.Success(),
		Address:    api.NewAddressJSON(wallet),
		PrivateKey: privateKey,
	})
}

type giveMoneyBody struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

func (n *Node) handleInternalGiveMoney(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body giveMoneyBody
	if err := decodeBody(r, &body); err != nil {
		n.writeError(w, err)
		return
	}
	if body.Address == "" {
		n.writeError(w, api.ErrMissingParameter("address"))
		return
	}
	wallet, err := n.backend.GiveMoney(r.Context(), body.Address, body.Amount)
	if err != nil {
		n.writeError(w, err)
		return
	}
	n.writeJSON(w, http.StatusOK, api.AddressResponse{OK: api.Success(), Address: api.NewAddressJSON(wallet)})
}

func (n *Node) handleInternalWalletsByPlayer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	playerID, err := uuid.Parse(ps.ByName("uuid"))
	if err != nil {
		n.writeError(w, api.ErrInvalidParameter("uuid"))
		return
	}
	wallets, err := n.backend.WalletsByPlayer(r.Context(), playerID)
	if err != nil {
		n.writeError(w, err)
		return
	}
	out := make([]api.AddressJSON, len(wallets))
	for i := range wallets {
		out[i] = api.NewAddressJSON(&wallets[i])
	}
	n.writeJSON(w, http.StatusOK, api.PlayerWalletsResponse{OK: api.Success(), Wallets: out})
}

type sessionResponse struct {
	api.OK
	Session ws.SessionInfo `json:"session"`
}

type sessionListResponse struct {
	api.OK
	Count    int              `json:"count"`
	Sessions []ws.SessionInfo `json:"sessions"`
}

func (n *Node) handleInternalSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := uuid.Parse(r.URL.Query().Get("session"))
	if err != nil {
		n.writeError(w, api.ErrInvalidParameter("session"))
		return
	}
	info, ok := n.ws.SessionByID(id)
	if !ok {
		n.writeError(w, &api.Error{Kind: api.KindRouteNotFound, Message: "Session not found"})
		return
	}
	n.writeJSON(w, http.StatusOK, sessionResponse{OK: api.Success(), Session: info})
}

func (n *Node) handleInternalSessions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sessions := n.ws.Sessions()
	n.writeJSON(w, http.StatusOK, sessionListResponse{
		OK:       api.Success(),
		Count:    len(sessions),
		Sessions: sessions,
	})
}
