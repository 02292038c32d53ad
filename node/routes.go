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
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
)

// router builds the route table. httprouter rejects static siblings of a
// wildcard segment, so routes like /addresses/rich and /transactions/latest
// are dispatched inside the wildcard handlers.
func (n *Node) router() http.Handler {
	r := httprouter.New()

	r.GET("/", n.handleIndex)

	r.GET("/api/krist/motd", n.handleMOTD)
	r.POST("/api/krist/login", n.handleLogin)
	r.POST("/api/krist/v2", n.handleV2)
	r.GET("/api/krist/walletversion", n.handleWalletVersion)
	r.GET("/api/krist/supply", n.handleSupply)

	r.GET("/api/krist/addresses", n.handleAddresses)
	r.GET("/api/krist/addresses/:address", n.handleAddress)
	r.GET("/api/krist/addresses/:address/transactions", n.handleAddressTransactions)
	r.GET("/api/krist/addresses/:address/names", n.handleAddressNames)

	r.GET("/api/krist/transactions", n.handleTransactions)
	r.POST("/api/krist/transactions", n.handleMakeTransaction)
	r.GET("/api/krist/transactions/:id", n.handleTransaction)

	r.GET("/api/krist/names", n.handleNames)
	r.GET("/api/krist/names/:name", n.handleName)
	r.GET("/api/krist/names/:name/:sub", n.handleNameSub)
	r.POST("/api/krist/names/:name", n.handleRegisterName)
	r.POST("/api/krist/names/:name/:action", n.handleNameAction)
	r.PUT("/api/krist/names/:name/update", n.handleNameUpdatePut)

	r.GET("/api/krist/lookup/addresses/:addresses", n.handleLookupAddresses)

	r.POST("/api/krist/ws/start", n.handleWsStart)
	r.GET("/api/krist/ws/gateway/:token", n.handleWsGateway)

	r.POST("/api/_internal/wallet/create", n.internal(n.handleInternalWalletCreate))
	r.POST("/api/_internal/wallet/give-money", n.internal(n.handleInternalGiveMoney))
	r.GET("/api/_internal/wallet/by-player/:uuid", n.internal(n.handleInternalWalletsByPlayer))
	r.GET("/api/_internal/ws/session", n.internal(n.handleInternalSession))
	r.GET("/api/_internal/ws/sessions", n.internal(n.handleInternalSessions))

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		n.writeError(w, api.ErrRouteNotFound())
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		n.writeError(w, api.ErrRouteNotFound())
	})
	r.PanicHandler = func(w http.ResponseWriter, req *http.Request, v any) {
		n.log.Error("handler panic", zap.Any("panic", v), zap.String("path", req.URL.Path))
		n.writeError(w, api.ErrInternal())
	}
	return r
}

// internal guards a handler behind the shared Kromer-Key header. An empty
// configured key disables the whole surface.
func (n *Node) internal(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if n.cfg.InternalKey == "" || r.Header.Get("Kromer-Key") != n.cfg.InternalKey {
			n.writeError(w, api.ErrUnauthorized())
			return
		}
		h(w, r, ps)
	}
}

func (n *Node) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		n.log.Debug("response write failed", zap.Error(err))
	}
}

func (n *Node) writeError(w http.ResponseWriter, err error) {
	apiErr := api.AsError(err)
	if apiErr.Kind == api.KindInternal {
		n.log.Error("request failed", zap.Error(err))
	}
	n.writeJSON(w, apiErr.HTTPStatus(), apiErr.Envelope())
}

// decodeBody parses a JSON request body into dst. An unreadable or malformed
// body maps to invalid_parameter on the body itself.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return api.ErrInvalidParameter("body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return api.ErrInvalidParameter("body")
	}
	return nil
}
