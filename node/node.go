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
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/ws"
)

// Node owns the HTTP server and hands every handler its dependencies. One
// Node is constructed in main and runs until signalled.
type Node struct {
	cfg     Config
	log     *zap.Logger
	backend api.Backend
	ws      *ws.Server

	server   *http.Server
	listener net.Listener
}

// New assembles the node. Start must be called to begin serving.
func New(cfg Config, backend api.Backend, wsServer *ws.Server, log *zap.Logger) *Node {
	if log == nil {
		log = zap.NewNop()
	}
	n := &Node{
		cfg:     cfg,
		log:     log.Named("node"),
		backend: backend,
		ws:      wsServer,
	}
	n.server = &http.Server{
		Handler:           newHandlerStack(n.router(), n.log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return n
}

// Start opens the listener and serves in the background.
func (n *Node) Start() error {
	listener, err := net.Listen("tcp", n.cfg.ListenAddr)
	if err != nil {
		return err
	}
	n.listener = listener
	go n.server.Serve(listener)
	n.log.Info("HTTP endpoint opened", zap.String("addr", listener.Addr().String()))
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (n *Node) Stop(ctx context.Context) error {
	err := n.server.Shutdown(ctx)
	n.log.Info("HTTP endpoint closed")
	return err
}

// motd snapshots the server descriptor, stamping the current time.
func (n *Node) motd() *api.DetailedMOTD {
	wsURL := n.cfg.GatewayScheme() + "://" + n.cfg.PublicURL + "/api/krist/ws/gateway"
	return api.NewDetailedMOTD(n.cfg.PublicURL, wsURL, n.cfg.Debug)
}

// gatewayURL renders the single-use upgrade URL handed out by ws/start.
func (n *Node) gatewayURL(token string) string {
	return n.cfg.GatewayScheme() + "://" + n.cfg.PublicURL + "/api/krist/ws/gateway/" + token
}
