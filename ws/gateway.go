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
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
)

const (
	wsReadBuffer  = 1024
	wsWriteBuffer = 1024

	// Clients that miss two heartbeats in a row are disconnected.
	heartbeatInterval = 5 * time.Second
	pongTimeout       = 10 * time.Second
	pingWriteTimeout  = 5 * time.Second

	// Inbound frames above this length are rejected without parsing.
	maxFrameLength = 512

	// wsMessageSizeLimit bounds what gorilla will buffer for one inbound
	// message; anything larger closes the connection before dispatch.
	wsMessageSizeLimit = 4 * 1024
)

var wsBufferPool = new(sync.Pool)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsReadBuffer,
	WriteBufferSize: wsWriteBuffer,
	WriteBufferPool: wsBufferPool,
	// The gateway URL embeds a single-use token, which is the actual
	// access control; Origin adds nothing here.
	CheckOrigin: func(*http.Request) bool { return true },
}

// HandleGateway redeems the token from the URL and runs the connection until
// it closes. The token is consumed before the upgrade so a replay sees
// invalid_websocket_token even when the first connection is still open.
func (s *Server) HandleGateway(w http.ResponseWriter, r *http.Request, token string, motd *api.DetailedMOTD) {
	id, err := uuid.Parse(token)
	if err != nil {
		writeTokenError(w)
		return
	}
	data, ok := s.UseToken(id)
	if !ok {
		writeTokenError(w)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(wsMessageSizeLimit)

	sess := newSession(id, data)
	s.addSession(sess)
	defer s.removeSession(sess.ID)

	sess.send(helloFrame{OK: true, Type: "hello", DetailedMOTD: motd})

	pongReceived := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pongReceived <- struct{}{}:
		default:
		}
		return nil
	})

	go s.writeLoop(sess, conn, pongReceived)
	s.readLoop(sess, conn)
}

func writeTokenError(w http.ResponseWriter) {
	apiErr := api.ErrInvalidWebsocketToken()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus())
	json.NewEncoder(w).Encode(apiErr.Envelope())
}

// writeLoop is the single writer on the connection. It drains the session
// queue and drives the heartbeat: a ping plus a keepalive frame every
// interval, with the read deadline armed until the pong arrives.
func (s *Server) writeLoop(sess *Session, conn *websocket.Conn, pongReceived <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case v := <-sess.out:
			if err := conn.WriteJSON(v); err != nil {
				s.log.Debug("websocket write failed", zap.Error(err))
				sess.close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(pingWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.close()
				return
			}
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			keepalive := keepaliveFrame{
				Type:       "keepalive",
				ServerTime: time.Now().UTC().Format(time.RFC3339),
			}
			if err := conn.WriteJSON(keepalive); err != nil {
				sess.close()
				return
			}
		case <-pongReceived:
			conn.SetReadDeadline(time.Time{})
		case <-sess.closed:
			return
		}
	}
}

// readLoop processes inbound frames sequentially, preserving per-session
// response order.
func (s *Server) readLoop(sess *Session, conn *websocket.Conn) {
	defer sess.close()
	for {
		select {
		case <-sess.closed:
			return
		default:
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatch(sess, raw)
	}
}
