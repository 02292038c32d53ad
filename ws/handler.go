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
	"time"

	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
)

// dispatchTimeout bounds the backend work done for one inbound frame.
const dispatchTimeout = 30 * time.Second

// dispatch handles one inbound frame. Responses are queued in arrival order
// because the read loop calls this sequentially.
func (s *Server) dispatch(sess *Session, raw []byte) {
	if len(raw) > maxFrameLength {
		sess.send(newErrorFrame(nil, api.ErrMessageTooLong()))
		return
	}

	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		sess.send(newErrorFrame(nil, api.ErrSyntaxError()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	switch msg.Type {
	case "address":
		s.handleAddress(ctx, sess, &msg)
	case "login":
		s.handleLogin(ctx, sess, &msg)
	case "logout":
		s.handleLogout(sess, &msg)
	case "me":
		s.handleMe(ctx, sess, &msg)
	case "subscribe":
		s.handleSubscribe(sess, &msg)
	case "unsubscribe":
		s.handleUnsubscribe(sess, &msg)
	case "get_subscription_level":
		sess.send(subscriptionResponse{
			responseHeader:    respondTo(&msg),
			SubscriptionLevel: sess.subscriptionLevels(),
		})
	case "get_valid_subscription_levels":
		sess.send(validLevelsResponse{
			responseHeader:          respondTo(&msg),
			ValidSubscriptionLevels: ValidSubscriptionLevels(),
		})
	case "make_transaction":
		s.handleMakeTransaction(ctx, sess, &msg)
	case "work":
		sess.send(newErrorFrame(msg.ID, api.ErrMiningDisabled()))
	default:
		sess.send(newErrorFrame(msg.ID, api.ErrInvalidMessageType()))
	}
}

func (s *Server) fail(sess *Session, id *int64, err error) {
	apiErr := api.AsError(err)
	if apiErr.Kind == api.KindInternal {
		s.log.Error("websocket request failed", zap.Error(err))
	}
	sess.send(newErrorFrame(id, apiErr))
}

func (s *Server) handleAddress(ctx context.Context, sess *Session, msg *inboundMessage) {
	if msg.Address == "" {
		s.fail(sess, msg.ID, api.ErrMissingParameter("address"))
		return
	}
	wallet, err := s.backend.WalletByAddress(ctx, msg.Address, msg.FetchNames)
	if err != nil {
		s.fail(sess, msg.ID, err)
		return
	}
	sess.send(addressResponse{
		responseHeader: respondTo(msg),
		Address:        api.NewAddressJSON(wallet),
	})
}

func (s *Server) handleLogin(ctx context.Context, sess *Session, msg *inboundMessage) {
	if msg.PrivateKey == "" {
		s.fail(sess, msg.ID, api.ErrMissingParameter("privatekey"))
		return
	}
	auth, err := s.backend.Login(ctx, msg.PrivateKey)
	if err != nil {
		s.fail(sess, msg.ID, err)
		return
	}
	if !auth.Authed {
		// A bad key is not an error on this path: the session drops back
		// to guest and the response still carries ok:true.
		sess.setIdentity(GuestIdentity, "")
		sess.send(loginResponse{responseHeader: respondTo(msg), IsGuest: true})
		return
	}
	sess.setIdentity(auth.Wallet.Address, msg.PrivateKey)
	addr := api.NewAddressJSON(auth.Wallet)
	sess.send(loginResponse{
		responseHeader: respondTo(msg),
		IsGuest:        false,
		Address:        &addr,
	})
}

func (s *Server) handleLogout(sess *Session, msg *inboundMessage) {
	sess.setIdentity(GuestIdentity, "")
	sess.send(loginResponse{
		responseHeader: respondTo(msg),
		IsGuest:        true,
	})
}

func (s *Server) handleMe(ctx context.Context, sess *Session, msg *inboundMessage) {
	if sess.IsGuest() {
		sess.send(meResponse{responseHeader: respondTo(msg), IsGuest: true})
		return
	}
	wallet, err := s.backend.WalletByAddress(ctx, sess.Address(), false)
	if err != nil {
		s.fail(sess, msg.ID, err)
		return
	}
	addr := api.NewAddressJSON(wallet)
	sess.send(meResponse{
		responseHeader: respondTo(msg),
		IsGuest:        false,
		Address:        &addr,
	})
}

func (s *Server) handleSubscribe(sess *Session, msg *inboundMessage) {
	sub, ok := ParseSubscriptionType(msg.Event)
	if !ok {
		s.fail(sess, msg.ID, api.ErrInvalidParameter("event"))
		return
	}
	sess.Subscriptions.Add(sub)
	sess.send(subscriptionResponse{
		responseHeader:    respondTo(msg),
		SubscriptionLevel: sess.subscriptionLevels(),
	})
}

func (s *Server) handleUnsubscribe(sess *Session, msg *inboundMessage) {
	sub, ok := ParseSubscriptionType(msg.Event)
	if !ok {
		s.fail(sess, msg.ID, api.ErrInvalidParameter("event"))
		return
	}
	sess.Subscriptions.Remove(sub)
	sess.send(subscriptionResponse{
		responseHeader:    respondTo(msg),
		SubscriptionLevel: sess.subscriptionLevels(),
	})
}

// handleMakeTransaction reuses the ledger orchestration. A frame without a
// private key falls back to the session's stored one from login.
func (s *Server) handleMakeTransaction(ctx context.Context, sess *Session, msg *inboundMessage) {
	privateKey := msg.PrivateKey
	if privateKey == "" {
		privateKey = sess.privateKeyCopy()
	}
	if privateKey == "" {
		s.fail(sess, msg.ID, api.ErrUnauthorized())
		return
	}
	tx, err := s.backend.MakeTransfer(ctx, privateKey, msg.To, msg.Amount, msg.Metadata)
	if err != nil {
		s.fail(sess, msg.ID, err)
		return
	}
	sess.send(transactionResponse{
		responseHeader: respondTo(msg),
		Transaction:    api.NewTransactionJSON(tx),
	})
}
