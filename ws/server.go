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
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reconnectedcc/go-kromer/api"
	"github.com/reconnectedcc/go-kromer/event"
)

// TokenTTL is how long an issued gateway token stays redeemable.
const TokenTTL = 30 * time.Second

// TokenData is the identity a pending token resolves to at upgrade time.
type TokenData struct {
	Address    string
	PrivateKey string
}

// Session is one live WebSocket connection. Identity is guarded by mu
// because login/logout mutate it from the inbound loop while broadcasts read
// it; the subscription set is safe for concurrent use on its own.
type Session struct {
	ID            uuid.UUID
	Subscriptions mapset.Set[SubscriptionType]

	mu         sync.RWMutex
	address    string
	privateKey string

	out    chan any
	closed chan struct{}
	once   sync.Once
}

func newSession(id uuid.UUID, token TokenData) *Session {
	s := &Session{
		ID:            id,
		Subscriptions: mapset.NewSet[SubscriptionType](),
		address:       token.Address,
		privateKey:    token.PrivateKey,
		out:           make(chan any, 64),
		closed:        make(chan struct{}),
	}
	// Every fresh session listens for its own transactions and for blocks.
	s.Subscriptions.Add(SubOwnTransactions)
	s.Subscriptions.Add(SubBlocks)
	return s
}

// Address returns the session identity, "guest" when unauthenticated.
func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *Session) IsGuest() bool { return s.Address() == GuestIdentity }

func (s *Session) privateKeyCopy() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.privateKey
}

// setIdentity is the login/logout transition. It never touches the wallet
// row.
func (s *Session) setIdentity(address, privateKey string) {
	s.mu.Lock()
	s.address = address
	s.privateKey = privateKey
	s.mu.Unlock()
}

// send queues v for the writer goroutine. Reports false when the session is
// closed or its queue is full; the caller cleans the session up in that case.
func (s *Session) send(v any) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.out <- v:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.once.Do(func() { close(s.closed) })
}

// subscriptionLevels renders the current subscription set, sorted for stable
// responses.
func (s *Session) subscriptionLevels() []string {
	levels := make([]string, 0, s.Subscriptions.Cardinality())
	for sub := range s.Subscriptions.Iter() {
		levels = append(levels, string(sub))
	}
	sort.Strings(levels)
	return levels
}

// SessionInfo is the read-only view served by the internal inspection
// routes.
type SessionInfo struct {
	ID            uuid.UUID `json:"id"`
	Address       string    `json:"address"`
	Guest         bool      `json:"guest"`
	Subscriptions []string  `json:"subscriptions"`
}

// Server is the session registry plus the pending-token table. One coarse
// lock guards both maps; per-session state has its own synchronization.
type Server struct {
	backend api.Backend
	log     *zap.Logger

	mu            sync.Mutex
	sessions      map[uuid.UUID]*Session
	pendingTokens map[uuid.UUID]TokenData
}

// NewServer builds the registry. Call Run to start draining the event feed.
func NewServer(backend api.Backend, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		backend:       backend,
		log:           log.Named("ws"),
		sessions:      make(map[uuid.UUID]*Session),
		pendingTokens: make(map[uuid.UUID]TokenData),
	}
}

// Run drains the broadcast feed until the subscription closes. Intended to
// run as a goroutine owned by the node.
func (s *Server) Run(sub *event.Subscription[api.WebSocketEvent]) {
	for ev := range sub.Chan() {
		s.Broadcast(ev)
	}
}

// IssueToken registers a pending token and schedules its expiry. The timer
// firing on an already-consumed token is a harmless no-op.
func (s *Server) IssueToken(data TokenData) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.pendingTokens[id] = data
	s.mu.Unlock()

	time.AfterFunc(TokenTTL, func() {
		s.mu.Lock()
		delete(s.pendingTokens, id)
		s.mu.Unlock()
	})
	return id
}

// UseToken atomically consumes a pending token.
func (s *Server) UseToken(id uuid.UUID) (TokenData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.pendingTokens[id]
	if ok {
		delete(s.pendingTokens, id)
	}
	return data, ok
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.log.Debug("session opened",
		zap.String("session", sess.ID.String()),
		zap.String("address", sess.Address()))
}

func (s *Server) removeSession(id uuid.UUID) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if ok {
		sess.close()
		s.log.Debug("session closed", zap.String("session", id.String()))
	}
}

// Broadcast applies the filter rules and queues the event on every matching
// session. A session whose queue rejects the event is torn down.
func (s *Server) Broadcast(ev api.WebSocketEvent) {
	s.mu.Lock()
	targets := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		targets = append(targets, sess)
	}
	s.mu.Unlock()

	for _, sess := range targets {
		if !shouldDeliver(sess, ev) {
			continue
		}
		if !sess.send(ev) {
			s.log.Warn("dropping unresponsive session", zap.String("session", sess.ID.String()))
			s.removeSession(sess.ID)
		}
	}
}

// shouldDeliver implements the per-event subscription filter.
func shouldDeliver(sess *Session, ev api.WebSocketEvent) bool {
	switch ev.Event {
	case api.EventTransaction:
		if sess.Subscriptions.Contains(SubTransactions) {
			return true
		}
		if sess.IsGuest() || !sess.Subscriptions.Contains(SubOwnTransactions) {
			return false
		}
		t := ev.Transaction
		if t == nil {
			return false
		}
		addr := sess.Address()
		return t.To == addr || (t.From != nil && *t.From == addr)
	case api.EventName:
		if sess.Subscriptions.Contains(SubNames) {
			return true
		}
		n := ev.Name
		return n != nil && sess.Subscriptions.Contains(SubOwnNames) && n.Owner == sess.Address()
	case api.EventBlock:
		// ownBlocks can never match: nothing is ever mined.
		return sess.Subscriptions.Contains(SubBlocks)
	default:
		return false
	}
}

// SessionCount reports the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sessions snapshots every live session for the internal inspection route.
func (s *Server) Sessions() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// SessionByID looks one session up for inspection.
func (s *Server) SessionByID(id uuid.UUID) (SessionInfo, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return SessionInfo{}, false
	}
	return sess.info(), true
}

func (sess *Session) info() SessionInfo {
	return SessionInfo{
		ID:            sess.ID,
		Address:       sess.Address(),
		Guest:         sess.IsGuest(),
		Subscriptions: sess.subscriptionLevels(),
	}
}
