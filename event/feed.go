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

// Package event implements the process-wide broadcast feed that carries
// committed ledger events to WebSocket sessions.
package event

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultBuffer is the per-subscriber channel depth.
const DefaultBuffer = 64

// Subscription is one receiver on a Feed. Events arrive on Chan until
// Unsubscribe, which closes the channel.
type Subscription[T any] struct {
	feed *Feed[T]
	ch   chan T
}

// Chan returns the receive channel.
func (s *Subscription[T]) Chan() <-chan T { return s.ch }

// Unsubscribe removes the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription[T]) Unsubscribe() { s.feed.remove(s) }

// Feed is a one-to-many broadcast channel. Send never blocks: a subscriber
// that falls behind loses its oldest buffered event instead of stalling the
// publisher.
type Feed[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	buffer int
	log    *zap.Logger
}

// NewFeed creates a feed with the given per-subscriber buffer depth.
// A nil logger is replaced with a no-op one.
func NewFeed[T any](buffer int, log *zap.Logger) *Feed[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed[T]{
		subs:   make(map[*Subscription[T]]struct{}),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a new receiver.
func (f *Feed[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{feed: f, ch: make(chan T, f.buffer)}
	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()
	return sub
}

// Send delivers v to every current subscriber without blocking.
func (f *Feed[T]) Send(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		select {
		case sub.ch <- v:
			continue
		default:
		}
		// Full buffer: drop the oldest queued event to make room. The
		// second send can still miss if the subscriber drained and
		// refilled concurrently, which is fine.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- v:
		default:
		}
		f.log.Warn("slow event subscriber, dropped oldest event")
	}
}

// Len reports the current subscriber count.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed[T]) remove(sub *Subscription[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; !ok {
		return
	}
	delete(f.subs, sub)
	close(sub.ch)
}
