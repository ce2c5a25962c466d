// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package pool

import (
	"context"
	"sync/atomic"
)

// Client receives broadcast messages on Send. The pool never blocks on a
// client: a message that does not fit in Send's buffer is dropped for that
// client.
type Client struct {
	Send chan []byte
}

func NewClient(buffer int) *Client {
	return &Client{Send: make(chan []byte, buffer)}
}

type Pool struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	clients map[*Client]bool
	count   atomic.Int32
	dropped atomic.Uint64
}

func New() *Pool {
	return &Pool{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
	}
}

// Start runs the pool until ctx is done, then closes every client's Send
// channel.
func (p *Pool) Start(ctx context.Context) {
	defer func() {
		for c := range p.clients {
			delete(p.clients, c)
			close(c.Send)
		}
		p.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-p.Register:
			p.clients[c] = true
			p.count.Store(int32(len(p.clients)))
		case c := <-p.Unregister:
			if p.clients[c] {
				delete(p.clients, c)
				close(c.Send)
			}
			p.count.Store(int32(len(p.clients)))
		case msg := <-p.Broadcast:
			for c := range p.clients {
				select {
				case c.Send <- msg:
				default:
					p.dropped.Add(1)
				}
			}
		}
	}
}

// Clients returns the number of registered clients.
func (p *Pool) Clients() int {
	return int(p.count.Load())
}

// Dropped returns how many client messages were discarded because a client
// fell behind.
func (p *Pool) Dropped() uint64 {
	return p.dropped.Load()
}
