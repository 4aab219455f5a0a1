package client

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Swarm manages multiple clients, for example one per server to ping.
type Swarm struct {
	mu      sync.RWMutex
	clients []*Client

	// Concurrency bounds the number of clients working at once in Ping.
	// Zero or less means no limit.
	Concurrency int
}

// NewSwarm creates a new swarm.
func NewSwarm() *Swarm {
	return &Swarm{}
}

// NewClient creates a new client within this swarm.
func (s *Swarm) NewClient(address, username string) *Client {
	c := New(address, username)
	c.swarm = s
	s.mu.Lock()
	s.clients = append(s.clients, c)
	s.mu.Unlock()
	return c
}

// Clients returns all clients in the swarm.
func (s *Swarm) Clients() []*Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, len(s.clients))
	copy(out, s.clients)
	return out
}

// Start connects all clients concurrently.
// Returns the first error from any client, or nil if all exit cleanly.
func (s *Swarm) Start(ctx context.Context) error {
	clients := s.Clients()
	errs := make(chan error, len(clients))

	for _, c := range clients {
		go func() {
			errs <- c.ConnectAndStart(ctx)
		}()
	}

	// return first error
	for range clients {
		if err := <-errs; err != nil {
			return err
		}
	}
	return nil
}

// PingOutcome pairs a client with the result of its ping.
type PingOutcome struct {
	Client *Client
	Result *PingResult
	Err    error
}

// Ping pings every client's server concurrently. Outcomes are returned in
// client order; a failed ping does not stop the others.
func (s *Swarm) Ping(ctx context.Context) []PingOutcome {
	clients := s.Clients()
	out := make([]PingOutcome, len(clients))

	var g errgroup.Group
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for i, c := range clients {
		g.Go(func() error {
			res, err := c.Ping(ctx)
			out[i] = PingOutcome{Client: c, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
