// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/sirupsen/logrus"

	"gitlab.com/postmarketOS/gnss_status/internal/pool"
)

const clientBuffer = 256

// Server accepts connections on a unix socket and forwards every message
// broadcast on connPool to each connected client.
type Server struct {
	socket    string
	sockGroup string
	connPool  *pool.Pool
	sock      net.Listener
	log       *logrus.Entry
}

// Create a new Server. sockGroup may be empty to keep the process's group on
// the socket.
func New(socket string, sockGroup string, connPool *pool.Pool, log *logrus.Entry) (s *Server) {
	s = &Server{
		socket:    socket,
		sockGroup: sockGroup,
		connPool:  connPool,
		log:       log.WithField("socket", socket),
	}

	return
}

// Listen creates the socket. It replaces any stale socket file.
func (s *Server) Listen() (err error) {
	if err := os.RemoveAll(s.socket); err != nil {
		return fmt.Errorf("server.Listen(): %w", err)
	}

	s.sock, err = net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("server.Listen(): %w", err)
	}

	if err := os.Chmod(s.socket, 0660); err != nil {
		s.sock.Close()
		return fmt.Errorf("server.Listen(): %w", err)
	}

	if s.sockGroup == "" {
		return nil
	}

	group, err := user.LookupGroup(s.sockGroup)
	if err != nil {
		s.sock.Close()
		return fmt.Errorf("server.Listen(): %w", err)
	}

	gid, err := strconv.ParseInt(group.Gid, 10, 32)
	if err != nil {
		s.sock.Close()
		return fmt.Errorf("server.Listen(): %w", err)
	}

	if err := os.Chown(s.socket, -1, int(gid)); err != nil {
		s.sock.Close()
		return fmt.Errorf("server.Listen(): %w", err)
	}

	return nil
}

// Serve accepts clients until ctx is done. Listen must have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.sock.Close()
	}()
	defer os.Remove(s.socket)

	s.log.Info("accepting connections")
	for {
		conn, err := s.sock.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("server.Serve: %w", err)
		}

		client := pool.NewClient(clientBuffer)
		select {
		case s.connPool.Register <- client:
		case <-ctx.Done():
			conn.Close()
			return nil
		}
		s.log.Info("new client connected")

		go s.clientConnection(ctx, conn, client)
	}
}

// Routine run for each client connection
func (s *Server) clientConnection(ctx context.Context, conn net.Conn, c *pool.Client) {
	defer conn.Close()

	for msg := range c.Send {
		if _, err := conn.Write(msg); err != nil {
			break
		}
	}

	// Send is also closed when the pool stops, which only happens on
	// shutdown.
	select {
	case s.connPool.Unregister <- c:
	case <-ctx.Done():
	}
	s.log.Info("client disconnected")
}
