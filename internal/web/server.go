// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"gitlab.com/postmarketOS/gnss_status/internal/nav"
	"gitlab.com/postmarketOS/gnss_status/internal/pool"
)

const (
	wsBuffer  = 16
	writeWait = 5 * time.Second
)

// Controller accepts heading filter changes, see gnss.Reader.
type Controller interface {
	SetWindow(n int)
	SetOffset(deg float64)
	ResetFilter()
}

// Server exposes the latest snapshot over HTTP and streams new ones to
// websocket clients.
type Server struct {
	httpServer *http.Server
	log        *logrus.Entry
	ctl        Controller

	mu     sync.RWMutex
	latest *view

	snapPool *pool.Pool
	upgrader websocket.Upgrader
	done     <-chan struct{}
}

// view is the JSON form of a snapshot: raw values plus their display text.
type view struct {
	nav.Snapshot
	Display    []nav.Field `json:"display"`
	Filtered   string      `json:"filtered_text"`
	FilterLine string      `json:"filter_line"`
}

type filterRequest struct {
	Window    *int     `json:"window"`
	OffsetDeg *float64 `json:"offset_deg"`
	Reset     bool     `json:"reset"`
}

func NewServer(addr string, ctl Controller, log *logrus.Entry) *Server {
	s := &Server{
		log:      log.WithField("addr", addr),
		ctl:      ctl,
		snapPool: pool.New(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	router.HandleFunc("/api/snapshot", s.handleSnapshot).Methods("GET")
	router.HandleFunc("/api/ws", s.handleWS).Methods("GET")
	router.HandleFunc("/api/filter", s.handleFilter).Methods("POST")

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves HTTP until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.startHub(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info("starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web.Start: %w", err)
	}
	return nil
}

func (s *Server) startHub(ctx context.Context) {
	s.done = ctx.Done()
	go s.snapPool.Start(ctx)
}

// Publish makes snap the latest snapshot and sends it to websocket clients.
func (s *Server) Publish(snap nav.Snapshot) {
	v := newView(snap)
	msg, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).Warn("snapshot encoding failed")
		return
	}

	s.mu.Lock()
	s.latest = &v
	s.mu.Unlock()

	select {
	case s.snapPool.Broadcast <- msg:
	default:
		s.log.Debug("websocket broadcast queue full, snapshot dropped")
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	v := s.latest
	s.mu.RUnlock()

	if v == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("snapshot response failed")
	}
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Window == nil && req.OffsetDeg == nil && !req.Reset {
		http.Error(w, "nothing to change", http.StatusBadRequest)
		return
	}

	fields := logrus.Fields{"reset": req.Reset}
	if req.Reset {
		s.ctl.ResetFilter()
	}
	if req.Window != nil {
		s.ctl.SetWindow(*req.Window)
		fields["window"] = *req.Window
	}
	if req.OffsetDeg != nil {
		s.ctl.SetOffset(*req.OffsetDeg)
		fields["offset_deg"] = *req.OffsetDeg
	}
	s.log.WithFields(fields).Info("filter change requested")

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	client := pool.NewClient(wsBuffer)
	select {
	case s.snapPool.Register <- client:
	case <-s.done:
		return
	}

	s.mu.RLock()
	v := s.latest
	s.mu.RUnlock()
	if v != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			s.unregister(client)
			return
		}
	}

	// clients never send anything, reading only detects the close
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.unregister(client)
				return
			}
		case <-gone:
			s.unregister(client)
			return
		}
	}
}

func (s *Server) unregister(c *pool.Client) {
	select {
	case s.snapPool.Unregister <- c:
	case <-s.done:
	}
}

func newView(snap nav.Snapshot) view {
	return view{
		Snapshot:   snap,
		Display:    snap.Display(),
		Filtered:   snap.Filtered(),
		FilterLine: snap.FilterLine(),
	}
}
