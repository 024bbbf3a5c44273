// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package diagdebug exposes a read-only HTTP introspection endpoint
// over the current bootctx.Context and menu.State, for FAFT-style test
// harnesses that need to observe state without parsing console output.
// It never influences either state machine: handlers read, under a
// mutex, the pointers last passed to Update and encode the values
// they point to at request time.
package diagdebug

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/menu"
)

// Snapshot is a point-in-time, JSON-serializable view of the running
// flow's state.
type Snapshot struct {
	Context *bootctx.Context `json:"bootctx"`
	Menu    *menu.State      `json:"menu"`
}

// Server serves Snapshot over HTTP. Update publishes the state to
// serve; until it is first called, both routes answer 503 Service
// Unavailable. cmd/vboot-helper starts a Server but never calls
// Update. Server never calls back into the flow.
type Server struct {
	mu       sync.RWMutex
	snapshot Snapshot
	router   *mux.Router
}

// NewServer returns a Server with its routes registered but no
// listener started; call ListenAndServe to start one.
func NewServer() *Server {
	s := &Server{}
	r := mux.NewRouter()
	r.HandleFunc("/bootctx", s.handleBootctx).Methods(http.MethodGet)
	r.HandleFunc("/menu", s.handleMenu).Methods(http.MethodGet)
	s.router = r
	return s
}

// Update replaces the served snapshot. Safe to call concurrently with
// requests being served.
func (s *Server) Update(ctx *bootctx.Context, st *menu.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{Context: ctx, Menu: st}
}

// ListenAndServe blocks serving on addr until the listener fails or
// the caller otherwise terminates the process; it is always run in
// its own goroutine by the caller.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// ServeHTTP lets Server be used directly with httptest or an
// http.Server of the caller's own construction.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleBootctx(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ctx := s.snapshot.Context
	s.mu.RUnlock()
	writeJSON(w, ctx)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := s.snapshot.Menu
	s.mu.RUnlock()
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"no snapshot yet"}`))
		return
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
