// Copyright 2025 The qsim Authors
// This file is part of the qsim library.
//
// The qsim library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The qsim library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the qsim library. If not, see <http://www.gnu.org/licenses/>.

// Package server exposes the job API: submit a circuit, execute it on the
// local backend and archive the result.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/questlab/qsim/backend"
	"github.com/questlab/qsim/store"
)

// Server handles the HTTP job API.
type Server struct {
	backend      backend.Backend
	store        *store.Store
	logger       zerolog.Logger
	defaultShots int
}

// New wires the API around an execution backend and a run archive. The store
// may be nil; runs are then executed without being archived.
func New(b backend.Backend, s *store.Store, logger zerolog.Logger, defaultShots int) *Server {
	if defaultShots <= 0 {
		defaultShots = 1024
	}
	return &Server{backend: b, store: s, logger: logger, defaultShots: defaultShots}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/jobs", s.handleSubmit)
		r.Get("/jobs", s.handleList)
		r.Get("/jobs/{id}", s.handleGet)
	})
	return r
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info().Str("addr", addr).Msg("job server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.backend.Name(),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req backend.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Circuit == nil {
		writeError(w, http.StatusBadRequest, "missing circuit")
		return
	}
	if err := req.Circuit.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid circuit: "+err.Error())
		return
	}
	shots := req.Shots
	if shots == 0 {
		shots = s.defaultShots
	}
	if shots < 0 {
		writeError(w, http.StatusBadRequest, "shots must be positive")
		return
	}

	result, err := s.backend.Run(r.Context(), req.Circuit, backend.RunOptions{Shots: shots, Seed: req.Seed})
	if err != nil {
		s.logger.Error().Err(err).Msg("job execution failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.store != nil {
		run := store.Run{
			ID:        result.JobID,
			CreatedAt: time.Now().UTC(),
			Algorithm: "circuit",
			Qubits:    req.Circuit.NumQubits,
			Shots:     result.Shots,
			Backend:   result.Backend,
			ElapsedMS: result.Elapsed.Milliseconds(),
			Counts:    result.Counts,
		}
		if err := s.store.Save(r.Context(), run); err != nil {
			// The caller still gets their histogram; archiving is
			// best-effort.
			s.logger.Warn().Err(err).Str("job_id", result.JobID).Msg("archiving run failed")
		}
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []store.Run{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "archive disabled")
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
