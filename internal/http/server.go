// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package http serves the build registry over HTTP.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/api"
	"github.com/google/imgtrailer/internal/builddb"
	"github.com/gorilla/mux"
)

const (
	defaultListLimit = 10
	maxListLimit     = 1000
)

// Store is the read side of the build database required by the server.
type Store interface {
	// GetImage returns the record for the given trailer hash.
	// Must return builddb.ErrNotFound if there is no such image.
	GetImage(ctx context.Context, hash []byte) (api.ImageRecord, error)

	// LatestImage returns the most recently recorded image.
	LatestImage(ctx context.Context) (api.ImageRecord, error)

	// ListImages returns up to limit records, newest first.
	ListImages(ctx context.Context, limit int) ([]api.ImageRecord, error)
}

// Server serves image records from a Store.
type Server struct {
	s Store
}

// NewServer creates a new server backed by the given store.
func NewServer(s Store) *Server {
	return &Server{s: s}
}

// getImage returns the record for the image with the hash in the URL.
func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	hash, err := parseBase64Param(r, "hash")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := s.s.GetImage(r.Context(), hash)
	if err != nil {
		http.Error(w, err.Error(), httpStatusForErr(err))
		return
	}
	writeJSON(w, rec)
}

// getLatest returns the most recent record.
func (s *Server) getLatest(w http.ResponseWriter, r *http.Request) {
	rec, err := s.s.LatestImage(r.Context())
	if err != nil {
		http.Error(w, err.Error(), httpStatusForErr(err))
		return
	}
	writeJSON(w, rec)
}

// listImages returns recent records, newest first.
func (s *Server) listImages(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		i, err := strconv.Atoi(l)
		if err != nil || i <= 0 || i > maxListLimit {
			http.Error(w, fmt.Sprintf("limit should be an integer in [1, %d], got %q", maxListLimit, l), http.StatusBadRequest)
			return
		}
		limit = i
	}
	recs, err := s.s.ListImages(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list images: %v", err), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []api.ImageRecord{}
	}
	glog.V(1).Infof("Listing %d images", len(recs))
	writeJSON(w, recs)
}

func writeJSON(w http.ResponseWriter, v any) {
	js, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}

// httpStatusForErr maps store errors to HTTP status codes.
func httpStatusForErr(e error) int {
	switch {
	case e == nil:
		return http.StatusOK
	case errors.Is(e, builddb.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RegisterHandlers registers HTTP handlers for the registry endpoints.
func (s *Server) RegisterHandlers(r *mux.Router) {
	r.HandleFunc(fmt.Sprintf("/%s/with-hash/{hash}", api.HTTPGetImage), s.getImage).Methods("GET")
	r.HandleFunc(fmt.Sprintf("/%s", api.HTTPGetLatest), s.getLatest).Methods("GET")
	r.HandleFunc(fmt.Sprintf("/%s", api.HTTPListImages), s.listImages).Methods("GET")
}

func parseBase64Param(r *http.Request, name string) ([]byte, error) {
	v := mux.Vars(r)
	b, err := base64.URLEncoding.DecodeString(v[name])
	if err != nil {
		return nil, fmt.Errorf("%s should be URL-safe base64 (%q)", name, err)
	}
	return b, nil
}
