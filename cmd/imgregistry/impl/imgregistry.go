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


// Package impl is the implementation of the build registry server.
package impl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
	"github.com/google/imgtrailer/internal/builddb"
	ih "github.com/google/imgtrailer/internal/http"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	_ "github.com/go-sql-driver/mysql" // Load drivers for mysql
	_ "github.com/mattn/go-sqlite3"    // Load drivers for sqlite3
)

// RegistryOpts encapsulates options for running the registry.
type RegistryOpts struct {
	ListenAddr string
	DBDriver   string
	DBConn     string
	// DBConnectTimeout bounds how long to keep retrying the initial DB connection.
	DBConnectTimeout time.Duration
}

// Main serves the registry until ctx is done.
func Main(ctx context.Context, opts RegistryOpts) error {
	if opts.DBConn == "" {
		return errors.New("database connection string is required")
	}
	glog.Infof("Connecting to %s DB", opts.DBDriver)
	db, err := connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer db.Close()

	lis, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: %w", opts.ListenAddr, err)
	}
	return serve(ctx, lis, db)
}

// connect opens the build database, retrying while the server comes up.
func connect(ctx context.Context, opts RegistryOpts) (*builddb.Database, error) {
	bo := backoff.NewExponentialBackOff()
	if opts.DBConnectTimeout > 0 {
		bo.MaxElapsedTime = opts.DBConnectTimeout
	}
	var db *builddb.Database
	op := func() error {
		d, err := builddb.NewDatabase(opts.DBDriver, opts.DBConn)
		if err != nil {
			return err
		}
		db = d
		return nil
	}
	err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), func(e error, d time.Duration) {
		glog.Warningf("DB not ready, retrying in %v: %v", d, e)
	})
	return db, err
}

func serve(ctx context.Context, lis net.Listener, s ih.Store) error {
	srv := ih.NewServer(s)
	r := mux.NewRouter()
	srv.RegisterHandlers(r)
	hServer := &http.Server{
		Handler: r,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		glog.Infof("Registry serving on %s", lis.Addr())
		if err := hServer.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		glog.Info("Server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hServer.Shutdown(sctx)
	})
	return g.Wait()
}
