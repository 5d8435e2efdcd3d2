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


// This package is the entrypoint for the build registry, which serves the
// records imgtool writes to the build database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/cmd/imgregistry/impl"
)

var (
	listenAddr = flag.String("listen", ":8000", "address:port to listen for requests on")
	dbDriver   = flag.String("db_driver", "sqlite3", "database driver for the build database (sqlite3 or mysql)")
	dbConn     = flag.String("db", "", "connection string for the build database, e.g. /tmp/builds.db")

	dbConnectTimeout = flag.Duration("db_connect_timeout", time.Minute, "how long to retry connecting to the build database at startup")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := impl.Main(ctx, impl.RegistryOpts{
		ListenAddr: *listenAddr,
		DBDriver:   *dbDriver,
		DBConn:     *dbConn,

		DBConnectTimeout: *dbConnectTimeout,
	}); err != nil {
		glog.Exit(err.Error())
	}
}
