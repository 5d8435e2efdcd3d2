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


// This package is the entrypoint for imgtool, which wraps a raw binary in an
// image header and trailer so that the bootloader will accept it.
package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/cmd/imgtool/impl"
)

var (
	configPath = flag.String("config", "", "path to a YAML signing config; a hash-only image is built if unset")
	binaryPath = flag.String("binary_path", "", "path to the raw binary to wrap")
	outputPath = flag.String("output", "", "path to write the image to")
	version    = flag.String("version", "", "image version as major.minor.revision.build, overriding the config")

	manifestKey    = flag.String("manifest_key", "", "path to a note signer key; if set a signed manifest is written")
	manifestOutput = flag.String("manifest_output", "", "path to write the signed manifest to, defaults to <output>.manifest")

	dbDriver = flag.String("db_driver", "sqlite3", "database driver for the build database (sqlite3 or mysql)")
	dbConn   = flag.String("db", "", "connection string for the build database; builds are not recorded if unset")
)

func main() {
	flag.Parse()

	ctx := context.Background()
	if err := impl.Main(ctx, impl.ImgtoolOpts{
		ConfigPath:      *configPath,
		BinaryPath:      *binaryPath,
		OutputPath:      *outputPath,
		Version:         *version,
		ManifestKeyPath: *manifestKey,
		ManifestOutput:  *manifestOutput,
		DBDriver:        *dbDriver,
		DBConn:          *dbConn,
	}); err != nil {
		glog.Exit(err.Error())
	}
}
