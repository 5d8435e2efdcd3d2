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


// This package is the entrypoint for imgverify, which checks an image's
// trailer hash and signatures, and optionally its signed build manifest.
package main

import (
	"flag"
	"strings"

	"github.com/golang/glog"
	"github.com/google/imgtrailer/cmd/imgverify/impl"
)

var (
	imagePath        = flag.String("image", "", "path to the image to verify")
	pubKeys          = flag.String("pubkey", "", "comma separated paths of PEM public keys that may have signed the image")
	manifestPath     = flag.String("manifest", "", "path to a signed manifest to check against the image")
	manifestVerifier = flag.String("manifest_verifier", "", "path to the note verifier key for the manifest")
)

func main() {
	flag.Parse()

	var keys []string
	if *pubKeys != "" {
		keys = strings.Split(*pubKeys, ",")
	}
	if err := impl.Main(impl.VerifyOpts{
		ImagePath:            *imagePath,
		PubKeyPaths:          keys,
		ManifestPath:         *manifestPath,
		ManifestVerifierPath: *manifestVerifier,
	}); err != nil {
		glog.Exit(err.Error())
	}
}
